package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tenor/model"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const maxPageBytes = 5 << 20

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"head":     true,
	"iframe":   true,
}

// HTMLText extracts readable text from an HTML document.
func HTMLText(r io.Reader) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return b.String(), nil
}

// FetchLinkText downloads a page and returns its text. Plain text bodies
// are returned as they are.
func FetchLinkText(ctx context.Context, client *http.Client, link string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "TenorBot/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: status %d", link, resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxPageBytes)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		data, err := io.ReadAll(body)
		return strings.TrimSpace(string(data)), err
	}
	return HTMLText(body)
}

// FetchLinks resolves every link in parallel. A link that cannot be read
// keeps an empty content instead of failing the batch.
func FetchLinks(ctx context.Context, client *http.Client, links []string) []model.AIContextLink {
	out := make([]model.AIContextLink, len(links))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, link := range links {
		out[i].Link = link
		g.Go(func() error {
			text, err := FetchLinkText(ctx, client, link)
			if err == nil {
				out[i].Content = text
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
