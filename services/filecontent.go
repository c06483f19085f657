package services

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"tenor/apperr"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"
)

const (
	mimeText = "text/plain"
	mimeCSV  = "text/csv"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

var dataURLPattern = regexp.MustCompile(`^data:([^;,]*);base64,(.*)$`)

// DecodeDataURL splits "data:<mime>;base64,<payload>".
func DecodeDataURL(s string) (string, []byte, error) {
	m := dataURLPattern.FindStringSubmatch(s)
	if m == nil || m[1] == "" || m[2] == "" {
		return "", nil, apperr.BadRequest("Invalid base64 file format")
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", nil, apperr.BadRequest("Invalid base64 file format")
	}
	return m[1], data, nil
}

// ExtractText turns an uploaded document into plain text for the AI
// context.
func ExtractText(file64 string) (string, error) {
	mime, data, err := DecodeDataURL(file64)
	if err != nil {
		return "", err
	}
	switch mime {
	case mimeText, mimeCSV:
		return string(data), nil
	case mimeDocx:
		return parseDocument("docx", data, docxText)
	case mimeXlsx:
		return parseDocument("xlsx", data, xlsxText)
	case mimePDF:
		return parseDocument("pdf", data, pdfText)
	}
	return "", apperr.BadRequest("Unsupported file type: %s", mime)
}

// parseDocument runs a parser and turns any failure, including a panic on a
// malformed file, into a 400.
func parseDocument(kind string, data []byte, parse func([]byte) (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s parser: %v", kind, r)
		}
		if err != nil {
			text, err = "", apperr.BadRequest("Invalid %s file", kind)
		}
	}()
	return parse(data)
}

// docxText collects w:t runs, one line per w:p paragraph.
func docxText(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer r.Close()

	var b strings.Builder
	dec := xml.NewDecoder(strings.NewReader(r.Editable().GetContent()))
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			if t.Name.Local == "p" {
				b.WriteByte('\n')
			}
			inText = false
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// xlsxText renders every sheet as tab separated rows.
func xlsxText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", err
		}
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(text)), nil
}
