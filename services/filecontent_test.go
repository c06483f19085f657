package services

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"io"
	"testing"

	"tenor/apperr"

	"github.com/xuri/excelize/v2"
)

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(body))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractTextPlain(t *testing.T) {
	got, err := ExtractText(dataURL("text/csv", []byte("a,b\n1,2")))
	if err != nil || got != "a,b\n1,2" {
		t.Errorf("ExtractText() = %q, %v", got, err)
	}
}

func TestExtractTextDocx(t *testing.T) {
	doc := `<w:document xmlns:w="w"><w:body>
<w:p><w:r><w:t>Login with</w:t></w:r><w:r><w:t> email</w:t></w:r></w:p>
<w:p><w:r><w:t>Reset password</w:t></w:r></w:p>
</w:body></w:document>`
	data := zipOf(t, map[string]string{
		"word/document.xml":            doc,
		"word/_rels/document.xml.rels": `<Relationships/>`,
	})

	got, err := ExtractText(dataURL(mimeDocx, data))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Login with email\nReset password" {
		t.Errorf("ExtractText() = %q", got)
	}
}

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for cell, v := range map[string]any{"A1": "Name", "B1": 42, "A2": "Tenor", "B2": "x"} {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// replaceZipEntry rewrites one file inside a zip archive.
func replaceZipEntry(t *testing.T, data []byte, name, body string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatal(err)
		}
		if f.Name == name {
			w.Write([]byte(body))
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		io.Copy(w, rc)
		rc.Close()
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractTextXlsx(t *testing.T) {
	got, err := ExtractText(dataURL(mimeXlsx, workbook(t)))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Name\t42\nTenor\tx" {
		t.Errorf("ExtractText() = %q", got)
	}
}

func TestExtractTextXlsxBadSharedStringIndex(t *testing.T) {
	sheet := `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>` +
		`<row r="1"><c r="A1" t="s"><v>-5</v></c></row></sheetData></worksheet>`
	data := replaceZipEntry(t, workbook(t), "xl/worksheets/sheet1.xml", sheet)

	_, err := ExtractText(dataURL(mimeXlsx, data))
	if code, msg := apperr.Status(err); code != 400 || msg != "Invalid xlsx file" {
		t.Errorf("ExtractText() = %d %q, want 400 Invalid xlsx file", code, msg)
	}
}

func TestExtractTextRejects(t *testing.T) {
	for _, in := range []string{
		"plain text",
		"data:text/plain;base64,!!!",
		dataURL("image/png", []byte("\x89PNG")),
		dataURL(mimePDF, []byte("%PDF")),
		dataURL(mimeDocx, []byte("not a zip")),
		dataURL(mimeXlsx, []byte("not a zip")),
	} {
		_, err := ExtractText(in)
		if code, _ := apperr.Status(err); code != 400 {
			t.Errorf("ExtractText(%.20q) status = %d, want 400", in, code)
		}
	}
}
