// Package docextract pulls plain text out of uploaded documents so
// the bot can analyze them.
package docextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MaxFileSize caps how large an uploaded document may be.
const MaxFileSize = 20 << 20

var (
	ErrUnsupported = errors.New("docextract: unsupported file type")
	ErrTooLarge    = errors.New("docextract: file exceeds 20 MB")
	ErrEmpty       = errors.New("docextract: no extractable text")
)

// Document is the extracted form of an upload.
type Document struct {
	FileName string
	Text     string
	Pages    int // 0 for plain text files
	Academic bool
}

// Extract reads a document of the given size from r. Only PDF and
// plain-text files are supported; the file extension decides the
// parser.
func Extract(fileName string, r io.Reader, size int64) (*Document, error) {
	if size > MaxFileSize {
		return nil, ErrTooLarge
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return extractPDF(fileName, r, size)
	case ".txt":
		return extractText(fileName, r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(fileName))
	}
}

func extractPDF(fileName string, r io.Reader, size int64) (*Document, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if len(body) > MaxFileSize {
		return nil, ErrTooLarge
	}

	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
				b.WriteByte(' ')
			}
			b.WriteByte('\n')
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, ErrEmpty
	}
	return &Document{
		FileName: fileName,
		Text:     text,
		Pages:    pages,
		Academic: LooksAcademic(text),
	}, nil
}

func extractText(fileName string, r io.Reader) (*Document, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	if len(body) > MaxFileSize {
		return nil, ErrTooLarge
	}
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%w: not valid utf-8", ErrUnsupported)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil, ErrEmpty
	}
	return &Document{
		FileName: fileName,
		Text:     text,
		Academic: LooksAcademic(text),
	}, nil
}

// Section headings common to research papers.
var academicMarkers = []string{
	"abstract", "introduction", "related work", "methodology", "method",
	"experiment", "evaluation", "results", "discussion", "conclusion",
	"references", "bibliography", "doi:", "arxiv:",
}

// LooksAcademic guesses whether the text is a research paper by
// counting paper-section markers. At least three distinct markers are
// required.
func LooksAcademic(text string) bool {
	lower := strings.ToLower(text)
	hits := 0
	for _, m := range academicMarkers {
		if strings.Contains(lower, m) {
			hits++
			if hits >= 3 {
				return true
			}
		}
	}
	return false
}

// Truncate bounds the text handed to the model, cutting on a word
// boundary where possible.
func Truncate(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)[:maxRunes]
	if i := strings.LastIndexByte(string(runes), ' '); i > 0 {
		return string(runes)[:i]
	}
	return string(runes)
}
