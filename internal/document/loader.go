// Package document extracts raw text from résumé and job description files.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"

	"github.com/spigell/cvrank/internal/logger"
)

const DefaultMaxBytes = 10 << 20

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrEmptyDocument     = errors.New("document contains no text")
	ErrTooLarge          = errors.New("document exceeds size limit")

	xmlTags       = regexp.MustCompile(`<[^>]+>`)
	inlineSpaces  = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
	repeatedLines = regexp.MustCompile(`\n\s*\n+`)
)

// Loader reads .pdf, .docx, .txt and .md files.
type Loader struct {
	maxBytes int64
	logger   *zap.Logger
}

func NewLoader(maxBytes int64, log *zap.Logger) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{maxBytes: maxBytes, logger: logger.OrNop(log)}
}

// Supported reports whether the file extension can be loaded.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".txt", ".md":
		return true
	default:
		return false
	}
}

// Text implements the re-extraction source used by the ranker.
func (l *Loader) Text(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return l.Load(ref)
}

// Load reads the file at path and returns its text with line breaks kept.
func (l *Loader) Load(path string) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %q: %w", path, err)
	}
	if info.Size() > l.maxBytes {
		return "", fmt.Errorf("%w: %q is %d bytes", ErrTooLarge, path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}

	return l.Parse(filepath.Base(path), data)
}

// Parse extracts text from data, picking the format from the file name.
func (l *Loader) Parse(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		text, err = l.pdfText(data)
	case ".docx":
		text, err = docxText(data)
	case ".txt", ".md":
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", name, err)
	}

	text = tidy(text)
	if text == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyDocument, name)
	}

	l.logger.Debug("document loaded", zap.String("document", name), zap.Int("chars", len(text)))

	return text, nil
}

func (l *Loader) pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			l.logger.Debug("skipping unreadable pdf page", zap.Int("page", i), zap.Error(err))
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	return docxXMLText(doc.Editable().GetContent()), nil
}

// docxXMLText turns WordprocessingML into plain text, one paragraph per line.
func docxXMLText(xml string) string {
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	xml = strings.ReplaceAll(xml, "<w:br/>", "\n")
	return html.UnescapeString(xmlTags.ReplaceAllString(xml, ""))
}

// tidy collapses blank runs while keeping line breaks, which name detection
// relies on.
func tidy(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = inlineSpaces.ReplaceAllString(s, " ")
	s = repeatedLines.ReplaceAllString(s, "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
