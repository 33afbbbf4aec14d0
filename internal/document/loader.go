package document

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Default page size used when a page carries no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Loader reads PDF files into the token/page schema. Text-layer PDFs keep
// their glyph positions, so the geometric line clustering downstream works
// the same way it does for OCR output.
type Loader struct {
	maxFileSize int64
	maxTextSize int
}

// NewLoader creates a loader with the specified file size constraint.
func NewLoader(maxFileSize int64) *Loader {
	return &Loader{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
	}
}

// LoadPDF parses a PDF file into a Document with per-page text and
// positioned tokens.
func (l *Loader) LoadPDF(path string) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := l.validateFileInfo(path, fileInfo); err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	doc := &Document{DocID: path}
	totalText := 0
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		width, height := pageSize(page)
		tokens := l.tokensFromPage(page, pageNum, height)

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Fall back to the token stream when the text walker fails.
			text, _ = AssembleText(tokens)
		}
		text = NormalizeText(text)
		if totalText+len(text) > l.maxTextSize {
			remaining := l.maxTextSize - totalText
			if remaining > 0 {
				text = text[:remaining]
			} else {
				text = ""
			}
		}
		totalText += len(text)

		doc.Pages = append(doc.Pages, Page{
			Page:   pageNum,
			Width:  width,
			Height: height,
			Text:   text,
			Tokens: tokens,
		})
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("no readable pages in PDF: %s", path)
	}
	return doc, nil
}

// validateFileInfo performs basic validation before parsing.
func (l *Loader) validateFileInfo(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	if fileInfo.Size() > l.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), l.maxFileSize)
	}
	return nil
}

// tokensFromPage groups the page's positioned text runs into word tokens.
// PDF coordinates grow upward; tokens are flipped to the top-down pixel
// convention the clustering code expects.
func (l *Loader) tokensFromPage(page pdf.Page, pageNum int, pageHeight float64) []Token {
	defer func() {
		// Malformed content streams can panic inside the parser; a page
		// without tokens is better than a failed document.
		_ = recover()
	}()

	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	runs := make([]pdf.Text, len(content.Text))
	copy(runs, content.Text)
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Y != runs[j].Y {
			return runs[i].Y > runs[j].Y // higher Y means higher on the page
		}
		return runs[i].X < runs[j].X
	})

	var tokens []Token
	var cur strings.Builder
	var x0, x1, y, size float64

	flush := func() {
		word := strings.TrimSpace(cur.String())
		cur.Reset()
		if word == "" {
			return
		}
		top := pageHeight - y - size
		tokens = append(tokens, Token{
			Text: word,
			BBox: Box{x0, top, x1, top + size},
			Conf: -1,
			Page: pageNum,
		})
	}

	for _, r := range runs {
		if strings.TrimSpace(r.S) == "" {
			flush()
			continue
		}
		gap := r.FontSize * 0.3
		sameLine := cur.Len() > 0 && absFloat(r.Y-y) <= size*0.5
		adjacent := sameLine && r.X <= x1+gap
		if !adjacent {
			flush()
			x0, y, size = r.X, r.Y, r.FontSize
		}
		cur.WriteString(r.S)
		x1 = r.X + r.W
		if r.FontSize > size {
			size = r.FontSize
		}
	}
	flush()
	return tokens
}

// pageSize resolves the page's MediaBox, walking up the page tree for
// inherited values.
func pageSize(page pdf.Page) (width, height float64) {
	box := page.V.Key("MediaBox")
	for v := page.V.Key("Parent"); box.IsNull() && !v.IsNull(); v = v.Key("Parent") {
		box = v.Key("MediaBox")
	}
	if box.IsNull() || box.Len() != 4 {
		return defaultPageWidth, defaultPageHeight
	}
	x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
	x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
