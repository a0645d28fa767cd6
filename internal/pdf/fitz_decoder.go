// Package pdf decodes PDF bytes into positioned text runs and embedded
// images for the extraction stages.
package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strconv"
	"strings"

	"edu-document-pipeline/internal/domain"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/net/html"
)

// FitzDecoder implements domain.PDFDecoder on top of MuPDF. Positions come
// from the per-page HTML rendering, which carries absolute coordinates and
// font sizes for every paragraph and data URIs for every embedded raster.
type FitzDecoder struct {
	logger domain.Logger
}

// NewFitzDecoder creates a decoder.
func NewFitzDecoder(logger domain.Logger) *FitzDecoder {
	return &FitzDecoder{logger: logger}
}

// DecodePages decodes every page of the document.
func (d *FitzDecoder) DecodePages(pdfBytes []byte) ([]domain.Page, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	pages := make([]domain.Page, 0, numPages)

	for n := 0; n < numPages; n++ {
		page := domain.Page{Number: n + 1}

		if bound, err := doc.Bound(n); err == nil {
			page.Width = float64(bound.Dx())
			page.Height = float64(bound.Dy())
		}

		markup, err := doc.HTML(n, false)
		if err != nil {
			d.logger.Warn("Failed to render page markup, page will be empty", "page", n+1, "error", err)
			pages = append(pages, page)
			continue
		}

		runs, images := d.parsePage(markup)
		page.Runs = runs
		page.Images = images
		pages = append(pages, page)
	}

	return pages, nil
}

// Metadata surfaces the document info dictionary.
func (d *FitzDecoder) Metadata(pdfBytes []byte) (domain.PDFMetadata, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return domain.PDFMetadata{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	meta := domain.PDFMetadata{PageCount: doc.NumPage()}
	info := doc.Metadata()
	if title, ok := info["title"]; ok {
		meta.Title = title
	}
	if author, ok := info["author"]; ok {
		meta.Author = author
	}
	return meta, nil
}

// parsePage walks the MuPDF HTML for one page and collects positioned text
// runs and embedded images in document order.
func (d *FitzDecoder) parsePage(markup string) ([]domain.TextRun, []domain.ImageObject) {
	var runs []domain.TextRun
	var images []domain.ImageObject

	tokenizer := html.NewTokenizer(strings.NewReader(markup))

	var (
		inParagraph bool
		paraTop     float64
		paraLeft    float64
		fontSize    float64
		text        strings.Builder
	)

	flushRun := func() {
		content := strings.TrimSpace(text.String())
		text.Reset()
		if content == "" {
			return
		}
		size := fontSize
		if size <= 0 {
			size = 12
		}
		runs = append(runs, domain.TextRun{
			Text:     content,
			FontSize: size,
			BBox: domain.BoundingBox{
				X1: paraLeft,
				Y1: paraTop,
				X2: paraLeft + estimateWidth(content, size),
				Y2: paraTop + size*1.2,
			},
		})
	}

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		token := tokenizer.Token()

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			switch token.Data {
			case "p":
				inParagraph = true
				fontSize = 0
				style := attr(token, "style")
				paraTop = stylePt(style, "top")
				paraLeft = stylePt(style, "left")
			case "span", "b", "i":
				if inParagraph {
					if size := stylePt(attr(token, "style"), "font-size"); size > 0 {
						fontSize = size
					}
				}
			case "img":
				if img, ok := d.parseImage(token); ok {
					images = append(images, img)
				}
			}
		case html.EndTagToken:
			if token.Data == "p" && inParagraph {
				flushRun()
				inParagraph = false
			}
		case html.TextToken:
			if inParagraph {
				text.WriteString(token.Data)
			}
		}
	}
	flushRun()

	return runs, images
}

func (d *FitzDecoder) parseImage(token html.Token) (domain.ImageObject, bool) {
	src := attr(token, "src")
	const prefix = "data:image/"
	if !strings.HasPrefix(src, prefix) {
		return domain.ImageObject{}, false
	}
	rest := src[len(prefix):]
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return domain.ImageObject{}, false
	}
	format := rest[:sep]
	data, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		d.logger.Warn("Failed to decode embedded image data", "error", err)
		return domain.ImageObject{}, false
	}

	img := domain.ImageObject{Data: data, Format: format}

	style := attr(token, "style")
	top := stylePt(style, "top")
	left := stylePt(style, "left")
	width := stylePt(style, "width")
	height := stylePt(style, "height")
	img.BBox = domain.BoundingBox{X1: left, Y1: top, X2: left + width, Y2: top + height}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	} else {
		// Fall back to the display size when the raster header is exotic.
		img.Width = int(width)
		img.Height = int(height)
	}
	return img, true
}

func attr(token html.Token, name string) string {
	for _, a := range token.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

var styleValuePattern = regexp.MustCompile(`([a-z-]+)\s*:\s*([0-9.]+)pt`)

// stylePt extracts a numeric pt value for one CSS property.
func stylePt(style, property string) float64 {
	for _, m := range styleValuePattern.FindAllStringSubmatch(style, -1) {
		if m[1] == property {
			if v, err := strconv.ParseFloat(m[2], 64); err == nil {
				return v
			}
		}
	}
	return 0
}

// estimateWidth approximates a run's horizontal extent from its glyph count.
// MuPDF's HTML output does not carry run widths.
func estimateWidth(text string, fontSize float64) float64 {
	return float64(len([]rune(text))) * fontSize * 0.5
}
