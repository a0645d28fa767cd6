package domain

// TextRun is a positioned fragment of text as decoded from a page, before
// block grouping. FontSize is in points.
type TextRun struct {
	Text     string
	BBox     BoundingBox
	FontSize float64
}

// ImageObject is an embedded raster image decoded from a page's paint
// operations.
type ImageObject struct {
	Data   []byte
	Format string // "png", "jpeg"
	BBox   BoundingBox
	Width  int
	Height int
}

// Page is one decoded PDF page: its dimensions plus ordered text runs and
// image objects.
type Page struct {
	Number int // 1-indexed
	Width  float64
	Height float64
	Runs   []TextRun
	Images []ImageObject
}

// PDFDecoder turns raw PDF bytes into a decoded page sequence. Rendering and
// rasterization internals are the decoder's concern, not the pipeline's.
type PDFDecoder interface {
	DecodePages(pdfBytes []byte) ([]Page, error)
	Metadata(pdfBytes []byte) (PDFMetadata, error)
}

// PDFMetadata is the subset of document metadata a decoder can surface.
type PDFMetadata struct {
	Title     string
	Author    string
	PageCount int
}
