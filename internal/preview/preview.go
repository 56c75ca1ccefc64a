package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// jpegQuality is the encoder quality for generated previews.
const jpegQuality = 85

// ErrNoPreview signals that the source was processed successfully but
// produced no image to preview, e.g. a pure text PDF.
var ErrNoPreview = errors.New("no preview image produced")

// Generator renders a preview image for a PDF byte source.
type Generator interface {
	// GeneratePDFPreview returns a JPEG render of the first page of the
	// PDF read from r. maxPages is handed to the underlying extractor,
	// but only the first produced image is ever consumed; values below 1
	// are treated as 1. A source that yields no image returns ErrNoPreview.
	GeneratePDFPreview(r io.Reader, maxPages int) ([]byte, error)
}

// extractImages wraps the pdfcpu call so tests can substitute it.
var extractImages = func(rs io.ReadSeeker, selectedPages []string, conf *pdfmodel.Configuration) ([]map[int]pdfmodel.Image, error) {
	return api.ExtractImagesRaw(rs, selectedPages, conf)
}

// PDFGenerator extracts the first page image of a PDF and re-encodes it as
// JPEG. It works entirely in memory and never touches local disk.
type PDFGenerator struct {
	quality int
	log     *log.Logger
}

// NewPDFGenerator constructs a PDFGenerator logging through the given logger.
func NewPDFGenerator(logger *log.Logger) *PDFGenerator {
	return &PDFGenerator{quality: jpegQuality, log: logger}
}

var _ Generator = (*PDFGenerator)(nil)

func (g *PDFGenerator) GeneratePDFPreview(r io.Reader, maxPages int) ([]byte, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	// Restore the read position afterwards so the caller can re-read the
	// same bytes for persistence.
	if s, ok := r.(io.Seeker); ok {
		pos, err := s.Seek(0, io.SeekCurrent)
		if err == nil {
			defer func() {
				_, _ = s.Seek(pos, io.SeekStart)
			}()
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		g.log.Error("failed to read pdf source", "error", err)
		return nil, fmt.Errorf("read pdf source: %w", err)
	}

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	pages := []string{"1"}
	if maxPages > 1 {
		pages = []string{"1-" + strconv.Itoa(maxPages)}
	}

	extracted, err := extractImages(bytes.NewReader(data), pages, conf)
	if err != nil {
		g.log.Error("failed to extract images from pdf", "error", err)
		return nil, fmt.Errorf("extract pdf images: %w", err)
	}

	for _, pageImages := range extracted {
		// Lowest object number first, for a deterministic pick.
		objNrs := make([]int, 0, len(pageImages))
		for nr := range pageImages {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)

		for _, nr := range objNrs {
			img := pageImages[nr]
			src, _, err := image.Decode(img)
			if err != nil {
				g.log.Debug("skipping undecodable page image", "object", nr, "error", err)
				continue
			}
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: g.quality}); err != nil {
				g.log.Error("failed to encode preview", "error", err)
				return nil, fmt.Errorf("encode preview jpeg: %w", err)
			}
			return buf.Bytes(), nil
		}
	}

	g.log.Warn("pdf produced no preview image")
	return nil, ErrNoPreview
}
