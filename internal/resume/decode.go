package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"code.sajari.com/docconv"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// Decoder turns document bytes into plain text.
type Decoder interface {
	Decode(ctx context.Context, fileType FileType, data []byte) (string, error)
}

// DocumentDecoder validates PDFs with pdfcpu and extracts text with docconv.
type DocumentDecoder struct {
	logger *zap.Logger
}

func NewDocumentDecoder(logger *zap.Logger) *DocumentDecoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentDecoder{logger: logger}
}

func (d *DocumentDecoder) Decode(ctx context.Context, fileType FileType, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch fileType {
	case FileTypePDF:
		pages, err := pdfPageCount(data)
		if err != nil {
			return "", fmt.Errorf("the PDF may be corrupted or password-protected: %w", err)
		}
		d.logger.Debug("pdf preflight passed", zap.Int("pages", pages))

		text, _, err := docconv.ConvertPDF(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("the PDF may be image-based or unreadable: %w", err)
		}
		return text, nil
	case FileTypeDOCX:
		text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("the DOCX document is unreadable: %w", err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("no decoder for %q", fileType)
	}
}

func pdfPageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, err
	}
	if pages == 0 {
		return 0, errors.New("document has no pages")
	}
	return pages, nil
}
