package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// DefaultMaxSizeBytes caps uploads at 5 MiB.
const DefaultMaxSizeBytes int64 = 5 << 20

var (
	ErrUnsupportedFileType = errors.New("unsupported file type: only PDF or DOCX are allowed")
	ErrExtractionFailed    = errors.New("failed to extract text from resume")
	ErrFileTooLarge        = errors.New("resume file is too large")
)

// Upload is a resume document as received from the caller.
type Upload struct {
	FileName string
	MIMEType string
	Data     []byte
}

// Result holds the fields inferred from one document. It is never persisted;
// only Summary and FileName are copied into the candidate record.
type Result struct {
	// RawTextLength counts characters of the normalized text.
	RawTextLength int               `json:"rawTextLength"`
	Sections      map[string]string `json:"sections"`
	Name          string            `json:"name,omitempty"`
	Email         string            `json:"email,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	Summary       string            `json:"summary"`
	FileName      string            `json:"fileName"`
	FileType      FileType          `json:"fileType"`
}

type Config struct {
	MaxSizeBytes int64
}

type Extractor struct {
	cfg     Config
	decoder Decoder
	logger  *zap.Logger
}

// NewExtractor builds an extractor. A nil decoder selects DocumentDecoder.
func NewExtractor(cfg Config, decoder Decoder, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSizeBytes <= 0 {
		cfg.MaxSizeBytes = DefaultMaxSizeBytes
	}
	if decoder == nil {
		decoder = NewDocumentDecoder(logger)
	}

	return &Extractor{cfg: cfg, decoder: decoder, logger: logger}
}

// Extract validates the upload, decodes it and infers identity fields and a
// short summary from the text.
func (e *Extractor) Extract(ctx context.Context, upload Upload) (*Result, error) {
	fileType, ok := DetectFileType(upload.FileName, upload.MIMEType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, upload.FileName)
	}

	if size := int64(len(upload.Data)); size > e.cfg.MaxSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, size, e.cfg.MaxSizeBytes)
	}

	if !hasMagic(fileType, upload.Data) {
		return nil, fmt.Errorf("%w: content is not a valid %s document", ErrExtractionFailed, strings.ToUpper(string(fileType)))
	}

	raw, err := e.decoder.Decode(ctx, fileType, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	text := Normalize(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: no text content found", ErrExtractionFailed)
	}

	sections := Segment(text)
	summary := SelectSummary(sections)
	if summary == "" {
		summary = FallbackSummary(text)
	}

	result := &Result{
		RawTextLength: utf8.RuneCountInString(text),
		Sections:      sections,
		Name:          InferName(text),
		Email:         InferEmail(text),
		Phone:         InferPhone(text),
		Summary:       summary,
		FileName:      upload.FileName,
		FileType:      fileType,
	}

	e.logger.Debug("resume extracted",
		zap.String("file_name", upload.FileName),
		zap.String("file_type", string(fileType)),
		zap.Int("text_length", result.RawTextLength),
		zap.Int("sections", len(sections)),
		zap.Bool("name_found", result.Name != ""),
		zap.Bool("email_found", result.Email != ""),
		zap.Bool("phone_found", result.Phone != ""),
	)

	return result, nil
}
