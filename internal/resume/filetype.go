package resume

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
)

// FileType is a supported resume container.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var magicBytes = map[FileType][]byte{
	FileTypePDF:  []byte("%PDF"),
	FileTypeDOCX: {0x50, 0x4B, 0x03, 0x04},
}

// DetectFileType resolves the container from the file extension, falling back
// to the declared MIME type. It reports false for anything but PDF and DOCX.
func DetectFileType(fileName, mimeType string) (FileType, bool) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))) {
	case ".pdf":
		return FileTypePDF, true
	case ".docx":
		return FileTypeDOCX, true
	case "":
	default:
		return "", false
	}

	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(mimeType))
	if err != nil {
		return "", false
	}

	switch mediaType {
	case mimePDF:
		return FileTypePDF, true
	case mimeDOCX:
		return FileTypeDOCX, true
	default:
		return "", false
	}
}

func hasMagic(fileType FileType, data []byte) bool {
	prefix, ok := magicBytes[fileType]
	return ok && bytes.HasPrefix(data, prefix)
}
