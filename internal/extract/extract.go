package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

// ErrUnsupportedType is returned for uploads that are not PDF documents.
var ErrUnsupportedType = errors.New("unsupported file type")

// TextFromBytes extracts plain text from an uploaded resume. Only PDF is
// accepted; the mime type is normalized from the upload header with an
// extension fallback for clients that send application/octet-stream.
func TextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty file data")
	}

	normalized := normalizeMimeType(mimeType, fileName)
	if normalized != mimePDF {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
	return extractPDF(data)
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func normalizeMimeType(mimeType string, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if clean == mimePDF {
		return clean
	}
	// Browsers occasionally send octet-stream for drag-and-drop uploads.
	if clean == "" || clean == "application/octet-stream" {
		if strings.ToLower(filepath.Ext(fileName)) == ".pdf" {
			return mimePDF
		}
	}
	return clean
}
