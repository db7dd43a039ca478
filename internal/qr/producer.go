// Package qr renders QR artifacts for links and manages their storage on
// the local filesystem.
package qr

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	artifactSize = 256
	artifactExt  = ".png"
)

// Producer writes QR images into a single storage directory. Writes for
// different links are independent and never synchronized against each other.
type Producer struct {
	dir string
}

// NewProducer prepares the storage directory, creating it if absent.
func NewProducer(dir string) (*Producer, error) {
	const op = "qr.NewProducer"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: failed to create storage directory: %w", op, err)
	}

	return &Producer{dir: dir}, nil
}

// Generate renders a QR image encoding url and stores it under the given
// code. It returns the stored artifact path. A failed write makes the whole
// surrounding operation fail; it is never swallowed.
func (p *Producer) Generate(url, code string) (string, error) {
	const op = "qr.Producer.Generate"

	path := filepath.Join(p.dir, code+artifactExt)

	if err := qrcode.WriteFile(url, qrcode.Medium, artifactSize, path); err != nil {
		return "", fmt.Errorf("%s: failed to write qr artifact: %w", op, err)
	}

	return path, nil
}

// Inline reads a stored artifact back as a base64 string for detail views.
func (p *Producer) Inline(path string) (string, error) {
	const op = "qr.Producer.Inline"

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%s: failed to read qr artifact: %w", op, err)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// Remove deletes a stored artifact. A missing file is not an error, so the
// call is safe for cleanup after collisions and deletes.
func (p *Producer) Remove(path string) error {
	const op = "qr.Producer.Remove"

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%s: failed to remove qr artifact: %w", op, err)
	}

	return nil
}
