package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/templui/showcase/internal/model"
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	Kind              model.MediaKind
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

var (
	// ImageConstraints defines validation rules for image uploads
	ImageConstraints = FileConstraints{
		Kind: model.MediaKindImage,
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
		},
		AllowedExtensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
			".gif":  true,
		},
		MaxSize: 10 << 20, // 10MB
	}

	// VideoConstraints covers proxied video uploads. Large videos go through
	// signed direct uploads instead.
	VideoConstraints = FileConstraints{
		Kind: model.MediaKindVideo,
		AllowedMimeTypes: map[string]bool{
			"video/mp4":  true,
			"video/webm": true,
		},
		AllowedExtensions: map[string]bool{
			".mp4":  true,
			".webm": true,
		},
		MaxSize: 200 << 20, // 200MB
	}
)

// WithMaxSize returns a copy of c limited to maxMB megabytes.
func (c FileConstraints) WithMaxSize(maxMB int) FileConstraints {
	c.MaxSize = int64(maxMB) << 20
	return c
}

// AllowsExtension reports whether filename's extension is accepted, for
// uploads whose bytes never pass through the server.
func (c FileConstraints) AllowsExtension(filename string) bool {
	return c.AllowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// DetectMedia validates a file upload against one or more constraint sets and
// returns the media kind and sniffed MIME type of the first set it matches.
func DetectMedia(header *multipart.FileHeader, constraints ...FileConstraints) (model.MediaKind, string, error) {
	if len(constraints) == 0 {
		return "", "", fmt.Errorf("no file constraints provided")
	}

	var lastErr error
	for _, constraint := range constraints {
		detected, err := validateAgainstConstraint(header, constraint)
		if err == nil {
			return constraint.Kind, detected, nil
		}
		lastErr = err
	}

	return "", "", lastErr
}

func validateAgainstConstraint(header *multipart.FileHeader, constraints FileConstraints) (string, error) {
	// Check file size first (before reading content)
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return "", fmt.Errorf("file too large: maximum size is %d MB", maxMB)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads max 512 bytes to determine MIME type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	// Detect actual content type from magic numbers, not the client header
	detectedType := http.DetectContentType(buffer[:n])

	if !constraints.AllowedMimeTypes[detectedType] {
		return "", fmt.Errorf("invalid file type (detected: %s)", detectedType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return "", fmt.Errorf("invalid file extension: %s", ext)
	}

	return detectedType, nil
}
