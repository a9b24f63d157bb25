package storage

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	ErrNotImage     = errors.New("file is not an allowed image type")
)

var allowedImageMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage sniffs the real content type from the first 512 bytes
// (the client-supplied header is not trusted) and enforces the size cap.
// The file is rewound before returning.
func ValidateImage(fileHeader *multipart.FileHeader, maxSize int64) (string, error) {
	if fileHeader.Size == 0 {
		return "", ErrEmptyFile
	}
	if fileHeader.Size > maxSize {
		return "", ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]

	if !allowedImageMime[mimeType] {
		return "", ErrNotImage
	}

	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}
	return mimeType, nil
}

// ImageExt maps a sniffed MIME type to a file extension, falling back to
// the original filename's extension.
func ImageExt(mimeType, originalName string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if ext := filepath.Ext(originalName); ext != "" {
		return ext
	}
	return ".bin"
}
