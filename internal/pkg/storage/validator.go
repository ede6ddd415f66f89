package storage

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

var (
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile    = errors.New("file is empty")
	ErrInvalidMime  = errors.New("file type is not allowed")
)

// Content types accepted for study materials. Office formats are detected
// as zip/ole containers, so the extension decides for those.
var allowedMimes = map[string]string{
	"application/pdf":           ".pdf",
	"text/plain":                ".txt",
	"image/jpeg":                ".jpg",
	"image/png":                 ".png",
	"image/gif":                 ".gif",
	"image/webp":                ".webp",
	"application/zip":           "", // docx/pptx/xlsx containers, extension decides
	"application/x-ole-storage": "", // legacy doc/ppt/xls
}

var allowedOfficeExts = map[string]string{
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ValidateAndBuffer reads the whole file into memory, enforces the size
// limit and detects its content type. Returns the buffered content, the
// content type to store, and the canonical extension.
func ValidateAndBuffer(reader io.Reader, filename string, maxSize int64) (*bytes.Buffer, string, string, error) {
	buf := &bytes.Buffer{}
	n, err := io.Copy(buf, io.LimitReader(reader, maxSize+1))
	if err != nil {
		return nil, "", "", err
	}
	if n == 0 {
		return nil, "", "", ErrEmptyFile
	}
	if n > maxSize {
		return nil, "", "", ErrFileTooLarge
	}

	head := buf.Bytes()
	if len(head) > 512 {
		head = head[:512]
	}
	detected := http.DetectContentType(head)
	// DetectContentType appends charset for text
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}

	ext := strings.ToLower(extOf(filename))

	canonicalExt, ok := allowedMimes[detected]
	if !ok {
		return nil, "", "", ErrInvalidMime
	}

	// Container formats: trust the declared office extension
	if canonicalExt == "" {
		mime, ok := allowedOfficeExts[ext]
		if !ok {
			return nil, "", "", ErrInvalidMime
		}
		return buf, mime, ext, nil
	}

	return buf, detected, canonicalExt, nil
}

// IsImage reports whether a stored content type is an image
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func extOf(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ""
}
