package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	MaxMenuUploadSize = 5 * 1024 * 1024 // 5MB, images are usually inlined as data URIs
)

// ValidateMenuUpload checks that an uploaded file is an HTML document within size limits
func ValidateMenuUpload(fileHeader *multipart.FileHeader) error {
	// Check file size
	if fileHeader.Size > MaxMenuUploadSize {
		return fmt.Errorf("file size exceeds maximum allowed size of 5MB")
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".html" && ext != ".htm" {
		return fmt.Errorf("only HTML files are allowed")
	}

	// Open file to check content type
	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Read first 512 bytes to detect content type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	if !looksLikeHTML(buffer[:n]) {
		return fmt.Errorf("file is not a valid HTML document")
	}
	return nil
}

// looksLikeHTML accepts text that starts with markup. Fragments are allowed
// since the generator sometimes omits the html and body elements.
func looksLikeHTML(head []byte) bool {
	head = bytes.TrimLeft(head, "\ufeff \t\r\n")
	if len(head) == 0 || head[0] != '<' {
		return false
	}
	if strings.HasPrefix(http.DetectContentType(head), "text/html") {
		return true
	}
	return utf8.Valid(head) && !bytes.ContainsRune(head, 0)
}

// ReadMenuUpload validates and reads an uploaded menu document
func ReadMenuUpload(fileHeader *multipart.FileHeader) (string, error) {
	if err := ValidateMenuUpload(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, MaxMenuUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return string(content), nil
}
