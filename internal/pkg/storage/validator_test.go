package storage

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestValidateAndBufferText(t *testing.T) {
	buf, contentType, ext, err := ValidateAndBuffer(strings.NewReader("plain lecture notes"), "notes.txt", 1<<20)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if contentType != "text/plain" {
		t.Fatalf("expected text/plain, got %s", contentType)
	}
	if ext != ".txt" {
		t.Fatalf("expected .txt, got %s", ext)
	}
	if buf.String() != "plain lecture notes" {
		t.Fatal("buffer must hold the full content")
	}
}

func TestValidateAndBufferPDF(t *testing.T) {
	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0x20}, 100)...)
	_, contentType, ext, err := ValidateAndBuffer(bytes.NewReader(pdf), "exam.pdf", 1<<20)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if contentType != "application/pdf" || ext != ".pdf" {
		t.Fatalf("got %s %s", contentType, ext)
	}
}

func TestValidateAndBufferTooLarge(t *testing.T) {
	_, _, _, err := ValidateAndBuffer(strings.NewReader("0123456789"), "notes.txt", 5)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestValidateAndBufferEmpty(t *testing.T) {
	_, _, _, err := ValidateAndBuffer(strings.NewReader(""), "notes.txt", 1<<20)
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestValidateAndBufferRejectsBinary(t *testing.T) {
	elf := append([]byte{0x7f, 'E', 'L', 'F'}, bytes.Repeat([]byte{0}, 64)...)
	_, _, _, err := ValidateAndBuffer(bytes.NewReader(elf), "malware.bin", 1<<20)
	if !errors.Is(err, ErrInvalidMime) {
		t.Fatalf("expected ErrInvalidMime, got %v", err)
	}
}

func TestValidateAndBufferOfficeContainer(t *testing.T) {
	// docx files are zip containers; the declared extension decides
	zip := append([]byte{'P', 'K', 0x03, 0x04}, bytes.Repeat([]byte{0}, 64)...)

	_, contentType, ext, err := ValidateAndBuffer(bytes.NewReader(zip), "summary.docx", 1<<20)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if ext != ".docx" {
		t.Fatalf("expected .docx, got %s", ext)
	}
	if !strings.Contains(contentType, "wordprocessingml") {
		t.Fatalf("expected docx content type, got %s", contentType)
	}

	// A zip with no recognized office extension is rejected
	if _, _, _, err := ValidateAndBuffer(bytes.NewReader(zip), "archive.zip", 1<<20); !errors.Is(err, ErrInvalidMime) {
		t.Fatalf("expected ErrInvalidMime for bare zip, got %v", err)
	}
}
