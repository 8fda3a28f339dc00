package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/readnest/readnest/internal/common"
)

// Document lifecycle statuses: uploading → processing → ready, or → error.
const (
	DocumentUploading  = "uploading"
	DocumentProcessing = "processing"
	DocumentReady      = "ready"
	DocumentError      = "error"
)

// Document is an uploaded file with extracted text content. Size is the
// exact byte length of the original upload; Content is immutable once the
// document is ready.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadDate time.Time `json:"upload_date"`
	Content    string    `json:"content,omitempty"`
	Status     string    `json:"status"`
	Owner      string    `json:"user_id,omitempty"`
}

func (d *Document) Finalize() {
	if d.ID == "" {
		d.ID = NewID("doc")
	}
	if d.UploadDate.IsZero() {
		d.UploadDate = time.Now().UTC()
	}
	if d.Status == "" {
		d.Status = DocumentReady
	}
}

func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: document missing id", common.ErrDecode)
	}
	if !ValidDocumentStatus(d.Status) {
		return fmt.Errorf("%w: document %s has unknown status %q", common.ErrDecode, d.ID, d.Status)
	}
	return nil
}

func (d *Document) Matches(q string) bool {
	return strings.Contains(strings.ToLower(d.Name), q) ||
		strings.Contains(strings.ToLower(d.Content), q)
}

func ValidDocumentStatus(s string) bool {
	switch s {
	case DocumentUploading, DocumentProcessing, DocumentReady, DocumentError:
		return true
	}
	return false
}

// DocumentPatch carries the recognized update options for a document.
// Content changes are ignored once the document is ready.
type DocumentPatch struct {
	Status  *string `json:"status,omitempty"`
	Content *string `json:"content,omitempty"`
}

func (p DocumentPatch) Apply(d *Document) {
	if p.Content != nil && d.Status != DocumentReady {
		d.Content = *p.Content
	}
	if p.Status != nil && ValidDocumentStatus(*p.Status) {
		d.Status = *p.Status
	}
}
