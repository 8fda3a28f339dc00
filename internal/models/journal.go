// Package models defines the four ReadNest entity shapes and their codec
// behavior: validation of decoded records, creation-time fill of generated
// fields, and recomputation of derived fields on write.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/readnest/readnest/internal/common"
)

// JournalEntry is a single dated note. WordCount and Keywords are derived
// from Content at every write.
type JournalEntry struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	WordCount int            `json:"word_count"`
	Keywords  map[string]int `json:"keywords,omitempty"`
	Owner     string         `json:"user_id,omitempty"`
}

// Finalize supplies generated fields on create and recomputes derived ones.
func (j *JournalEntry) Finalize() {
	now := time.Now().UTC()
	if j.ID == "" {
		j.ID = NewID("j")
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = now
	}
	j.WordCount = WordCount(j.Content)
	if len(j.Keywords) == 0 {
		j.Keywords = ExtractKeywords(j.Content)
	}
}

// Validate reports whether a decoded record is usable at all.
func (j *JournalEntry) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("%w: journal entry missing id", common.ErrDecode)
	}
	if j.CreatedAt.IsZero() || j.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: journal entry %s missing timestamps", common.ErrDecode, j.ID)
	}
	return nil
}

// Touch advances UpdatedAt, keeping it monotonically non-decreasing.
func (j *JournalEntry) Touch() {
	if now := time.Now().UTC(); now.After(j.UpdatedAt) {
		j.UpdatedAt = now
	}
}

// Matches reports whether the entry matches a lower-cased substring query
// over title, content, or keyword terms.
func (j *JournalEntry) Matches(q string) bool {
	if strings.Contains(strings.ToLower(j.Title), q) ||
		strings.Contains(strings.ToLower(j.Content), q) {
		return true
	}
	for term := range j.Keywords {
		if strings.Contains(term, q) {
			return true
		}
	}
	return false
}

// JournalPatch carries the recognized update options for a journal entry.
// Nil pointers mean "leave unchanged". When Content changes, WordCount and
// Keywords are recomputed; an explicit Keywords value overrides the
// recomputation.
type JournalPatch struct {
	Title    *string        `json:"title,omitempty"`
	Content  *string        `json:"content,omitempty"`
	Keywords map[string]int `json:"keywords,omitempty"`
}

func (p JournalPatch) Apply(j *JournalEntry) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Content != nil {
		j.Content = *p.Content
		j.WordCount = WordCount(j.Content)
		j.Keywords = ExtractKeywords(j.Content)
	}
	if p.Keywords != nil {
		j.Keywords = p.Keywords
	}
	j.Touch()
}
