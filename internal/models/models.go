package models

import (
	"time"

	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
)

// Book represents a catalog entry keyed by ISBN
type Book struct {
	ISBN     string    `json:"isbn" yaml:"isbn" parquet:"isbn"`
	Name     string    `json:"name" yaml:"name" parquet:"name"`
	Author   string    `json:"author" yaml:"author" parquet:"author"`
	Category string    `json:"category,omitempty" yaml:"category,omitempty" parquet:"category,optional"`
	AddedAt  time.Time `json:"added_at" yaml:"added_at" parquet:"-"`
}

// SearchCriteria holds the fields of the catalog search form
type SearchCriteria struct {
	AuthorName string `json:"author_name,omitempty"`
	BookName   string `json:"book_name,omitempty"`
}

// IsEmpty reports whether no search field was supplied
func (c SearchCriteria) IsEmpty() bool {
	return c.AuthorName == "" && c.BookName == ""
}

// UserInfo carries the caller identity attributes supplied by the host
type UserInfo struct {
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
}

// Session holds the per-session values the catalog keeps between requests
type Session struct {
	ID            string            `json:"id"`
	Action        modes.ActionState `json:"action,omitempty"`
	PendingISBN   string            `json:"pending_isbn,omitempty"`
	ExceptionMsg  string            `json:"exception_msg,omitempty"`
	Search        SearchCriteria    `json:"search"`
	MatchingBooks []Book            `json:"matching_books,omitempty"`
	FormErrors    map[string]string `json:"form_errors,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Clone returns a copy that shares no slices or maps with s
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.MatchingBooks != nil {
		c.MatchingBooks = append([]Book(nil), s.MatchingBooks...)
	}
	if s.FormErrors != nil {
		c.FormErrors = make(map[string]string, len(s.FormErrors))
		for k, v := range s.FormErrors {
			c.FormErrors[k] = v
		}
	}
	return &c
}
