// Package catalog stores the books shown by the catalog view. The router only
// depends on Store; the cardinality read by Count is the cache-validity signal.
package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
)

var (
	// ErrNotFound is returned when no book has the requested ISBN.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicate is returned when adding a book whose ISBN is already cataloged.
	ErrDuplicate = errors.New("book already in catalog")
)

// Store is the catalog persistence contract.
type Store interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]models.Book, error)
	Get(ctx context.Context, isbn string) (models.Book, error)
	Add(ctx context.Context, book models.Book) error
	Remove(ctx context.Context, isbn string) error
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Book, error)
	Close() error
}

// MemoryStore keeps the catalog in process memory.
type MemoryStore struct {
	books map[string]models.Book
	mu    sync.RWMutex
}

func NewMemory(books ...models.Book) *MemoryStore {
	s := &MemoryStore{books: make(map[string]models.Book, len(books))}
	for _, b := range books {
		if b.AddedAt.IsZero() {
			b.AddedAt = time.Now()
		}
		s.books[b.ISBN] = b
	}
	return s
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books), nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, b)
	}
	sortBooks(books)
	return books, nil
}

func (s *MemoryStore) Get(_ context.Context, isbn string) (models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[isbn]
	if !ok {
		return models.Book{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) Add(_ context.Context, book models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[book.ISBN]; ok {
		return ErrDuplicate
	}
	if book.AddedAt.IsZero() {
		book.AddedAt = time.Now()
	}
	s.books[book.ISBN] = book
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, isbn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[isbn]; !ok {
		return ErrNotFound
	}
	delete(s.books, isbn)
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Book, error) {
	books, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	matching := make([]models.Book, 0, len(books))
	for _, b := range books {
		if Matches(b, criteria) {
			matching = append(matching, b)
		}
	}
	return matching, nil
}

func (s *MemoryStore) Close() error { return nil }

// Matches reports whether a book satisfies the search criteria. Each supplied
// field is a case-insensitive substring match; empty fields match everything.
func Matches(b models.Book, c models.SearchCriteria) bool {
	if c.AuthorName != "" && !containsFold(b.Author, c.AuthorName) {
		return false
	}
	if c.BookName != "" && !containsFold(b.Name, c.BookName) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}

func sortBooks(books []models.Book) {
	sort.Slice(books, func(i, j int) bool {
		if books[i].Name != books[j].Name {
			return books[i].Name < books[j].Name
		}
		return books[i].ISBN < books[j].ISBN
	})
}
