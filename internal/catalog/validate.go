package catalog

import (
	"strings"
	"unicode"

	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
)

// Validate returns a field name to message map; an empty map means the book
// can be added.
func Validate(b models.Book) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(b.Name) == "" {
		errs["name"] = "Please enter the book name"
	}
	if strings.TrimSpace(b.Author) == "" {
		errs["author"] = "Please enter the author name"
	}
	isbn := NormalizeISBN(b.ISBN)
	switch {
	case isbn == "":
		errs["isbnNumber"] = "Please enter the ISBN number"
	case !wellFormedISBN(isbn):
		errs["isbnNumber"] = "ISBN number must have 10 or 13 digits"
	}
	return errs
}

// NormalizeISBN strips hyphens and spaces and upper-cases an X check digit.
func NormalizeISBN(isbn string) string {
	isbn = strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn))
	return strings.ToUpper(isbn)
}

func wellFormedISBN(isbn string) bool {
	if len(isbn) != 10 && len(isbn) != 13 {
		return false
	}
	for i, r := range isbn {
		if unicode.IsDigit(r) {
			continue
		}
		// ISBN-10 allows X as check digit
		if r == 'X' && len(isbn) == 10 && i == 9 {
			continue
		}
		return false
	}
	return true
}
