// Package messages resolves user-facing strings by key. Keys follow the
// catalog's resource bundle naming, e.g. "portlet.title.showCatalog".
package messages

import (
	"github.com/dustin/go-humanize"
	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
	"github.com/lehigh-university-libraries/bookcatalog/internal/upload"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	KeyUploadFailed   = "upload.error.failed"
	KeyUploadTooLarge = "upload.error.tooLarge"
	KeyUploadNoTarget = "upload.error.noTarget"
	KeyRemoveFailed   = "remove.error.failed"
)

// TitleKey is the message key of the window title for an action state.
func TitleKey(state modes.ActionState) string {
	return "portlet.title." + state.String()
}

var bundles = map[language.Tag]map[string]string{
	language.English: {
		"portlet.title.showCatalog":       "Book Catalog",
		"portlet.title.showSearchResults": "Book Catalog - Search Results",
		"portlet.title.addBookForm":       "Book Catalog - Add Book",
		"portlet.title.addBookAction":     "Book Catalog - Add Book",
		"portlet.title.uploadTocForm":     "Book Catalog - Upload TOC",
		"portlet.title.uploadTocAction":   "Book Catalog - Upload TOC",
		"portlet.title.removeBookAction":  "Book Catalog",
		"portlet.title.searchBookAction":  "Book Catalog - Search Results",
		"portlet.title.error":             "Book Catalog - Error",
		"portlet.title.print":             "Book Catalog - Print",
		"portlet.title.help":              "Book Catalog - Help",
		"portlet.title.preferences":       "Book Catalog - Preferences",
		KeyUploadFailed:                   "Exception occurred while uploading the file. Please try again",
		KeyUploadTooLarge:                 "Exception occurred while uploading the file. Please check the file size is <= %s",
		KeyUploadNoTarget:                 "Please choose the book to upload the TOC for",
		KeyRemoveFailed:                   "The book could not be removed from the catalog",
	},
	language.French: {
		"portlet.title.showCatalog":       "Catalogue de livres",
		"portlet.title.showSearchResults": "Catalogue de livres - Résultats",
		"portlet.title.addBookForm":       "Catalogue de livres - Ajouter un livre",
		"portlet.title.addBookAction":     "Catalogue de livres - Ajouter un livre",
		"portlet.title.uploadTocForm":     "Catalogue de livres - Table des matières",
		"portlet.title.uploadTocAction":   "Catalogue de livres - Table des matières",
		"portlet.title.removeBookAction":  "Catalogue de livres",
		"portlet.title.searchBookAction":  "Catalogue de livres - Résultats",
		"portlet.title.print":             "Catalogue de livres - Impression",
		"portlet.title.error":             "Catalogue de livres - Erreur",
		"portlet.title.help":              "Catalogue de livres - Aide",
		"portlet.title.preferences":       "Catalogue de livres - Préférences",
		KeyUploadFailed:                   "Une erreur est survenue pendant le téléversement. Veuillez réessayer",
		KeyUploadTooLarge:                 "Une erreur est survenue pendant le téléversement. La taille du fichier doit être <= %s",
		KeyUploadNoTarget:                 "Veuillez choisir le livre pour la table des matières",
		KeyRemoveFailed:                   "Le livre n'a pas pu être retiré du catalogue",
	},
}

// Resolver maps keys to strings for the best-matching supported language.
// Unknown keys resolve to the key itself.
type Resolver struct {
	catalog *catalog.Builder
	tags    []language.Tag
	matcher language.Matcher
}

func New() *Resolver {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	tags := []language.Tag{language.English}
	for tag, msgs := range bundles {
		if tag != language.English {
			tags = append(tags, tag)
		}
		for key, msg := range msgs {
			// Keys and messages are static; SetString only fails on a bad tag.
			_ = b.SetString(tag, key, msg)
		}
	}
	return &Resolver{catalog: b, tags: tags, matcher: language.NewMatcher(tags)}
}

// Printer returns a printer for an Accept-Language style preference list.
func (r *Resolver) Printer(accept string) *message.Printer {
	prefs, _, _ := language.ParseAcceptLanguage(accept)
	_, idx, _ := r.matcher.Match(prefs...)
	return message.NewPrinter(r.tags[idx], message.Catalog(r.catalog))
}

// Lookup resolves key for the preferred languages in accept.
func (r *Resolver) Lookup(accept, key string, args ...any) string {
	return r.Printer(accept).Sprintf(key, args...)
}

// Title resolves the window title for an action state.
func (r *Resolver) Title(accept string, state modes.ActionState) string {
	return r.Lookup(accept, TitleKey(state))
}

// UploadFailure resolves the user-facing message for an ingestion error.
func (r *Resolver) UploadFailure(accept string, err error, maxBytes int64) string {
	switch upload.KindOf(err) {
	case upload.KindTooLarge:
		return r.Lookup(accept, KeyUploadTooLarge, humanize.IBytes(uint64(maxBytes)))
	case upload.KindNoTarget:
		return r.Lookup(accept, KeyUploadNoTarget)
	default:
		return r.Lookup(accept, KeyUploadFailed)
	}
}
