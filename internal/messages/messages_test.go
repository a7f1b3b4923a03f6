package messages

import (
	"testing"

	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
	"github.com/lehigh-university-libraries/bookcatalog/internal/upload"
	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	r := New()

	assert.Equal(t, "Book Catalog", r.Title("", modes.ShowCatalog))
	assert.Equal(t, "Book Catalog - Search Results", r.Title("en-US,en;q=0.9", modes.ShowSearchResults))
	assert.Equal(t, "Catalogue de livres - Aide", r.Title("fr-CA,fr;q=0.8", modes.Help))
	assert.Equal(t, "Book Catalog - Error", r.Title("de-DE", modes.Error))
}

func TestEveryActionStateHasATitle(t *testing.T) {
	r := New()
	for _, state := range []modes.ActionState{
		modes.ShowCatalog, modes.ShowSearchResults, modes.AddBookForm, modes.AddBookAction,
		modes.UploadTocForm, modes.UploadTocAction, modes.RemoveBookAction, modes.SearchBookAction,
		modes.Error, modes.Print, modes.Help, modes.Preferences,
	} {
		for _, accept := range []string{"en", "fr"} {
			assert.NotEqual(t, TitleKey(state), r.Title(accept, state), "%s/%s", accept, state)
		}
	}
}

func TestUploadFailure(t *testing.T) {
	r := New()

	tooLarge := &upload.Error{Kind: upload.KindTooLarge}
	assert.Equal(t,
		"Exception occurred while uploading the file. Please check the file size is <= 1.0 MiB",
		r.UploadFailure("en", tooLarge, upload.DefaultMaxBytes))

	ioErr := &upload.Error{Kind: upload.KindIO}
	assert.Equal(t, "Exception occurred while uploading the file. Please try again", r.UploadFailure("en", ioErr, upload.DefaultMaxBytes))

	noTarget := &upload.Error{Kind: upload.KindNoTarget}
	assert.Equal(t, "Please choose the book to upload the TOC for", r.UploadFailure("", noTarget, 0))
}

func TestUnknownKeyResolvesToKey(t *testing.T) {
	assert.Equal(t, "no.such.key", New().Lookup("en", "no.such.key"))
}
