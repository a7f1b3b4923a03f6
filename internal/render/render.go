// Package render turns a router.RenderContext into HTML. The markup lives in
// embedded html/template files and is exposed as templ components.
package render

import (
	"embed"
	"html/template"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
	"github.com/lehigh-university-libraries/bookcatalog/internal/router"
)

//go:embed templates/*.html
var files embed.FS

var templates = template.Must(template.New("catalog").Funcs(template.FuncMap{
	"ibytes":      func(n int64) string { return humanize.IBytes(uint64(n)) },
	"displayName": displayName,
	"fieldErrors": fieldErrors,
	"toolbar":     toolbar,
	"table":       table,
}).ParseFS(files, "templates/*.html"))

// Options controls markup that depends on the hosting portal.
type Options struct {
	// MarkupHead adds the catalog stylesheet and script to <head>.
	MarkupHead bool
	AssetsPath string
}

// view is the data every template receives.
type view struct {
	*router.RenderContext
	Opts Options
}

// Page renders the full catalog page for a context.
func Page(rc *router.RenderContext, opts Options) templ.Component {
	return templ.FromGoHTML(templates.Lookup("page"), view{RenderContext: rc, Opts: opts})
}

// Body renders the portion of the page selected by mode and action state.
func Body(rc *router.RenderContext) templ.Component {
	return templ.FromGoHTML(templates.Lookup("body"), view{RenderContext: rc})
}

type navLink struct {
	Label string
	URL   string
}

func toolbar(links map[string]string) []navLink {
	return []navLink{
		{"Home", links["homeUrl"]},
		{"Add Book", links["addBookFormUrl"]},
		{"Print", links["printModeUrl"]},
		{"Full Screen", links["fullScreenUrl"]},
		{"Preferences", links["prefUrl"]},
		{"Help", links["helpUrl"]},
	}
}

type bookTable struct {
	Books   []models.Book
	Links   map[string]router.BookLinks
	Actions bool
}

func table(rc *router.RenderContext, books []models.Book, actions bool) bookTable {
	return bookTable{Books: books, Links: rc.BookLinks, Actions: actions}
}

type fieldError struct {
	Field   string
	Message string
}

func fieldErrors(errs map[string]string) []fieldError {
	out := make([]fieldError, 0, len(errs))
	for f, msg := range errs {
		out = append(out, fieldError{Field: f, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func displayName(u *models.UserInfo) string {
	if u == nil || (u.GivenName == "" && u.FamilyName == "") {
		return "guest"
	}
	return strings.TrimSpace(u.GivenName + " " + u.FamilyName)
}
