package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
	"github.com/lehigh-university-libraries/bookcatalog/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderPage(t *testing.T, rc *router.RenderContext, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Page(rc, opts).Render(context.Background(), &buf))
	return buf.String()
}

func catalogContext(action modes.ActionState) *router.RenderContext {
	return &router.RenderContext{
		Mode:   modes.ModeView,
		Action: action,
		Title:  "Book Catalog",
		Links: map[string]string{
			"homeUrl":             "/portlet?mode=view",
			"searchBookActionUrl": "/portlet/action?action=searchBookAction",
			"uploadTocActionUrl":  "/portlet/action?action=uploadTocAction&myaction=uploadTocAction",
		},
		Books: []models.Book{{ISBN: "1935182544", Name: "Portlets <in> Action", Author: "Ashish Sarin"}},
		BookLinks: map[string]router.BookLinks{
			"1935182544": {UploadToc: "/portlet?isbnNumber=1935182544&myaction=uploadTocForm"},
		},
		MaxUploadSize: 1024 * 1024,
	}
}

func TestPageShowsCatalog(t *testing.T) {
	html := renderPage(t, catalogContext(modes.ShowCatalog), Options{})

	assert.Contains(t, html, "<title>Book Catalog</title>")
	assert.Contains(t, html, "Portlets &lt;in&gt; Action")
	assert.Contains(t, html, `action="/portlet/action?action=searchBookAction"`)
	assert.Contains(t, html, "isbnNumber=1935182544&amp;myaction=uploadTocForm")
	assert.NotContains(t, html, "bookCatalog.css")
}

func TestPageMarkupHead(t *testing.T) {
	html := renderPage(t, catalogContext(modes.ShowCatalog), Options{MarkupHead: true, AssetsPath: "/static"})
	assert.Contains(t, html, `href="/static/css/bookCatalog.css"`)
	assert.Contains(t, html, `src="/static/js/bookCatalog.js"`)
}

func TestPageByState(t *testing.T) {
	tests := []struct {
		name   string
		modify func(rc *router.RenderContext)
		want   string
	}{
		{
			name: "error",
			modify: func(rc *router.RenderContext) {
				rc.Action = modes.Error
				rc.ExceptionMsg = "file too large"
			},
			want: `<p class="error">file too large</p>`,
		},
		{
			name: "upload form",
			modify: func(rc *router.RenderContext) {
				rc.Action = modes.UploadTocForm
				rc.PendingISBN = "1935182544"
			},
			want: "Upload the table of contents for ISBN 1935182544 (max 1.0 MiB)",
		},
		{
			name: "add book errors",
			modify: func(rc *router.RenderContext) {
				rc.Action = modes.AddBookAction
				rc.FormErrors = map[string]string{"name": "Please enter the book name"}
			},
			want: `<li data-field="name">Please enter the book name</li>`,
		},
		{
			name: "search results",
			modify: func(rc *router.RenderContext) {
				rc.Action = modes.ShowSearchResults
				rc.MatchingBooks = nil
			},
			want: "0 matching book(s)",
		},
		{
			name: "help",
			modify: func(rc *router.RenderContext) {
				rc.Mode = modes.ModeHelp
			},
			want: "attach a table of contents",
		},
		{
			name: "preferences",
			modify: func(rc *router.RenderContext) {
				rc.Mode = modes.ModeEdit
				rc.User = &models.UserInfo{GivenName: "Ada", FamilyName: "Lovelace"}
			},
			want: "Preferences for Ada Lovelace",
		},
		{
			name: "print has no forms",
			modify: func(rc *router.RenderContext) {
				rc.Mode = modes.ModePrint
			},
			want: "<td>Ashish Sarin</td>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := catalogContext(modes.ShowCatalog)
			tt.modify(rc)
			html := renderPage(t, rc, Options{})
			assert.Contains(t, html, tt.want)
			if rc.Mode == modes.ModePrint {
				assert.NotContains(t, html, "<form")
			}
		})
	}
}

func TestPageEscapesAttributes(t *testing.T) {
	rc := catalogContext(modes.ShowSearchResults)
	rc.Search = models.SearchCriteria{AuthorName: `"><script>`}
	rc.Links["refreshResultsUrl"] = "javascript:alert(1)"

	html := renderPage(t, rc, Options{})
	assert.NotContains(t, html, `"><script>`)
	assert.Contains(t, html, "&#34;&gt;&lt;script&gt;")
	assert.NotContains(t, html, "javascript:alert")
}

func TestBodyOmitsPageChrome(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Body(catalogContext(modes.ShowCatalog)).Render(context.Background(), &buf))
	assert.True(t, strings.HasPrefix(buf.String(), `<div class="book-catalog">`))
	assert.NotContains(t, buf.String(), "<html>")
}
