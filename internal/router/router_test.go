package router

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/bookcatalog/internal/cache"
	"github.com/lehigh-university-libraries/bookcatalog/internal/catalog"
	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
	"github.com/lehigh-university-libraries/bookcatalog/internal/navigation"
	"github.com/lehigh-university-libraries/bookcatalog/internal/upload"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	published []string
}

func (m *recordingMirror) Publish(_ context.Context, localPath, objectName string) error {
	m.published = append(m.published, objectName)
	return nil
}

type fixture struct {
	router  *Router
	catalog *catalog.MemoryStore
	fs      afero.Fs
	mirror  *recordingMirror
}

func newFixture(t *testing.T, books int) *fixture {
	t.Helper()
	store := catalog.NewMemory()
	for i := 0; i < books; i++ {
		require.NoError(t, store.Add(context.Background(), models.Book{
			ISBN:   "97800000000" + string(rune('0'+i/10)) + string(rune('0'+i%10)),
			Name:   "Book",
			Author: "Author",
		}))
	}

	fs := afero.NewMemMapFs()
	ingestor := upload.New("/toc", 2048)
	ingestor.Fs = fs
	mirror := &recordingMirror{}

	r := New(Options{
		Catalog: store,
		Factory: navigation.NewFactory("/portlet", navigation.Capabilities{
			Modes:        modes.Modes,
			WindowStates: modes.WindowStates,
		}),
		Ingestor:   ingestor,
		Mirror:     mirror,
		PortalInfo: "bookcatalog/test",
	})
	return &fixture{router: r, catalog: store, fs: fs, mirror: mirror}
}

func view(token cache.Token, params url.Values) *RenderRequest {
	return &RenderRequest{Mode: "view", Token: token, Params: params}
}

func TestViewCacheScenario(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	sess := &models.Session{ID: "s"}

	// Request 1: no token
	resp, err := f.router.Render(ctx, view("", nil), sess)
	require.NoError(t, err)
	assert.False(t, resp.UseCached)
	assert.Equal(t, cache.Token("5"), resp.Token)
	require.NotNil(t, resp.Context)
	assert.Len(t, resp.Context.Books, 5)

	// Request 2: token "5"
	resp, err = f.router.Render(ctx, view("5", nil), sess)
	require.NoError(t, err)
	assert.True(t, resp.UseCached)
	assert.Equal(t, cache.FreshnessWindow, resp.Expiration)
	assert.Equal(t, float64(100), resp.Expiration.Seconds())
	assert.Nil(t, resp.Context)

	require.NoError(t, f.catalog.Add(ctx, models.Book{ISBN: "1935182544", Name: "Portlets in Action", Author: "Ashish Sarin"}))

	// Request 3: token still "5"
	resp, err = f.router.Render(ctx, view("5", nil), sess)
	require.NoError(t, err)
	assert.False(t, resp.UseCached)
	assert.Equal(t, cache.Token("6"), resp.Token)
}

func TestViewCacheIdempotent(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	sess := &models.Session{ID: "s"}

	first, err := f.router.Render(ctx, view("", nil), sess)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		resp, err := f.router.Render(ctx, view(first.Token, nil), sess)
		require.NoError(t, err)
		assert.True(t, resp.UseCached)
	}
}

func TestViewAssemblesContext(t *testing.T) {
	f := newFixture(t, 1)
	sess := &models.Session{ID: "s"}

	req := view("", nil)
	req.User = &models.UserInfo{GivenName: "Ada", FamilyName: "Lovelace"}
	req.WindowState = "maximized"
	resp, err := f.router.Render(context.Background(), req, sess)
	require.NoError(t, err)

	rc := resp.Context
	assert.Equal(t, modes.ModeView, rc.Mode)
	assert.Equal(t, modes.WindowMaximized, rc.WindowState)
	assert.Equal(t, modes.ShowCatalog, rc.Action)
	assert.Equal(t, "Book Catalog", rc.Title)
	assert.Equal(t, "bookcatalog/test", rc.PortalInfo)
	assert.Len(t, rc.Links, 11)
	assert.Equal(t, int64(2048), rc.MaxUploadSize)
	require.Len(t, rc.BookLinks, 1)

	attrs := rc.Attributes()
	assert.Equal(t, "Ada", attrs["firstName"])
	assert.Equal(t, "Lovelace", attrs["lastName"])
	assert.Equal(t, "showCatalog", attrs["myaction"])
	assert.Contains(t, attrs, "printModeUrl")
	assert.NotContains(t, attrs, "matchingBooks")
}

func TestViewActionIsSticky(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	sess := &models.Session{ID: "s"}

	resp, err := f.router.Render(ctx, view("", url.Values{"myaction": {"addBookForm"}}), sess)
	require.NoError(t, err)
	assert.Equal(t, modes.AddBookForm, resp.Context.Action)
	assert.Equal(t, "Book Catalog - Add Book", resp.Context.Title)

	resp, err = f.router.Render(ctx, view("", nil), sess)
	require.NoError(t, err)
	assert.Equal(t, modes.AddBookForm, resp.Context.Action)

	resp, err = f.router.Render(ctx, view("", url.Values{"myaction": {"bogus"}}), sess)
	require.NoError(t, err)
	assert.Equal(t, modes.AddBookForm, resp.Context.Action)
}

func TestRenderOtherModes(t *testing.T) {
	f := newFixture(t, 3)
	sess := &models.Session{ID: "s", Action: modes.AddBookForm}

	tests := []struct {
		mode      string
		wantMode  modes.Mode
		wantState modes.ActionState
		wantBooks int
	}{
		{"edit", modes.ModeEdit, modes.Preferences, 0},
		{"help", modes.ModeHelp, modes.Help, 0},
		{"print", modes.ModePrint, modes.Print, 3},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			resp, err := f.router.Render(context.Background(), &RenderRequest{Mode: tt.mode, Token: "3"}, sess)
			require.NoError(t, err)
			assert.False(t, resp.UseCached, "only view mode consults the cache")
			assert.Empty(t, resp.Token)
			assert.Equal(t, tt.wantMode, resp.Context.Mode)
			assert.Equal(t, tt.wantState, resp.Context.Action)
			assert.Len(t, resp.Context.Books, tt.wantBooks)
		})
	}

	// Rendering other modes leaves the sticky view state alone.
	assert.Equal(t, modes.AddBookForm, sess.Action)
}

func TestRenderUnknownModeFallsBackToView(t *testing.T) {
	f := newFixture(t, 0)
	resp, err := f.router.Render(context.Background(), &RenderRequest{Mode: "about"}, &models.Session{ID: "s"})
	require.NoError(t, err)
	assert.Equal(t, modes.ModeView, resp.Context.Mode)
	assert.Equal(t, cache.Token("0"), resp.Token)
}

func TestRestrictedHostOmitsPrintMode(t *testing.T) {
	f := newFixture(t, 0)
	f.router.factory = navigation.NewFactory("/portlet", navigation.Capabilities{
		Modes: []modes.Mode{modes.ModeView, modes.ModeEdit},
	})

	resp, err := f.router.Render(context.Background(), view("", nil), &models.Session{ID: "s"})
	require.NoError(t, err)
	assert.Equal(t, "/portlet", resp.Context.Links["printModeUrl"])
	assert.Equal(t, "/portlet?mode=edit", resp.Context.Links["prefUrl"])
}

func multipartSource(fileName string, data []byte) upload.Source {
	return &singlePart{name: fileName, r: bytes.NewReader(data)}
}

type singlePart struct {
	name string
	r    io.Reader
	done bool
}

func (s *singlePart) NextPart() (upload.Part, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s, nil
}

func (s *singlePart) Read(p []byte) (int, error) { return s.r.Read(p) }
func (s *singlePart) FileName() string           { return s.name }
func (s *singlePart) FormName() string           { return "tocFile" }

func TestUploadFlow(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	sess := &models.Session{ID: "s"}

	_, err := f.router.Render(ctx, view("", url.Values{
		"myaction":   {"uploadTocForm"},
		"isbnNumber": {"1935182544"},
	}), sess)
	require.NoError(t, err)
	assert.Equal(t, "1935182544", sess.PendingISBN)

	resp, err := f.router.Process(ctx, &ActionRequest{
		Name:   "uploadTocAction",
		Upload: multipartSource("toc.pdf", []byte("%PDF-1.4")),
	}, sess)
	require.NoError(t, err)
	assert.Equal(t, modes.ShowCatalog, resp.Next)
	assert.Equal(t, modes.ShowCatalog, sess.Action)
	assert.Empty(t, sess.PendingISBN)
	require.NotNil(t, resp.Upload)

	target := filepath.Join("/toc", "1935182544.pdf")
	assert.Equal(t, target, resp.Upload.Path)
	exists, err := afero.Exists(f.fs, target)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []string{"1935182544.pdf"}, f.mirror.published)
}

func TestUploadTooLargeRendersError(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	sess := &models.Session{ID: "s", PendingISBN: "1935182544"}

	resp, err := f.router.Process(ctx, &ActionRequest{
		Name:   "uploadTocAction",
		Upload: multipartSource("toc.pdf", make([]byte, 2049)),
	}, sess)
	require.NoError(t, err)
	assert.Equal(t, modes.Error, resp.Next)
	assert.Equal(t, modes.Error, sess.Action)
	assert.Equal(t, "Exception occurred while uploading the file. Please check the file size is <= 2.0 KiB", resp.ExceptionMsg)
	assert.Empty(t, f.mirror.published)

	exists, _ := afero.Exists(f.fs, filepath.Join("/toc", "1935182544.pdf"))
	assert.False(t, exists)

	params := resp.RenderParams()
	assert.Equal(t, "error", params.Get("myaction"))

	render, err := f.router.Render(ctx, view("", params), sess)
	require.NoError(t, err)
	assert.Equal(t, modes.Error, render.Context.Action)
	assert.Equal(t, resp.ExceptionMsg, render.Context.Attributes()["exceptionMsg"])
}

func TestUploadTargetTravelsWithForm(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	sess := &models.Session{ID: "s"}

	render, err := f.router.Render(ctx, view("", url.Values{
		"myaction":   {"uploadTocForm"},
		"isbnNumber": {"1935182544"},
	}), sess)
	require.NoError(t, err)
	u, err := url.Parse(render.Context.Links["uploadTocActionUrl"])
	require.NoError(t, err)
	assert.Equal(t, "1935182544", u.Query().Get("isbnNumber"))

	// Another form rendered since then moved the session's pending target.
	sess.PendingISBN = "9781617290503"

	resp, err := f.router.Process(ctx, &ActionRequest{
		Name:   "uploadTocAction",
		Form:   u.Query(),
		Upload: multipartSource("toc.txt", []byte("TOC of 1935182544")),
	}, sess)
	require.NoError(t, err)
	assert.Equal(t, modes.ShowCatalog, resp.Next)

	data, err := afero.ReadFile(f.fs, filepath.Join("/toc", "1935182544.txt"))
	require.NoError(t, err)
	assert.Equal(t, "TOC of 1935182544", string(data))
	exists, err := afero.Exists(f.fs, filepath.Join("/toc", "9781617290503.txt"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestErrorMessageSurvivesReload(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	sess := &models.Session{ID: "s", PendingISBN: "1935182544"}

	resp, err := f.router.Process(ctx, &ActionRequest{
		Name:   "uploadTocAction",
		Upload: multipartSource("toc.pdf", make([]byte, 2049)),
	}, sess)
	require.NoError(t, err)
	require.Equal(t, modes.Error, resp.Next)

	render, err := f.router.Render(ctx, view("", nil), sess)
	require.NoError(t, err)
	assert.Equal(t, modes.Error, render.Context.Action)
	assert.Equal(t, resp.ExceptionMsg, render.Context.ExceptionMsg)

	_, err = f.router.Process(ctx, &ActionRequest{Name: "resetAction"}, sess)
	require.NoError(t, err)
	assert.Empty(t, sess.ExceptionMsg)
}

func TestCachedRenderLeavesSessionAlone(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	sess := &models.Session{ID: "s", Action: modes.ShowCatalog}

	resp, err := f.router.Render(ctx, view("2", url.Values{
		"myaction":   {"uploadTocForm"},
		"isbnNumber": {"1935182544"},
	}), sess)
	require.NoError(t, err)
	assert.True(t, resp.UseCached)
	assert.Equal(t, modes.ShowCatalog, sess.Action)
	assert.Empty(t, sess.PendingISBN)
}

func TestUploadWithoutTargetOrBody(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	resp, err := f.router.Process(ctx, &ActionRequest{
		Name:   "uploadTocAction",
		Upload: multipartSource("toc.pdf", []byte("x")),
	}, &models.Session{ID: "s"})
	require.NoError(t, err)
	assert.Equal(t, modes.Error, resp.Next)
	assert.Equal(t, "Please choose the book to upload the TOC for", resp.ExceptionMsg)

	resp, err = f.router.Process(ctx, &ActionRequest{Name: "uploadTocAction"}, &models.Session{ID: "s", PendingISBN: "1"})
	require.NoError(t, err)
	assert.Equal(t, modes.Error, resp.Next)
}

func TestSearchAndReset(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.catalog.Add(ctx, models.Book{ISBN: "1935182544", Name: "Portlets in Action", Author: "Ashish Sarin"}))
	require.NoError(t, f.catalog.Add(ctx, models.Book{ISBN: "9781617290503", Name: "Go in Action", Author: "William Kennedy"}))
	sess := &models.Session{ID: "s"}

	resp, err := f.router.Process(ctx, &ActionRequest{
		Name: "searchBookAction",
		Form: url.Values{ParamAuthorSearch: {"sarin"}},
	}, sess)
	require.NoError(t, err)
	assert.Equal(t, modes.ShowSearchResults, resp.Next)
	require.Len(t, sess.MatchingBooks, 1)

	render, err := f.router.Render(ctx, view("", resp.RenderParams()), sess)
	require.NoError(t, err)
	assert.Equal(t, modes.ShowSearchResults, render.Context.Action)
	assert.Equal(t, "sarin", render.Context.Search.AuthorName)
	assert.Len(t, render.Context.Attributes()["matchingBooks"], 1)

	// refreshResults is not a recognized state, so the results stay.
	render, err = f.router.Render(ctx, view("", url.Values{"myaction": {"refreshResults"}}), sess)
	require.NoError(t, err)
	assert.Equal(t, modes.ShowSearchResults, render.Context.Action)

	resp, err = f.router.Process(ctx, &ActionRequest{Name: "resetAction"}, sess)
	require.NoError(t, err)
	assert.Equal(t, modes.ShowCatalog, resp.Next)
	assert.Nil(t, sess.MatchingBooks)
	assert.True(t, sess.Search.IsEmpty())
}

func TestAddAndRemoveBook(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	sess := &models.Session{ID: "s"}

	resp, err := f.router.Process(ctx, &ActionRequest{
		Name: "addBookAction",
		Form: url.Values{"name": {"Portlets in Action"}, "author": {"Ashish Sarin"}, "isbnNumber": {"1-935182-54-4"}},
	}, sess)
	require.NoError(t, err)
	assert.Equal(t, modes.ShowCatalog, resp.Next)
	n, _ := f.catalog.Count(ctx)
	assert.Equal(t, 1, n)

	resp, err = f.router.Process(ctx, &ActionRequest{
		Name: "addBookAction",
		Form: url.Values{"name": {"Again"}, "author": {"Someone"}, "isbnNumber": {"1935182544"}},
	}, sess)
	require.NoError(t, err)
	assert.Equal(t, modes.AddBookAction, resp.Next)
	assert.Contains(t, sess.FormErrors, "isbnNumber")

	render, err := f.router.Render(ctx, view("", resp.RenderParams()), sess)
	require.NoError(t, err)
	assert.Equal(t, sess.FormErrors, render.Context.FormErrors)

	resp, err = f.router.Process(ctx, &ActionRequest{
		Name: "removeBookAction",
		Form: url.Values{"isbnNumber": {"1935182544"}},
	}, sess)
	require.NoError(t, err)
	assert.Equal(t, modes.ShowCatalog, resp.Next)
	n, _ = f.catalog.Count(ctx)
	assert.Equal(t, 0, n)

	// Removing again is not an error.
	_, err = f.router.Process(ctx, &ActionRequest{
		Name: "removeBookAction",
		Form: url.Values{"isbnNumber": {"1935182544"}},
	}, sess)
	require.NoError(t, err)
}

func TestProcessUnknownAction(t *testing.T) {
	f := newFixture(t, 0)
	sess := &models.Session{ID: "s", Action: modes.ShowSearchResults}
	_, err := f.router.Process(context.Background(), &ActionRequest{Name: "dropCatalog"}, sess)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, modes.ShowSearchResults, sess.Action)
}
