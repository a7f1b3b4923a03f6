// Package router dispatches catalog render and action requests.
//
// Render requests are routed by presentation mode through a mode-keyed table;
// within view mode the session's sticky action state selects what is shown.
// Action requests are routed by action name and produce the action state the
// following render starts from.
package router

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/lehigh-university-libraries/bookcatalog/internal/actionstate"
	"github.com/lehigh-university-libraries/bookcatalog/internal/cache"
	"github.com/lehigh-university-libraries/bookcatalog/internal/catalog"
	"github.com/lehigh-university-libraries/bookcatalog/internal/messages"
	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
	"github.com/lehigh-university-libraries/bookcatalog/internal/navigation"
	"github.com/lehigh-university-libraries/bookcatalog/internal/tocstore"
	"github.com/lehigh-university-libraries/bookcatalog/internal/upload"
)

// Render parameter names.
const (
	ParamExceptionMsg = "exceptionMsg"
	ParamAuthorSearch = "authorNameSearchField"
	ParamBookSearch   = "bookNameSearchField"
	ParamBookName     = "name"
	ParamAuthorName   = "author"
	ParamCategory     = "category"
)

// RenderRequest is an inbound render request.
type RenderRequest struct {
	Mode           string
	WindowState    string
	Params         url.Values
	Token          cache.Token
	User           *models.UserInfo
	AcceptLanguage string
}

// BookLinks are the per-book navigation targets.
type BookLinks struct {
	UploadToc string
	Remove    string
}

// RenderContext is the attribute set handed to the renderer.
type RenderContext struct {
	Mode          modes.Mode
	WindowState   modes.WindowState
	Action        modes.ActionState
	Title         string
	PortalInfo    string
	User          *models.UserInfo
	Links         map[string]string
	Books         []models.Book
	BookLinks     map[string]BookLinks
	MatchingBooks []models.Book
	Search        models.SearchCriteria
	FormErrors    map[string]string
	PendingISBN   string
	ExceptionMsg  string
	MaxUploadSize int64
}

// Attributes flattens the context into the named attributes the templates use.
func (c *RenderContext) Attributes() map[string]any {
	attrs := map[string]any{
		"mode":       c.Mode.String(),
		"myaction":   c.Action.String(),
		"title":      c.Title,
		"portalInfo": c.PortalInfo,
	}
	for name, u := range c.Links {
		attrs[name] = u
	}
	if c.User != nil {
		attrs["firstName"] = c.User.GivenName
		attrs["lastName"] = c.User.FamilyName
	}
	if c.Action == modes.ShowSearchResults {
		attrs["matchingBooks"] = c.MatchingBooks
	}
	if c.ExceptionMsg != "" {
		attrs[ParamExceptionMsg] = c.ExceptionMsg
	}
	if len(c.FormErrors) > 0 {
		attrs["errors"] = c.FormErrors
	}
	return attrs
}

// RenderResponse either asks the caller to reuse its cached output or carries
// a fresh context plus the validation token to store with it.
type RenderResponse struct {
	UseCached  bool
	Expiration time.Duration
	Token      cache.Token
	Context    *RenderContext
}

type renderFunc func(ctx context.Context, req *RenderRequest, sess *models.Session) (*RenderResponse, error)

// Options wires the router's collaborators.
type Options struct {
	Catalog    catalog.Store
	Factory    *navigation.Factory
	Ingestor   *upload.Ingestor
	Messages   *messages.Resolver
	Mirror     tocstore.Mirror
	PortalInfo string
}

type Router struct {
	catalog    catalog.Store
	machine    *actionstate.Machine
	factory    *navigation.Factory
	ingestor   *upload.Ingestor
	messages   *messages.Resolver
	mirror     tocstore.Mirror
	portalInfo string

	renderers map[modes.Mode]renderFunc
	actions   map[modes.ActionName]actionFunc
}

func New(opts Options) *Router {
	r := &Router{
		catalog:    opts.Catalog,
		machine:    actionstate.New(),
		factory:    opts.Factory,
		ingestor:   opts.Ingestor,
		messages:   opts.Messages,
		mirror:     opts.Mirror,
		portalInfo: opts.PortalInfo,
	}
	if r.messages == nil {
		r.messages = messages.New()
	}
	if r.mirror == nil {
		r.mirror = tocstore.Nop{}
	}
	if r.factory == nil {
		r.factory = navigation.NewFactory("", nil)
	}

	r.renderers = map[modes.Mode]renderFunc{
		modes.ModeView:  r.renderView,
		modes.ModeEdit:  r.renderPreferences,
		modes.ModeHelp:  r.renderHelp,
		modes.ModePrint: r.renderPrint,
	}
	r.actions = map[modes.ActionName]actionFunc{
		modes.ActionAddBook:    r.addBook,
		modes.ActionRemoveBook: r.removeBook,
		modes.ActionSearchBook: r.searchBook,
		modes.ActionReset:      r.reset,
		modes.ActionUploadToc:  r.uploadToc,
	}
	return r
}

// Render dispatches a render request by mode. Modes not implemented here
// render the view.
func (r *Router) Render(ctx context.Context, req *RenderRequest, sess *models.Session) (*RenderResponse, error) {
	mode, ok := modes.ParseMode(req.Mode)
	if !ok && req.Mode != "" {
		slog.Debug("Unsupported mode, rendering view", "mode", req.Mode)
	}
	render, ok := r.renderers[mode]
	if !ok {
		render = r.renderers[modes.ModeView]
	}
	return render(ctx, req, sess)
}

func (r *Router) renderView(ctx context.Context, req *RenderRequest, sess *models.Session) (*RenderResponse, error) {
	// The count is a snapshot: a book added between this read and the
	// response is picked up by the next request.
	count, err := r.catalog.Count(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug("Current book count in catalog", "count", count, "token", req.Token)

	if cache.Check(req.Token, count) == cache.Valid {
		return &RenderResponse{
			UseCached:  true,
			Expiration: cache.FreshnessWindow,
			Token:      req.Token,
		}, nil
	}
	token := cache.Issue(count)
	r.logCapabilities()

	params := req.Params
	if params == nil {
		params = url.Values{}
	}
	state := r.machine.Transition(sess, actionstate.Inbound{
		Action: params.Get(navigation.ParamMyAction),
		ISBN:   params.Get(navigation.ParamISBN),
	})

	rc, err := r.newContext(ctx, modes.ModeView, req, state)
	if err != nil {
		return nil, err
	}
	rc.PendingISBN = sess.PendingISBN
	if state == modes.UploadTocForm && sess.PendingISBN != "" {
		rc.Links["uploadTocActionUrl"] = r.factory.UploadActionURL(sess.PendingISBN)
	}

	switch state {
	case modes.ShowSearchResults:
		rc.MatchingBooks = sess.MatchingBooks
		rc.Search = sess.Search
	case modes.AddBookAction:
		rc.FormErrors = sess.FormErrors
	case modes.Error:
		rc.ExceptionMsg = params.Get(ParamExceptionMsg)
		if rc.ExceptionMsg == "" {
			rc.ExceptionMsg = sess.ExceptionMsg
		}
	}

	return &RenderResponse{Token: token, Context: rc}, nil
}

func (r *Router) renderPreferences(ctx context.Context, req *RenderRequest, _ *models.Session) (*RenderResponse, error) {
	slog.Info("Generating preferences for the catalog")
	rc, err := r.newContext(ctx, modes.ModeEdit, req, modes.Preferences)
	if err != nil {
		return nil, err
	}
	return &RenderResponse{Context: rc}, nil
}

func (r *Router) renderHelp(ctx context.Context, req *RenderRequest, _ *models.Session) (*RenderResponse, error) {
	slog.Info("Generating help information for the catalog")
	rc, err := r.newContext(ctx, modes.ModeHelp, req, modes.Help)
	if err != nil {
		return nil, err
	}
	return &RenderResponse{Context: rc}, nil
}

func (r *Router) renderPrint(ctx context.Context, req *RenderRequest, _ *models.Session) (*RenderResponse, error) {
	slog.Info("Generating printable version of catalog")
	rc, err := r.newContext(ctx, modes.ModePrint, req, modes.Print)
	if err != nil {
		return nil, err
	}
	return &RenderResponse{Context: rc}, nil
}

func (r *Router) newContext(ctx context.Context, mode modes.Mode, req *RenderRequest, state modes.ActionState) (*RenderContext, error) {
	ws, _ := modes.ParseWindowState(req.WindowState)
	rc := &RenderContext{
		Mode:        mode,
		WindowState: ws,
		Action:      state,
		Title:       r.messages.Title(req.AcceptLanguage, state),
		PortalInfo:  r.portalInfo,
		User:        req.User,
		Links:       r.factory.URLs(r.factory.Links()),
	}
	if r.ingestor != nil {
		rc.MaxUploadSize = r.ingestor.MaxBytes
	}

	if mode == modes.ModeView || mode == modes.ModePrint {
		books, err := r.catalog.List(ctx)
		if err != nil {
			return nil, err
		}
		rc.Books = books
		rc.BookLinks = make(map[string]BookLinks, len(books))
		for _, b := range books {
			rc.BookLinks[b.ISBN] = BookLinks{
				UploadToc: r.factory.UploadFormURL(b.ISBN),
				Remove:    r.factory.RemoveBookURL(b.ISBN),
			}
		}
	}
	return rc, nil
}

func (r *Router) logCapabilities() {
	caps, ok := r.factory.Host.(navigation.Capabilities)
	if !ok {
		return
	}
	slog.Debug("Portal capabilities", "portal", r.portalInfo, "modes", caps.Modes, "window_states", caps.WindowStates)
}
