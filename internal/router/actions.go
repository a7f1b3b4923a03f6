package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/bookcatalog/internal/catalog"
	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
	"github.com/lehigh-university-libraries/bookcatalog/internal/navigation"
	"github.com/lehigh-university-libraries/bookcatalog/internal/upload"
)

// ErrUnknownAction is returned for action names outside the dispatch table.
var ErrUnknownAction = errors.New("unknown action")

// ActionRequest is an inbound action request. Upload is only set for
// multipart requests.
type ActionRequest struct {
	Name           string
	Form           url.Values
	Upload         upload.Source
	AcceptLanguage string
}

// ActionResponse carries the state the following render starts from.
type ActionResponse struct {
	Next         modes.ActionState
	ExceptionMsg string
	Upload       *upload.Result
}

// RenderParams are the render parameters for the follow-up render request.
func (a *ActionResponse) RenderParams() url.Values {
	params := url.Values{navigation.ParamMyAction: {a.Next.String()}}
	if a.ExceptionMsg != "" {
		params.Set(ParamExceptionMsg, a.ExceptionMsg)
	}
	return params
}

type actionFunc func(ctx context.Context, req *ActionRequest, sess *models.Session) (*ActionResponse, error)

// Process dispatches an action request and stores the resulting action state
// in the session.
func (r *Router) Process(ctx context.Context, req *ActionRequest, sess *models.Session) (*ActionResponse, error) {
	name, ok := modes.ParseActionName(req.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Name)
	}
	if req.Form == nil {
		req.Form = url.Values{}
	}

	slog.Info("Processing action", "action", name, "session_id", sess.ID)
	resp, err := r.actions[name](ctx, req, sess)
	if err != nil {
		return nil, err
	}
	r.machine.Apply(sess, resp.Next)
	sess.ExceptionMsg = resp.ExceptionMsg
	return resp, nil
}

func (r *Router) addBook(ctx context.Context, req *ActionRequest, sess *models.Session) (*ActionResponse, error) {
	book := models.Book{
		ISBN:     catalog.NormalizeISBN(req.Form.Get(navigation.ParamISBN)),
		Name:     strings.TrimSpace(req.Form.Get(ParamBookName)),
		Author:   strings.TrimSpace(req.Form.Get(ParamAuthorName)),
		Category: strings.TrimSpace(req.Form.Get(ParamCategory)),
	}

	errs := catalog.Validate(book)
	if len(errs) == 0 {
		err := r.catalog.Add(ctx, book)
		switch {
		case errors.Is(err, catalog.ErrDuplicate):
			errs["isbnNumber"] = "A book with this ISBN number already exists in the catalog"
		case err != nil:
			return nil, err
		}
	}

	if len(errs) > 0 {
		slog.Info("Rejected book", "isbn", book.ISBN, "errors", errs)
		sess.FormErrors = errs
		return &ActionResponse{Next: modes.AddBookAction}, nil
	}

	slog.Info("Added book to catalog", "isbn", book.ISBN, "name", book.Name)
	sess.FormErrors = nil
	return &ActionResponse{Next: modes.ShowCatalog}, nil
}

func (r *Router) removeBook(ctx context.Context, req *ActionRequest, _ *models.Session) (*ActionResponse, error) {
	isbn := catalog.NormalizeISBN(req.Form.Get(navigation.ParamISBN))
	err := r.catalog.Remove(ctx, isbn)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		slog.Warn("Book to remove was not in catalog", "isbn", isbn)
	case err != nil:
		return nil, err
	default:
		slog.Info("Removed book from catalog", "isbn", isbn)
	}
	return &ActionResponse{Next: modes.ShowCatalog}, nil
}

func (r *Router) searchBook(ctx context.Context, req *ActionRequest, sess *models.Session) (*ActionResponse, error) {
	criteria := models.SearchCriteria{
		AuthorName: strings.TrimSpace(req.Form.Get(ParamAuthorSearch)),
		BookName:   strings.TrimSpace(req.Form.Get(ParamBookSearch)),
	}
	matching, err := r.catalog.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}

	slog.Info("Searched catalog", "author", criteria.AuthorName, "book", criteria.BookName, "matches", len(matching))
	sess.Search = criteria
	sess.MatchingBooks = matching
	return &ActionResponse{Next: modes.ShowSearchResults}, nil
}

func (r *Router) reset(_ context.Context, _ *ActionRequest, sess *models.Session) (*ActionResponse, error) {
	sess.Search = models.SearchCriteria{}
	sess.MatchingBooks = nil
	return &ActionResponse{Next: modes.ShowCatalog}, nil
}

func (r *Router) uploadToc(ctx context.Context, req *ActionRequest, sess *models.Session) (*ActionResponse, error) {
	if r.ingestor == nil {
		return nil, errors.New("uploads are not configured")
	}

	// The form names its book; the session's pending target covers clients
	// that post to the bare upload URL.
	isbn := req.Form.Get(navigation.ParamISBN)
	if isbn == "" {
		isbn = sess.PendingISBN
	}

	var (
		res *upload.Result
		err error
	)
	if req.Upload == nil {
		err = &upload.Error{Kind: upload.KindDecode, Message: "request is not multipart"}
	} else {
		res, err = r.ingestor.Ingest(isbn, req.Upload)
	}

	if err != nil {
		slog.Error("TOC upload failed", "isbn", isbn, "kind", upload.KindOf(err), "err", err)
		return &ActionResponse{
			Next:         modes.Error,
			ExceptionMsg: r.messages.UploadFailure(req.AcceptLanguage, err, r.ingestor.MaxBytes),
		}, nil
	}

	if err := r.mirror.Publish(ctx, res.Path, filepath.Base(res.Path)); err != nil {
		slog.Warn("Failed to mirror uploaded TOC", "path", res.Path, "err", err)
	}

	sess.PendingISBN = ""
	return &ActionResponse{Next: modes.ShowCatalog, Upload: res}, nil
}
