package navigation

import (
	"net/url"

	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
)

// Links is the full set of descriptors the catalog view uses.
type Links struct {
	PrintMode      Descriptor
	FullScreen     Descriptor
	Help           Descriptor
	Home           Descriptor
	Preferences    Descriptor
	AddBookForm    Descriptor
	AddBookAction  Descriptor
	ResetAction    Descriptor
	SearchAction   Descriptor
	RefreshResults Descriptor
	UploadToc      Descriptor
}

func myaction(v string) url.Values {
	return url.Values{ParamMyAction: {v}}
}

// Links builds every descriptor the view needs.
func (f *Factory) Links() Links {
	return Links{
		PrintMode: f.Build(Target{
			Mode:        modes.ModePrint,
			WindowState: modes.WindowPopUp,
		}),
		FullScreen: f.Build(Target{WindowState: modes.WindowMaximized}),
		Help:       f.Build(Target{Mode: modes.ModeHelp}),
		Home: f.Build(Target{
			Mode:   modes.ModeView,
			Params: myaction(modes.ShowCatalog.String()),
		}),
		Preferences: f.Build(Target{Mode: modes.ModeEdit}),
		AddBookForm: f.Build(Target{Params: myaction(modes.AddBookForm.String())}),
		AddBookAction: f.Build(Target{
			Kind:   KindAction,
			Action: modes.ActionAddBook,
		}),
		ResetAction: f.Build(Target{
			Kind:   KindAction,
			Action: modes.ActionReset,
		}),
		SearchAction: f.Build(Target{
			Kind:   KindAction,
			Action: modes.ActionSearchBook,
		}),
		RefreshResults: f.Build(Target{Params: myaction("refreshResults")}),
		UploadToc: f.Build(Target{
			Kind:   KindAction,
			Action: modes.ActionUploadToc,
			Params: myaction(modes.UploadTocAction.String()),
		}),
	}
}

// URLs returns the links as attribute name to URL, the names the templates use.
func (f *Factory) URLs(l Links) map[string]string {
	return map[string]string{
		"printModeUrl":        f.URL(l.PrintMode),
		"fullScreenUrl":       f.URL(l.FullScreen),
		"helpUrl":             f.URL(l.Help),
		"homeUrl":             f.URL(l.Home),
		"prefUrl":             f.URL(l.Preferences),
		"addBookFormUrl":      f.URL(l.AddBookForm),
		"addBookActionUrl":    f.URL(l.AddBookAction),
		"resetActionUrl":      f.URL(l.ResetAction),
		"searchBookActionUrl": f.URL(l.SearchAction),
		"refreshResultsUrl":   f.URL(l.RefreshResults),
		"uploadTocActionUrl":  f.URL(l.UploadToc),
	}
}

// UploadFormURL is the render link that declares the book a TOC is uploaded for.
func (f *Factory) UploadFormURL(isbn string) string {
	return f.URL(f.Build(Target{Params: url.Values{
		ParamMyAction: {modes.UploadTocForm.String()},
		ParamISBN:     {isbn},
	}}))
}

// UploadActionURL is the upload target for one book. The ISBN travels with
// the upload so the file lands on the book whose form was shown.
func (f *Factory) UploadActionURL(isbn string) string {
	return f.URL(f.Build(Target{
		Kind:   KindAction,
		Action: modes.ActionUploadToc,
		Params: url.Values{
			ParamMyAction: {modes.UploadTocAction.String()},
			ParamISBN:     {isbn},
		},
	}))
}

// RemoveBookURL is the action target that removes one book.
func (f *Factory) RemoveBookURL(isbn string) string {
	return f.URL(f.Build(Target{
		Kind:   KindAction,
		Action: modes.ActionRemoveBook,
		Params: url.Values{ParamISBN: {isbn}},
	}))
}
