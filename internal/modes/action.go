package modes

import "strings"

// ActionState selects which view-mode behavior runs. It is sticky per session.
type ActionState string

const (
	ShowCatalog       ActionState = "showCatalog"
	ShowSearchResults ActionState = "showSearchResults"
	AddBookForm       ActionState = "addBookForm"
	AddBookAction     ActionState = "addBookAction"
	UploadTocForm     ActionState = "uploadTocForm"
	UploadTocAction   ActionState = "uploadTocAction"
	RemoveBookAction  ActionState = "removeBookAction"
	SearchBookAction  ActionState = "searchBookAction"
	Error             ActionState = "error"
	Print             ActionState = "print"
	Help              ActionState = "help"
	Preferences       ActionState = "preferences"
)

// DefaultActionState is used when a session has no stored state yet.
const DefaultActionState = ShowCatalog

var actionStates = map[string]ActionState{}

func init() {
	for _, s := range []ActionState{
		ShowCatalog, ShowSearchResults, AddBookForm, AddBookAction,
		UploadTocForm, UploadTocAction, RemoveBookAction, SearchBookAction,
		Error, Print, Help, Preferences,
	} {
		actionStates[strings.ToLower(string(s))] = s
	}
}

// ParseActionState maps a wire value to an ActionState, ignoring case.
// Unrecognized or empty values return "" and false.
func ParseActionState(s string) (ActionState, bool) {
	a, ok := actionStates[strings.ToLower(strings.TrimSpace(s))]
	return a, ok
}

func (a ActionState) String() string { return string(a) }

// ActionName identifies an inbound action request.
type ActionName string

const (
	ActionAddBook    ActionName = "addBookAction"
	ActionRemoveBook ActionName = "removeBookAction"
	ActionSearchBook ActionName = "searchBookAction"
	ActionReset      ActionName = "resetAction"
	ActionUploadToc  ActionName = "uploadTocAction"
)

// ParseActionName maps a wire value to an ActionName, ignoring case.
func ParseActionName(s string) (ActionName, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "addbookaction":
		return ActionAddBook, true
	case "removebookaction":
		return ActionRemoveBook, true
	case "searchbookaction":
		return ActionSearchBook, true
	case "resetaction":
		return ActionReset, true
	case "uploadtocaction":
		return ActionUploadToc, true
	default:
		return "", false
	}
}

func (n ActionName) String() string { return string(n) }
