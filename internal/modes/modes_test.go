package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in     string
		want   Mode
		wantOK bool
	}{
		{"view", ModeView, true},
		{"VIEW", ModeView, true},
		{" Edit ", ModeEdit, true},
		{"help", ModeHelp, true},
		{"print", ModePrint, true},
		{"about", ModeView, false},
		{"", ModeView, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMode(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestParseWindowState(t *testing.T) {
	got, ok := ParseWindowState("popup")
	assert.True(t, ok)
	assert.Equal(t, WindowPopUp, got)

	got, ok = ParseWindowState("solo")
	assert.False(t, ok)
	assert.Equal(t, WindowNormal, got)
}

func TestParseActionState(t *testing.T) {
	got, ok := ParseActionState("UPLOADTOCFORM")
	assert.True(t, ok)
	assert.Equal(t, UploadTocForm, got)

	got, ok = ParseActionState("searchBookAction")
	assert.True(t, ok)
	assert.Equal(t, SearchBookAction, got)

	_, ok = ParseActionState("refreshResults")
	assert.False(t, ok)

	_, ok = ParseActionState("")
	assert.False(t, ok)
}

func TestParseActionName(t *testing.T) {
	for _, name := range []ActionName{ActionAddBook, ActionRemoveBook, ActionSearchBook, ActionReset, ActionUploadToc} {
		got, ok := ParseActionName(string(name))
		assert.True(t, ok, name)
		assert.Equal(t, name, got)
	}

	got, ok := ParseActionName("ResetAction")
	assert.True(t, ok)
	assert.Equal(t, ActionReset, got)

	_, ok = ParseActionName("showCatalog")
	assert.False(t, ok)
}
