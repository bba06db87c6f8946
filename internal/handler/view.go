package handler

import (
	"github.com/iliyamo/pos-backoffice/internal/claims"
	"github.com/iliyamo/pos-backoffice/internal/model"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

// link is one navigation entry of a view.
type link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// view describes a screen of the terminal.  Layout is left to the client;
// the back office only says which screen, for whom and where it may go.
type view struct {
	View  string      `json:"view"`
	Title string      `json:"title,omitempty"`
	User  *model.User `json:"user,omitempty"`
	Roles []string    `json:"roles,omitempty"`
	Menu  []link      `json:"menu,omitempty"`
	Data  any         `json:"data,omitempty"`
}

// newView fills the operator part of a view from s.  The token never
// leaves the process.
func newView(name, title string, s session.Session) view {
	v := view{View: name, Title: title}
	if s.User != nil {
		v.User = s.User.Clone()
		v.User.Password = ""
		v.Roles = claims.Roles(s.Token).Sorted()
	}
	return v
}
