package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-backoffice/internal/claims"
	"github.com/iliyamo/pos-backoffice/internal/gate"
	"github.com/iliyamo/pos-backoffice/internal/middleware"
	"github.com/iliyamo/pos-backoffice/internal/model"
)

// PanelHandler renders the screens of the operator tree (/c).
type PanelHandler struct {
	Routes gate.Routes
}

func NewPanelHandler(routes gate.Routes) *PanelHandler {
	return &PanelHandler{Routes: routes}
}

func (h *PanelHandler) menu(roles claims.RoleSet) []link {
	m := []link{
		{Label: "Ventas", Path: h.Routes.Landing},
		{Label: "Dashboard", Path: "/c/dashboard"},
		{Label: "Ajustes", Path: "/c/settings"},
	}
	if roles.Has(model.RoleAdmin) {
		m = append(m, link{Label: "Administración", Path: h.Routes.Admin})
	}
	return m
}

func (h *PanelHandler) render(c echo.Context, name, title string) error {
	s := middleware.SessionFrom(c)
	v := newView(name, title, s)
	v.Menu = h.menu(claims.Roles(s.Token))
	return c.JSON(http.StatusOK, v)
}

// Sales is the default landing: the point of sale panel.
func (h *PanelHandler) Sales(c echo.Context) error { return h.render(c, "ventas", "Panel de ventas") }

func (h *PanelHandler) Dashboard(c echo.Context) error {
	return h.render(c, "dashboard", "Dashboard")
}

func (h *PanelHandler) Settings(c echo.Context) error { return h.render(c, "settings", "Ajustes") }
