package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-backoffice/internal/gateway"
	"github.com/iliyamo/pos-backoffice/internal/middleware"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

// AuthHandler serves the login entry point, logout and the operator's own
// profile.
type AuthHandler struct {
	Store   *session.Store
	Gateway *gateway.Gateway
}

func NewAuthHandler(store *session.Store, gw *gateway.Gateway) *AuthHandler {
	return &AuthHandler{Store: store, Gateway: gw}
}

type loginReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginPage renders the login screen, or sends a signed in operator on to
// their landing.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	s := h.Store.Snapshot()
	if s.Authenticated() {
		return c.Redirect(http.StatusFound, h.Gateway.Landing(s))
	}
	return c.JSON(http.StatusOK, newView("login", "Iniciar sesión", s))
}

// Login signs the operator in and redirects to the landing for their role.
// Failures answer {"error": message} and leave the session as it was.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}
	s, err := h.Gateway.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return failure(c, err)
	}
	return c.Redirect(http.StatusSeeOther, h.Gateway.Landing(s))
}

// Logout clears the session and redirects to the login entry point.
func (h *AuthHandler) Logout(c echo.Context) error {
	target := "/"
	h.Gateway.Logout(gateway.NavigatorFunc(func(to string) { target = to }))
	return c.Redirect(http.StatusSeeOther, target)
}

// Session returns the admitted operator and the roles of their token.
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, newView("session", "", middleware.SessionFrom(c)))
}

// UpdateMe updates the signed in operator's own profile and keeps the
// session's copy in step.  The body is applied over the session's user, so
// fields it leaves out keep their values.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	s := middleware.SessionFrom(c)
	if s.User == nil || s.User.ID == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session user has no id"})
	}
	id := *s.User.ID
	patch := *s.User.Clone()
	patch.Password = ""
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	patch.ID = &id
	updated, err := h.Gateway.UpdateSelf(c.Request().Context(), id, patch)
	if err != nil {
		return failure(c, err)
	}
	updated.Password = ""
	return c.JSON(http.StatusOK, updated)
}
