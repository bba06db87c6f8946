package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-backoffice/internal/gate"
	"github.com/iliyamo/pos-backoffice/internal/gateway"
	"github.com/iliyamo/pos-backoffice/internal/middleware"
	"github.com/iliyamo/pos-backoffice/internal/model"
)

// AdminHandler serves the admin tree: section screens and the user
// directory.  Products, categories and reports live in other services;
// their screens are descriptors only.
type AdminHandler struct {
	Gateway *gateway.Gateway
	Routes  gate.Routes
}

func NewAdminHandler(gw *gateway.Gateway, routes gate.Routes) *AdminHandler {
	return &AdminHandler{Gateway: gw, Routes: routes}
}

// Section paths under the admin home.
const (
	SectionHome       = "/inicio"
	SectionProducts   = "/productos"
	SectionCategories = "/categorias"
	SectionUsers      = "/usuarios"
	SectionReports    = "/reportes"
)

func (h *AdminHandler) menu() []link {
	base := strings.TrimSuffix(h.Routes.Admin, "/")
	return []link{
		{Label: "Ventas", Path: base + SectionHome},
		{Label: "Productos", Path: base + SectionProducts},
		{Label: "Reportes", Path: base + SectionReports},
		{Label: "Usuarios", Path: base + SectionUsers},
		{Label: "Categorias", Path: base + SectionCategories},
	}
}

// Section returns a handler rendering the named admin screen.
func (h *AdminHandler) Section(name, title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		v := newView(name, title, middleware.SessionFrom(c))
		v.Menu = h.menu()
		return c.JSON(http.StatusOK, v)
	}
}

func paramID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func scrub(users []model.User) []model.User {
	for i := range users {
		users[i].Password = ""
	}
	return users
}

// ListUsers lists the directory, filtered by ?role= when given.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		users []model.User
		err   error
	)
	if role := strings.TrimSpace(c.QueryParam("role")); role != "" {
		users, err = h.Gateway.UsersByRole(ctx, strings.ToUpper(role))
	} else {
		users, err = h.Gateway.ListUsers(ctx)
	}
	if err != nil {
		return failure(c, err)
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, scrub(users))
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	u, err := h.Gateway.GetUser(c.Request().Context(), id)
	if err != nil {
		return failure(c, err)
	}
	u.Password = ""
	return c.JSON(http.StatusOK, u)
}

// CreateUser registers a new account.  The body carries the password in
// clear; it goes to the remote service only.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var u model.User
	if err := c.Bind(&u); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" || u.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}
	if u.Role == "" {
		u.Role = model.RoleSeller
	}
	created, err := h.Gateway.CreateUser(c.Request().Context(), u)
	if err != nil {
		return failure(c, err)
	}
	created.Password = ""
	return c.JSON(http.StatusCreated, created)
}

// UpdateUser updates any account.  The body is applied over the current
// record, so fields it leaves out keep their values.  Updating one's own
// account refreshes the session user.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	patch, err := h.Gateway.Current(ctx, id)
	if err != nil {
		return failure(c, err)
	}
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	patch.ID = &id
	updated, err := h.Gateway.UpdateSelf(ctx, id, patch)
	if err != nil {
		return failure(c, err)
	}
	updated.Password = ""
	return c.JSON(http.StatusOK, updated)
}

// DeactivateUser deactivates an account.  Deactivating oneself also signs
// out, and the response redirects to the login entry point.
func (h *AdminHandler) DeactivateUser(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	target := ""
	nav := gateway.NavigatorFunc(func(to string) { target = to })
	if err := h.Gateway.DeactivateUser(c.Request().Context(), id, nav); err != nil {
		return failure(c, err)
	}
	if target != "" {
		return c.Redirect(http.StatusSeeOther, target)
	}
	return c.NoContent(http.StatusNoContent)
}

// Branches lists the distinct branches of the directory.
func (h *AdminHandler) Branches(c echo.Context) error {
	branches, err := h.Gateway.Branches(c.Request().Context())
	if err != nil {
		return failure(c, err)
	}
	if branches == nil {
		branches = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{"branches": branches})
}
