// Package stubapi is a stand-in for the remote user service.  It issues
// signed tokens carrying a "rol" claim and re-authorizes every directory
// call from the bearer token, which is what the terminal expects of the
// real service.  It backs the integration tests and cmd/stub-api.
package stubapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-backoffice/internal/model"
)

// Config controls token issuing.
type Config struct {
	Secret   string
	TokenTTL time.Duration
	// IssueTokens set to false makes login answer with the user record and
	// no token, like a service that never adopted bearer tokens.
	IssueTokens bool
}

// Server bundles the directory with the token settings.
type Server struct {
	cfg   Config
	Users *UserRepo
}

func New(cfg Config, users *UserRepo) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Server{cfg: cfg, Users: users}
}

// Register mounts the service routes on e.
func (s *Server) Register(e *echo.Echo) {
	auth := s.requireToken
	admin := requireRole(model.RoleAdmin)

	e.POST("/users/login", s.Login)
	e.GET("/users", s.List, auth)
	e.GET("/users/:id", s.Get, auth)
	e.GET("/users/username/:username", s.GetByUsername, auth)
	e.GET("/users/role/:role", s.ListByRole, auth)
	e.POST("/users", s.Create, auth, admin)
	e.PUT("/users/:id", s.Update, auth)
	e.DELETE("/users/:id", s.Deactivate, auth, admin)
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}

// Login verifies credentials and returns the user with a fresh token.
func (s *Server) Login(c echo.Context) error {
	var req model.Credentials
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return message(c, http.StatusBadRequest, "username/password required")
	}
	u, ok := s.Users.Authenticate(req.Username, req.Password)
	if !ok {
		return message(c, http.StatusUnauthorized, "login failed: wrong username or password")
	}
	res := model.LoginResult{User: u}
	if s.cfg.IssueTokens {
		tok, err := issueToken([]byte(s.cfg.Secret), u.Username, u.Role, s.cfg.TokenTTL)
		if err != nil {
			return message(c, http.StatusInternalServerError, "issue token failed")
		}
		res.Token = tok
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) List(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Users.List(""))
}

func (s *Server) ListByRole(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Users.List(c.Param("role")))
}

func (s *Server) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	u, err := s.Users.Get(id)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) GetByUsername(c echo.Context) error {
	u, err := s.Users.GetByUsername(c.Param("username"))
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) Create(c echo.Context) error {
	var u model.User
	if err := c.Bind(&u); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(u.Username) == "" || u.Password == "" {
		return message(c, http.StatusBadRequest, "username/password required")
	}
	created, err := s.Users.Create(u, u.Password)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Update lets admins edit anyone and other operators edit themselves.
func (s *Server) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	current, err := s.Users.Get(id)
	if err != nil {
		return repoError(c, err)
	}
	role, _ := c.Get("role").(string)
	sub, _ := c.Get("username").(string)
	if role != model.RoleAdmin && !strings.EqualFold(sub, current.Username) {
		return message(c, http.StatusForbidden, "forbidden")
	}
	var u model.User
	if err := c.Bind(&u); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}
	if role != model.RoleAdmin {
		// Operators cannot promote themselves.
		u.Role = current.Role
		u.Active = current.Active
	}
	updated, err := s.Users.Update(id, u)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) Deactivate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	if err := s.Users.Deactivate(id); err != nil {
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// requireToken validates the bearer token and stores its subject and role
// in the context under "username" and "role".
func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return message(c, http.StatusUnauthorized, "missing bearer token")
		}
		claims, err := parseToken([]byte(s.cfg.Secret), strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return message(c, http.StatusUnauthorized, "invalid token")
		}
		c.Set("username", claims["sub"])
		c.Set("role", claims["rol"])
		return next(c)
	}
}

// requireRole rejects requests whose token role is not one of roles.
func requireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return message(c, http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func repoError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return message(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUsernameExists):
		return message(c, http.StatusConflict, err.Error())
	}
	return message(c, http.StatusInternalServerError, "internal error")
}
