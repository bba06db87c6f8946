package router // package router defines how the terminal's route tree is registered

import (
	"strings"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/pos-backoffice/internal/config"
	"github.com/iliyamo/pos-backoffice/internal/gate"
	"github.com/iliyamo/pos-backoffice/internal/gateway"
	"github.com/iliyamo/pos-backoffice/internal/handler"    // screens and JSON endpoints
	"github.com/iliyamo/pos-backoffice/internal/middleware" // session gates, login throttle, directory cache
	"github.com/iliyamo/pos-backoffice/internal/model"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

// Deps carries what the route tree needs.  Redis may be nil; the login
// throttle and the directory cache are then skipped.
type Deps struct {
	Store     *session.Store
	Gateway   *gateway.Gateway
	Routes    gate.Routes
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.DirectoryCacheConfig
}

// RegisterRoutes registers probes, which never wait for the session.
func RegisterRoutes(e *echo.Echo, store *session.Store) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(store))
}

// RegisterAuth registers the login entry point and logout.  Both are
// reachable without a session; they still wait for rehydration so a
// restarted terminal never shows the login screen to a signed in
// operator.
func RegisterAuth(e *echo.Echo, d Deps) *handler.AuthHandler {
	a := handler.NewAuthHandler(d.Store, d.Gateway)
	wait := middleware.AwaitRehydration(d.Store)
	e.GET(d.Routes.Login, a.LoginPage, wait)
	e.POST("/login", a.Login, wait, middleware.LoginThrottle(d.RateLimit, d.Redis))
	e.POST("/logout", a.Logout, wait)
	return a
}

// RegisterPanel registers the operator tree.  Every route requires a
// signed in operator, whatever their role.
func RegisterPanel(e *echo.Echo, d Deps, a *handler.AuthHandler) {
	p := handler.NewPanelHandler(d.Routes)
	wait := middleware.AwaitRehydration(d.Store)
	signedIn := middleware.RequireSession(d.Store, d.Routes)
	c := e.Group("/c", wait, signedIn)
	if rest, ok := strings.CutPrefix(d.Routes.Landing, "/c/"); ok {
		c.GET("/"+rest, p.Sales)
	} else {
		e.GET(d.Routes.Landing, p.Sales, wait, signedIn)
	}
	c.GET("/dashboard", p.Dashboard)
	c.GET("/settings", p.Settings)
	c.GET("/session", a.Session)
	// A profile change is a directory write; flush cached admin listings.
	c.PUT("/me", a.UpdateMe, middleware.DirectoryCache(d.Cache, d.Redis))
}

// RegisterAdmin registers the admin tree.  The whole tree requires ADMIN;
// the user directory repeats the check on its own group so the subtree
// stays guarded even if it is mounted elsewhere.
func RegisterAdmin(e *echo.Echo, d Deps) {
	h := handler.NewAdminHandler(d.Gateway, d.Routes)
	admin := e.Group(d.Routes.Admin,
		middleware.AwaitRehydration(d.Store),
		middleware.RequireRole(d.Store, d.Routes, model.RoleAdmin),
	)
	admin.GET("", h.Section("productos", "Productos"))
	admin.GET(handler.SectionHome, h.Section("ventas", "Panel de ventas"))
	admin.GET(handler.SectionProducts, h.Section("productos", "Productos"))
	admin.GET(handler.SectionCategories, h.Section("categorias", "Categorias"))
	admin.GET(handler.SectionReports, h.Section("reportes", "Reportes"))
	admin.GET(handler.SectionUsers, h.Section("usuarios", "Usuarios"))

	users := admin.Group(handler.SectionUsers+"/api",
		middleware.RequireRole(d.Store, d.Routes, model.RoleAdmin),
		middleware.DirectoryCache(d.Cache, d.Redis),
	)
	users.GET("", h.ListUsers)
	users.GET("/branches", h.Branches)
	users.GET("/:id", h.GetUser)
	users.POST("", h.CreateUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeactivateUser)
}

// Register wires the whole tree.
func Register(e *echo.Echo, d Deps) {
	RegisterRoutes(e, d.Store)
	a := RegisterAuth(e, d)
	RegisterPanel(e, d, a)
	RegisterAdmin(e, d)
}
