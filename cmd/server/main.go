package main // Entry point of the back-office terminal

import (
	"context"
	"log" // Logging library
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4" // Echo web framework
	glog "github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/pos-backoffice/internal/config" // Internal config loader
	"github.com/iliyamo/pos-backoffice/internal/gate"
	"github.com/iliyamo/pos-backoffice/internal/gateway"
	"github.com/iliyamo/pos-backoffice/internal/remote"
	"github.com/iliyamo/pos-backoffice/internal/router" // Internal router setup
	queue_publisher "github.com/iliyamo/pos-backoffice/internal/service"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

func main() {
	loadLocalEnv()
	cfg := config.Load() // Load environment config

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	if cfg.Env == "dev" {
		e.Logger.SetLevel(glog.DEBUG)
	} else {
		e.Logger.SetLevel(glog.INFO)
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Println("redis unreachable; login throttle and directory cache disabled")
	} else {
		defer rdb.Close()
	}

	client := remote.New(cfg.RemoteAPIURL, cfg.RemoteTimeout)
	store := session.NewStore(
		session.WithAuthContext(client),
		session.WithPersister(persister(cfg, rdb)),
		session.WithLogger(e.Logger),
	)

	// The session must be whole before the first gate runs, so rehydrate
	// before the listener opens.
	if store.Rehydrate(context.Background()) {
		log.Printf("restored session of %s", store.Snapshot().User.Username)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if cfg.AuditEnabled {
		host, _ := os.Hostname()
		pub := queue_publisher.New(queue_publisher.Broker(cfg.AMQPURL), host, 64, e.Logger)
		defer pub.Attach(store)()
		pub.Start(ctx)
		defer pub.Wait()
	}

	routes := gate.Routes{Login: cfg.LoginRoute, Landing: cfg.LandingRoute, Admin: cfg.AdminRoute}
	router.Register(e, router.Deps{
		Store:     store,
		Gateway:   gateway.New(store, client, routes, e.Logger),
		Routes:    routes,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadDirectoryCacheConfig(),
	})

	addr := cfg.Addr() // loopback by default: the session belongs to the operator at this machine
	go func() {
		log.Printf("listening on %s (env=%s, session=%s)", addr, cfg.Env, cfg.SessionBackend)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	stop()
}

// persister picks the session backend.  Redis falls back to the file
// backend when the server is unreachable.
func persister(cfg config.Config, rdb *redis.Client) session.Persister {
	switch cfg.SessionBackend {
	case "memory":
		return &session.MemoryPersister{}
	case "redis":
		if rdb != nil {
			return &session.RedisPersister{Client: rdb, Key: cfg.SessionKey, TTL: cfg.SessionTTL}
		}
		log.Println("redis session backend requested but redis is unreachable; using file")
	}
	return &session.FilePersister{Path: cfg.SessionFile, TTL: cfg.SessionTTL}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
