package hosting

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/interrobot/taskrunner/src/features/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is a static file server for the example pages.
type Server struct {
	app  *fiber.App
	name string
	addr string
	root string
}

// NewServer creates a server for cfg. gatherer backs /metrics when cfg.Metrics is set.
func NewServer(cfg config.Server, gatherer prometheus.Gatherer) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				slog.Error("Internal Server Error", "server", cfg.Name, "error", err)
			}
			return c.Status(code).SendString(err.Error())
		},
		AppName:               "taskrunner " + cfg.Name,
		DisableStartupMessage: true,
	})

	app.Use(LogAllRequestsMiddleware(cfg.Name))
	app.Use(MIMETypeMiddleware(mimeOverrides))
	if cfg.NoCache {
		app.Use(NoCacheMiddleware())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	if cfg.Metrics && gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Opened per request. app.Static goes through fasthttp's file cache, which serves rebuilds stale.
	app.Use(filesystem.New(filesystem.Config{
		Root:   http.Dir(cfg.Root),
		Browse: true,
		Index:  "index.html",
	}))

	return &Server{
		app:  app,
		name: cfg.Name,
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		root: cfg.Root,
	}
}

// Start listens and serves until Shutdown. It blocks.
func (s *Server) Start() error {
	slog.Info("Serving", "server", s.name, "url", "http://"+s.addr, "root", s.root)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Name returns the configured server name.
func (s *Server) Name() string {
	return s.name
}
