package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/veridesk/facegate/internal/api/docs"
	"github.com/veridesk/facegate/internal/api/handler"
	"github.com/veridesk/facegate/internal/api/middleware"
	"github.com/veridesk/facegate/internal/config"
	"github.com/veridesk/facegate/internal/geo"
	"github.com/veridesk/facegate/internal/hrapi"
	"github.com/veridesk/facegate/internal/metrics"
	"github.com/veridesk/facegate/internal/verify"
	"github.com/veridesk/facegate/internal/ws"
)

const shutdownTimeout = 10 * time.Second

// Dependencies holds the long-lived collaborators the routes need.
type Dependencies struct {
	Config   *config.Config
	Manager  *verify.Manager
	Watcher  *geo.Watcher
	Clock    *hrapi.ServerClock
	Backend  *hrapi.Client
	Recorder *metrics.Recorder
	Hub      *ws.Hub
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Facegate Agent",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var watcher *geo.Watcher
	if r.deps != nil {
		watcher = r.deps.Watcher
	}
	healthHandler := handler.NewHealthHandler(watcher)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	// Kiosk-token protected API
	v1 := r.app.Group("/v1")
	v1.Use(middleware.Auth(r.deps.Config.KioskToken))

	statusHandler := handler.NewStatusHandler(
		r.deps.Config.Strategy,
		r.deps.Watcher,
		r.deps.Clock,
		r.deps.Recorder,
		r.deps.Manager,
	)
	v1.Get("/status", statusHandler.Status)

	attendanceHandler := handler.NewAttendanceHandler(r.deps.Backend, r.logger)
	v1.Get("/profile", attendanceHandler.Profile)
	v1.Post("/requests", attendanceHandler.SubmitRequest)

	verificationHandler := handler.NewVerificationHandler(r.deps.Manager, r.deps.Recorder, r.logger)
	v1.Post("/sessions", verificationHandler.Begin)
	v1.Get("/sessions/:id", verificationHandler.Get)
	v1.Post("/sessions/:id/start", verificationHandler.Start)
	v1.Post("/sessions/:id/capture", verificationHandler.Capture)
	v1.Post("/sessions/:id/submit", verificationHandler.Submit)
	v1.Delete("/sessions/:id", verificationHandler.Cancel)

	// Event stream
	v1.Use("/events", ws.UpgradeMiddleware())
	v1.Get("/events", ws.Handler(r.deps.Hub))
}

// App exposes the fiber app for tests.
func (r *Router) App() *fiber.App {
	return r.app
}

// Listen starts serving on addr.
func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (r *Router) Shutdown() error {
	return r.app.ShutdownWithTimeout(shutdownTimeout)
}
