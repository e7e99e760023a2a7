package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"soma/internal/app"
	"soma/internal/metrics"
	"soma/pkg/logging"

	"github.com/gin-gonic/gin"
)

// DefaultShutdownTimeout bounds how long Run waits for in-flight requests.
const DefaultShutdownTimeout = 10 * time.Second

// Health is the document served on /healthz.
type Health struct {
	ID        string `json:"id"`
	Stage     string `json:"stage"`
	State     string `json:"state"`
	Providers int    `json:"providers"`
	Started   string `json:"started"`
}

// Server serves a bootstrapped application.
type Server struct {
	router *gin.Engine
	addr   string
	health Health

	ShutdownTimeout time.Duration
}

// New builds the router for a. The health document is captured here, so
// request handlers never read the application stores.
func New(a *app.Application, addr string) *Server {
	if !a.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(recovery(a.ErrorHandler()))
	router.Use(Middleware(a.Metrics()))

	s := &Server{
		router: router,
		addr:   addr,
		health: Health{
			ID:        a.ID(),
			Stage:     a.Stage(),
			State:     a.State().String(),
			Providers: len(a.Providers()),
			Started:   time.Now().In(a.Location()).Format(a.DateFormat()),
		},
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	mount(router, "/storage", a.Paths().GetString("storage.public", ""))
	mount(router, "/extensions", a.Paths().GetString("extensions.public", ""))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.health)
	})
	router.GET("/metrics", gin.WrapH(a.Metrics().Handler()))

	logging.Info("Server", "Server initialized for %s", addr)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully. ready, when set,
// is called once the listener accepts connections.
func (s *Server) Run(ctx context.Context, ready func()) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Server", "Starting HTTP server on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if ready != nil {
		ready()
	}

	select {
	case err, ok := <-errCh:
		if ok {
			logging.Error("Server", err, "HTTP server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("Server", "Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server", err, "Graceful shutdown failed")
		return err
	}
	return nil
}

// Middleware records every request in m.
func Middleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func recovery(h *app.ErrorHandler) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		h.Report(&app.PanicError{Value: recovered, Stack: debug.Stack()})
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

func mount(router *gin.Engine, prefix, dir string) {
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logging.Debug("Server", "Not serving %s: %s is not a directory", prefix, dir)
		return
	}
	router.Static(prefix, dir)
}
