package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Coastline/db_store"
	"github.com/UnownHash/Coastline/sessions"
	"github.com/UnownHash/Coastline/stats_collector"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// HistoryReader is satisfied by the history db store and its no-op.
type HistoryReader interface {
	GetRecentSearches(ctx context.Context, limit int) ([]*db_store.Search, error)
}

type HTTPServer struct {
	logger         *logrus.Logger
	ginRouter      *gin.Engine
	sessionManager *sessions.Manager
	history        HistoryReader
	statsCollector stats_collector.StatsCollector
	reloadFn       func() error
}

// Run starts and runs the HTTP server until 'ctx' is cancelled or the server fails to start.
func (srv *HTTPServer) Run(ctx context.Context, address string, shutdownWaitTimeout time.Duration) error {
	httpServer := &http.Server{
		Addr:    address,
		Handler: srv.ginRouter,
	}

	doneCh := make(chan error, 1)

	go func() {
		var err error
		defer func() {
			doneCh <- err
		}()
		err = httpServer.ListenAndServe()
		if err != nil {
			if err == http.ErrServerClosed {
				err = nil
			} else {
				err = fmt.Errorf("Failed to listen and start http server: %w", err)
			}
		}
	}()

	select {
	case <-ctx.Done():
		sdCtx, sdCancelFn := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer sdCancelFn()
		err := httpServer.Shutdown(sdCtx)
		if err != nil {
			if err == context.DeadlineExceeded {
				return errors.New("Graceful HTTP server shutdown timed out.")
			}
			return fmt.Errorf("Error during http server shutdown: %w", err)
		}
		return <-doneCh
	case err := <-doneCh:
		return err
	}
}

// ServeHTTP makes the server usable with httptest.
func (srv *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.ginRouter.ServeHTTP(w, r)
}

func NewHTTPServer(logger *logrus.Logger, sessionManager *sessions.Manager, history HistoryReader, statsCollector stats_collector.StatsCollector, reloadFn func() error) (*HTTPServer, error) {
	if sessionManager == nil {
		return nil, errors.New("No session manager given")
	}
	if history == nil {
		history = db_store.NewNoopHistoryStore()
	}
	if statsCollector == nil {
		statsCollector = stats_collector.NewNoopStatsCollector()
	}

	pageTemplate, err := parsePageTemplate()
	if err != nil {
		return nil, err
	}

	// Create the web server.
	r := gin.New()
	r.Use(gin.RecoveryWithWriter(logger.Writer()))
	r.SetHTMLTemplate(pageTemplate)
	statsCollector.RegisterGinEngine(r)

	srv := &HTTPServer{
		logger:         logger,
		ginRouter:      r,
		sessionManager: sessionManager,
		history:        history,
		statsCollector: statsCollector,
		reloadFn:       reloadFn,
	}

	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}
	return srv, nil
}
