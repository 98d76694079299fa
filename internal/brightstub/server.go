package brightstub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/brightchat/internal/brightstub/middleware"
	"github.com/kiosk404/brightchat/internal/brightstub/options"
	"github.com/kiosk404/brightchat/internal/brightstub/scenario"
	"github.com/kiosk404/brightchat/pkg/logger"
)

type apiServer struct {
	opts    *options.Options
	catalog *scenario.Catalog
	engine  *gin.Engine
	http    *http.Server
}

type preparedAPIServer struct {
	*apiServer
}

func createAPIServer(opts *options.Options) (*apiServer, error) {
	catalog, err := scenario.NewCatalog(opts.ScenarioOptions.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}
	if opts.ScenarioOptions.Watch {
		if err := catalog.Watch(); err != nil {
			logger.Warn("[Server] scenario hot reload disabled: %v", err)
		}
	}

	gin.SetMode(opts.ServerRunOptions.Mode)
	engine := gin.New()
	initRouter(engine, &routerDeps{
		catalog: catalog,
		authConfig: middleware.AuthConfig{
			Token:      opts.AuthOptions.Token,
			AllowLocal: opts.AuthOptions.AllowLocal,
		},
		frameDelay: opts.ScenarioOptions.Delay,
		profiling:  opts.ServerRunOptions.EnableProfiling,
	})

	return &apiServer{
		opts:    opts,
		catalog: catalog,
		engine:  engine,
		http: &http.Server{
			Addr:    opts.ServerRunOptions.Address(),
			Handler: engine,
		},
	}, nil
}

func (s *apiServer) PrepareRun() preparedAPIServer {
	return preparedAPIServer{s}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight streams.
func (s preparedAPIServer) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer s.catalog.Close()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Server] listening on %s, %d scenarios from %s", s.http.Addr, len(s.catalog.List()), s.catalog.Dir())
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve %s: %w", s.http.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("[Server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ServerRunOptions.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Run starts brightstub with the given options.
func Run(opts *options.Options) error {
	server, err := createAPIServer(opts)
	if err != nil {
		return err
	}
	return server.PrepareRun().Run()
}
