// -- internal/server/server.go --
// Description: HTTP sidecar API for the viewer host page. Exposes selection
// resolution, model registration, and the ghost-mode toggle. Ghost-mode
// transitions are serialized here so the engine only ever sees one call
// path at a time.

package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
	"github.com/bimgrid/ifcpanel-cli/internal/config"
	"github.com/bimgrid/ifcpanel-cli/internal/ghost"
	"github.com/bimgrid/ifcpanel-cli/internal/ifcmodel"
	"github.com/bimgrid/ifcpanel-cli/internal/selection"
)

// shutdownTimeout bounds graceful shutdown on context cancellation.
const shutdownTimeout = 5 * time.Second

// Server wires the engines behind an echo instance.
type Server struct {
	echo     *echo.Echo
	cfg      config.ServerConfig
	engine   *selection.Engine
	registry *ifcmodel.Registry
	ghost    *ghost.Engine
	ghostMu  sync.Mutex
	log      *zap.Logger
}

// New builds the server and registers all routes.
func New(cfg config.ServerConfig, engine *selection.Engine, registry *ifcmodel.Registry, ghostEngine *ghost.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		echo:     echo.New(),
		cfg:      cfg,
		engine:   engine,
		registry: registry,
		ghost:    ghostEngine,
		log:      logger.Named("server"),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())

	s.echo.GET("/healthz", s.health)

	api := s.echo.Group("/api/v1")
	if cfg.AuthSecret != "" {
		api.Use(bearerAuth(cfg.AuthSecret))
	}
	api.POST("/selection", s.resolveSelection)
	api.POST("/models", s.registerModel)
	api.DELETE("/models/:id", s.unregisterModel)
	api.POST("/ghost", s.toggleGhost)

	return s
}

// Start blocks serving HTTP until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.Addr)
	}()
	s.log.Info("sidecar listening", zap.String("addr", s.cfg.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler exposes the echo instance as an http.Handler for tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// selectionRequest is the host page's selection-change message.
type selectionRequest struct {
	Selection schemas.Selection `json:"selection"`
}

type selectionResponse struct {
	Views []schemas.ElementViewModel `json:"views"`
}

func (s *Server) resolveSelection(c echo.Context) error {
	var req selectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed selection payload")
	}

	views, err := s.engine.Select(c.Request().Context(), req.Selection)
	switch {
	case errors.Is(err, selection.ErrStaleBatch):
		// Superseded by a newer selection; the client already has fresher data.
		return c.NoContent(http.StatusConflict)
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "selection resolution failed")
	}
	if len(req.Selection) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, selectionResponse{Views: views})
}

// materialPayload mirrors the renderer's material state.
type materialPayload struct {
	ID          string  `json:"id"`
	CustomID    string  `json:"custom_id,omitempty"`
	Color       *uint32 `json:"color,omitempty"`
	LODColor    *uint32 `json:"lod_color,omitempty"`
	Transparent bool    `json:"transparent"`
	Opacity     float64 `json:"opacity"`
}

type modelPayload struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Materials []materialPayload `json:"materials"`
}

func (s *Server) registerModel(c echo.Context) error {
	var req modelPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed model payload")
	}

	model := &ifcmodel.Model{ID: req.ID, Name: req.Name}
	for _, mp := range req.Materials {
		mat := &ifcmodel.Material{
			ID:          mp.ID,
			CustomID:    mp.CustomID,
			Transparent: mp.Transparent,
			Opacity:     mp.Opacity,
		}
		if mp.Color != nil {
			mat.Color = ifcmodel.NewColor(*mp.Color)
		} else if mp.LODColor != nil {
			mat.LODColor = ifcmodel.NewColor(*mp.LODColor)
		}
		model.Materials = append(model.Materials, mat)
	}
	if err := s.registry.Register(model); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

func (s *Server) unregisterModel(c echo.Context) error {
	s.registry.Unregister(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

type ghostResponse struct {
	State string `json:"state"`
}

func (s *Server) toggleGhost(c echo.Context) error {
	s.ghostMu.Lock()
	state := s.ghost.Toggle()
	s.ghostMu.Unlock()
	return c.JSON(http.StatusOK, ghostResponse{State: state.String()})
}
