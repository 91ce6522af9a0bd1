package server

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"

	"insights/pkg/flight"
	"insights/pkg/insights"
	"insights/pkg/progress"
	"insights/pkg/render"
)

// recentLimit is how many past insights the index page links to.
const recentLimit = 10

type Options struct {
	Progress progress.Config
	// ImagePath is the local product image served as WebP.
	ImagePath    string
	HistoryPath  string
	FailuresPath string
	Debug        bool
}

type Server struct {
	Echo     *echo.Echo
	Insights *insights.Service
	Renderer *render.Renderer
	Progress progress.Config
	Ctx      context.Context

	images       *flight.Cache[string, []byte]
	imagePath    string
	historyPath  string
	failuresPath string
}

func NewServer(ctx context.Context, svc *insights.Service, opts Options) (*Server, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	if opts.Debug {
		e.Debug = true
		e.Logger.SetLevel(gommonlog.DEBUG)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:         e,
		Insights:     svc,
		Renderer:     renderer,
		Progress:     opts.Progress,
		Ctx:          ctx,
		images:       flight.NewCache(encodeWebP),
		imagePath:    opts.ImagePath,
		historyPath:  opts.HistoryPath,
		failuresPath: opts.FailuresPath,
	}
	s.images.Expiry(0)

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)
	s.Echo.GET("/health", s.handleGetHealth)
	s.Echo.POST("/insights", s.handlePostInsights)     // form fallback without JavaScript
	s.Echo.GET("/insights/:id", s.handleGetInsightPage) // permalink
	s.Echo.GET(insights.DefaultImage, s.handleGetProductImage)

	api := s.Echo.Group("/api")
	api.GET("/insights/stream", s.handleGetStream) // progress + result over SSE
	api.POST("/insights", s.handlePostInsight)
	api.GET("/insights/:id", s.handleGetInsight)
	api.GET("/compare", s.handleGetCompare)
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

// Shutdown stops the HTTP server and persists history and recorded failures.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")

	var saveErr error
	if s.historyPath != "" {
		saveErr = s.Insights.History().Save(s.historyPath)
	}
	if s.failuresPath != "" {
		saveErr = errors.Join(saveErr, s.Insights.SaveFailures(s.failuresPath))
	}
	if err := s.Echo.Shutdown(ctx); err != nil {
		return err
	}
	return saveErr
}
