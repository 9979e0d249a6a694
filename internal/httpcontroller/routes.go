package httpcontroller

import (
	"embed"
	"io/fs"

	"github.com/labstack/echo/v4"

	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// AssetsFs holds the stylesheet, client scripts and built-in images.
//
//go:embed static
var AssetsFs embed.FS

// routeConfig defines a localized page route.
type routeConfig struct {
	Path    string
	Handler echo.HandlerFunc
}

// pageRoutes lists the localized pages. Paths without a locale never reach
// these handlers; the locale middleware redirects them first.
func (s *Server) pageRoutes() []routeConfig {
	return []routeConfig{
		{Path: "/:locale", Handler: s.homePage},
		{Path: "/:locale/classes", Handler: s.classesPage},
		{Path: "/:locale/classes/:slug", Handler: s.classPage},
		{Path: "/:locale/privacy", Handler: s.privacyPage},
		{Path: "/:locale/terms", Handler: s.termsPage},
	}
}

// initRoutes initializes the routes for the server.
func (s *Server) initRoutes() {
	for _, route := range s.pageRoutes() {
		s.Echo.GET(route.Path, route.Handler)
	}

	s.Echo.GET("/sitemap.xml", s.sitemap)
	s.Echo.GET("/robots.txt", s.robots)

	staticFS, err := fs.Sub(AssetsFs, "static")
	if err != nil {
		s.log.Error("embedded assets unavailable", logger.Error(err))
	} else {
		customFileServer(s.Echo, staticFS, "static")
	}
	s.imageServer(s.Settings.Media.ImagesDir)

	if s.API != nil {
		s.API.RegisterRoutes(s.Echo)
	}

	if p := s.metricsPath(); p != "" {
		s.Echo.GET(p, echo.WrapHandler(s.Metrics.Handler(s.log)))
	}
}
