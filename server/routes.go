package server

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) setupRoutes() error {
	static, err := fs.Sub(assets, "web/static")
	if err != nil {
		return fmt.Errorf("failed to open static assets: %w", err)
	}

	s.router.GET("/", s.getIndex)
	s.router.StaticFS("/static", http.FS(static))

	api := s.router.Group("/api/v1")
	s.SetupDashboardRoutes(api)
	api.GET("/ping", ping)
	return nil
}

// SetupDashboardRoutes registers the read-only dashboard API on rg.
func (s *Server) SetupDashboardRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", s.getDashboard)
	rg.GET("/filters", s.getFilters)
	rg.GET("/themes", getThemes)
	rg.GET("/charts/:chart", s.getChart)
	rg.GET("/report", s.getReport)
}
