package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/spektr-org/dashboard"
	"github.com/spektr-org/dashboard/engine"
	"github.com/spektr-org/dashboard/render"
	"github.com/spektr-org/dashboard/report"
	"github.com/spektr-org/dashboard/theme"
)

// ════════════════════════════════════════════════════════════
// Page
// ════════════════════════════════════════════════════════════

type pageData struct {
	Title       string
	NavbarColor string
	Version     string
	Categories  []string
	Themes      []theme.Definition
	Theme       theme.Definition
	GridHeight  string
	Charts      []chartPanel
	Boot        bootData
}

// bootData is embedded in the page as JSON for the client script.
type bootData struct {
	Themes     []theme.Definition `json:"themes"`
	Categories []string           `json:"categories"`
}

type chartPanel struct {
	ID    string
	Title string
}

var chartPanels = []chartPanel{
	{ID: engine.ChartSunburst, Title: engine.TitleSunburst},
	{ID: engine.ChartBar, Title: engine.TitleBar},
	{ID: engine.ChartPie, Title: engine.TitlePie},
	{ID: engine.ChartScatter, Title: engine.TitleScatter},
	{ID: engine.ChartHistogram, Title: engine.TitleHistogram},
}

func (s *Server) getIndex(c *gin.Context) {
	data := pageData{
		Title:       "Product Dashboard",
		NavbarColor: "#013576",
		Version:     dashboard.Version,
		Categories:  s.ds.Categories(),
		Themes:      theme.Options(),
		Theme:       theme.ForFlag(false),
		GridHeight:  "400px",
		Charts:      chartPanels,
	}
	data.Boot = bootData{Themes: data.Themes, Categories: data.Categories}

	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "index.html", data); err != nil {
		slog.Error("Failed to render page", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse(c, "Failed to render page"))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// ════════════════════════════════════════════════════════════
// API
// ════════════════════════════════════════════════════════════

const msgInvalidDark = "Invalid dark value, expected true or false"

// parseSelection reads ?category=A&category=B&dark=true.
func parseSelection(c *gin.Context) (engine.Selection, bool) {
	sel := engine.Selection{Categories: c.QueryArray("category")}
	if raw := c.Query("dark"); raw != "" {
		dark, err := strconv.ParseBool(raw)
		if err != nil {
			return sel, false
		}
		sel.Dark = dark
	}
	return sel, true
}

func (s *Server) getDashboard(c *gin.Context) {
	sel, ok := parseSelection(c)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse(c, msgInvalidDark))
		return
	}

	vm := engine.Build(s.ds, sel, s.opts.Engine...)
	c.JSON(http.StatusOK, SuccessResponse(c, "Dashboard built successfully", vm))
}

func (s *Server) getFilters(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse(c, "Filters fetched successfully", gin.H{
		"categories": s.ds.Categories(),
	}))
}

func getThemes(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse(c, "Themes fetched successfully", theme.Options()))
}

func (s *Server) getChart(c *gin.Context) {
	name := c.Param("chart")
	if !slices.Contains(engine.ChartTypes, name) {
		c.JSON(http.StatusNotFound, ErrorResponse(c, "Unknown chart: "+name))
		return
	}

	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse(c, err.Error()))
		return
	}

	sel, ok := parseSelection(c)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse(c, msgInvalidDark))
		return
	}

	vm := engine.Build(s.ds, sel, s.opts.Engine...)

	var buf bytes.Buffer
	err = render.Chart(&buf, vm.Chart(name), theme.ForFlag(sel.Dark), format)
	switch {
	case errors.Is(err, render.ErrEmptyChart):
		c.Status(http.StatusNoContent)
		return
	case err != nil:
		slog.Error("Failed to render chart", "chart", name, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse(c, "Failed to render chart"))
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) getReport(c *gin.Context) {
	sel, ok := parseSelection(c)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse(c, msgInvalidDark))
		return
	}

	vm := engine.Build(s.ds, sel, s.opts.Engine...)

	var buf bytes.Buffer
	if err := report.Write(c.Request.Context(), &buf, vm); err != nil {
		slog.Error("Failed to build report", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse(c, "Failed to build report"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="dashboard-report.pdf"`)
	c.Data(http.StatusOK, report.ContentType, buf.Bytes())
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse(c, "pong", gin.H{"status": "ok"}))
}
