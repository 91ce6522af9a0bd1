package server

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"insights/pkg/render"
	"insights/pkg/utils"
)

type insightReq struct {
	URL   string `json:"url"`
	Force bool   `json:"force"`
}

// POST /api/insights
func (s *Server) handlePostInsight(c echo.Context) error {
	var req insightReq
	if err := c.Bind(&req); err != nil {
		log.Error("invalid JSON in /api/insights", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	in, err := s.Insights.Analyze(c.Request().Context(), req.URL, req.Force)
	if err != nil {
		code, msg := failure(err)
		log.Warn("insight failed", "url", utils.LimitStr(req.URL, 80), "status", code, "error", err)
		return c.JSON(code, utils.ErrJSON(msg))
	}
	return c.JSON(http.StatusOK, in)
}

// POST /insights renders the result page directly, for browsers without JavaScript.
func (s *Server) handlePostInsights(c echo.Context) error {
	rawURL := c.FormValue("url")
	force, _ := strconv.ParseBool(c.FormValue("force"))

	page := render.Page{URL: rawURL}
	in, err := s.Insights.Analyze(c.Request().Context(), rawURL, force)
	if err != nil {
		code, msg := failure(err)
		log.Warn("insight failed", "url", utils.LimitStr(rawURL, 80), "status", code, "error", err)
		page.Error = msg
		page.Recent = s.Insights.History().Recent(recentLimit)
		return c.Render(code, render.PageTemplate, page)
	}

	page.URL = in.URL
	page.Result = s.Renderer.Result(in)
	page.Recent = s.Insights.History().Recent(recentLimit)
	return c.Render(http.StatusOK, render.PageTemplate, page)
}
