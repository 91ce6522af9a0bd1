package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"insights/pkg/diff"
	"insights/pkg/insights"
	"insights/pkg/render"
	"insights/pkg/schema"
	"insights/pkg/utils"
)

// GET /?url= pre-fills the input and shows the latest insight for that URL, if any.
func (s *Server) handleGetRoot(c echo.Context) error {
	page := render.Page{
		URL:    c.QueryParam("url"),
		Recent: s.Insights.History().Recent(recentLimit),
	}
	if url, err := insights.NormalizeURL(page.URL); err == nil {
		if in, ok := s.Insights.History().Latest(url); ok {
			page.Result = s.Renderer.Result(in)
		}
	}
	return c.Render(http.StatusOK, render.PageTemplate, page)
}

func (s *Server) handleGetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Product Insights",
		"status":  "ok",
	})
}

// GET /api/insights/:id
func (s *Server) handleGetInsight(c echo.Context) error {
	in, ok := s.Insights.History().Get(c.Param("id"))
	if !ok {
		code, msg := failure(insights.ErrNotFound)
		return c.JSON(code, utils.ErrJSON(msg))
	}
	return c.JSON(http.StatusOK, in)
}

// GET /insights/:id
func (s *Server) handleGetInsightPage(c echo.Context) error {
	page := render.Page{Recent: s.Insights.History().Recent(recentLimit)}
	in, ok := s.Insights.History().Get(c.Param("id"))
	if !ok {
		code, msg := failure(insights.ErrNotFound)
		page.Error = msg
		return c.Render(code, render.PageTemplate, page)
	}
	page.URL = in.URL
	page.Result = s.Renderer.Result(in)
	return c.Render(http.StatusOK, render.PageTemplate, page)
}

type compareResp struct {
	A       schema.Insight   `json:"a"`
	B       schema.Insight   `json:"b"`
	Changed bool             `json:"changed"`
	Diff    diff.ProductDiff `json:"diff"`
}

// GET /api/compare?a=&b=
func (s *Server) handleGetCompare(c echo.Context) error {
	idA, idB := c.QueryParam("a"), c.QueryParam("b")
	if idA == "" || idB == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "both a and b are required")
	}

	history := s.Insights.History()
	a, okA := history.Get(idA)
	b, okB := history.Get(idB)
	if !okA || !okB {
		code, msg := failure(insights.ErrNotFound)
		return c.JSON(code, utils.ErrJSON(msg))
	}

	d := diff.Products(a.Product, b.Product)
	return c.JSON(http.StatusOK, compareResp{A: a, B: b, Changed: !d.Empty(), Diff: d})
}
