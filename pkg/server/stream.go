package server

import (
	"context"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"insights/pkg/entities"
	"insights/pkg/progress"
	"insights/pkg/schema"
	"insights/pkg/utils"
)

type streamResult struct {
	ID      string               `json:"id"`
	HTML    string               `json:"html"`
	Product entities.ProductInfo `json:"product"`
}

// GET /api/insights/stream?url=&force=
//
// The progress bar and the analysis run side by side. The result is sent only
// once the bar has reached 100%, unless the analysis fails first, which stops
// the bar.
func (s *Server) handleGetStream(c echo.Context) error {
	rawURL := c.QueryParam("url")
	force, _ := strconv.ParseBool(c.QueryParam("force"))

	w, err := utils.NewSSEWriter(c)
	if err != nil {
		log.Error("cannot stream insight", "error", err)
		return err
	}
	defer w.Close()

	ctx := c.Request().Context()
	barCtx, stopBar := context.WithCancel(ctx)
	defer stopBar()

	type outcome struct {
		in  schema.Insight
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		in, err := s.Insights.Analyze(ctx, rawURL, force)
		if err != nil {
			stopBar()
		}
		done <- outcome{in: in, err: err}
	}()

	barErr := progress.Run(barCtx, s.Progress, func(t progress.Tick) error {
		return w.Event("progress", t)
	})
	if cancelled(c) {
		log.Warn("insight stream closed by client", "url", utils.LimitStr(rawURL, 80))
		return nil
	}
	if barErr != nil && barCtx.Err() == nil {
		log.Warn("SSE write error", "error", barErr)
		return nil
	}

	var o outcome
	select {
	case <-ctx.Done():
		return nil
	case o = <-done:
	}

	if o.err != nil {
		code, msg := failure(o.err)
		log.Warn("insight failed", "url", utils.LimitStr(rawURL, 80), "status", code, "error", o.err)
		return w.Event("error", utils.ErrJSON(msg))
	}

	html, err := s.Renderer.Fragment(o.in)
	if err != nil {
		log.Error("failed rendering insight", "id", o.in.ID, "error", err)
		return w.Event("error", utils.ErrJSON("failed rendering insight"))
	}
	if err := w.Event("done", streamResult{ID: o.in.ID, HTML: html, Product: o.in.Product}); err != nil {
		log.Error("failed sending insight", "id", o.in.ID, "error", err)
		return w.Event("error", utils.ErrJSON("failed sending insight"))
	}
	return nil
}

func cancelled(c echo.Context) bool {
	select {
	case <-c.Request().Context().Done():
		return true
	default:
		return false
	}
}
