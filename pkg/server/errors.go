package server

import (
	"context"
	"errors"
	"net/http"

	"insights/pkg/insights"
)

// failure maps an analysis error to a status code and the message shown to the user.
func failure(err error) (int, string) {
	switch {
	case errors.Is(err, insights.ErrInvalidURL):
		return http.StatusBadRequest, insights.ErrInvalidURL.Error()
	case errors.Is(err, insights.ErrNotFound):
		return http.StatusNotFound, "Insight not found."
	case errors.Is(err, insights.ErrForbidden):
		return http.StatusForbidden, "This product cannot be analysed."
	case errors.Is(err, insights.ErrBusy):
		return http.StatusServiceUnavailable, "Too many products are being analysed right now. Please try again shortly."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "The request was cancelled."
	case errors.Is(err, insights.ErrMalformed):
		return http.StatusBadGateway, "The analysis came back unreadable. Please try again."
	default:
		return http.StatusBadGateway, "Could not analyse this product. Please try again."
	}
}
