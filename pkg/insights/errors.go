package insights

import "errors"

var (
	// ErrInvalidURL is returned for empty or non-http(s) input; its text is shown to the user.
	ErrInvalidURL = errors.New("Please enter a valid product URL.")

	// ErrBusy is returned when the analysis queue has no room.
	ErrBusy = errors.New("too many analyses in progress, try again shortly")

	// ErrForbidden is returned for URLs the inference provider refused.
	ErrForbidden = errors.New("the inference provider refused this product")

	// ErrNotFound is returned for unknown insight ids.
	ErrNotFound = errors.New("insight not found")

	// ErrMalformed is returned when the provider's answer cannot be parsed.
	ErrMalformed = errors.New("malformed analysis")
)
