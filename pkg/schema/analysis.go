package schema

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"insights/pkg/entities"
	"insights/pkg/rating"
)

// Analysis is what the inference collaborator returns for a product URL.
type Analysis struct {
	Product   string   `json:"product" jsonschema_description:"Product name as listed by the seller"`
	Price     Price    `json:"price" jsonschema_description:"Listed price including the currency symbol (e.g., '$19.99')"`
	Summary   string   `json:"summary" jsonschema_description:"A short review summarising what buyers say about the product"`
	Pros      []string `json:"pros" jsonschema_description:"Short phrases naming the product's strengths"`
	Cons      []string `json:"cons" jsonschema_description:"Short phrases naming the product's weaknesses"`
	AvgRating Rating   `json:"avg_rating" jsonschema_description:"Average customer rating on a 0 to 5 scale"`
	ImageURL  string   `json:"image_url" jsonschema_description:"Absolute URL of the main product image, or an empty string if unknown"`
}

// Validate rejects answers that carry nothing to render.
func (a Analysis) Validate() error {
	if strings.TrimSpace(a.Product) == "" {
		return fmt.Errorf("analysis has no product name")
	}
	return nil
}

// Rating accepts a JSON number or a numeric string. "NaN" reads as 0 and
// infinities are clamped to the star range, so a rating always marshals.
type Rating float64

func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "/5"))
		if s == "" {
			*r = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("rating %q: %w", s, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			f = rating.Clamp(f)
		}
		*r = Rating(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Rating(f)
	return nil
}

// Price accepts a JSON string or number; numbers keep their literal text.
type Price string

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("price: %w", err)
		}
		*p = Price(n.String())
	}
	return nil
}

// ProductInfo maps the answer onto the fields the page renders. defaultImage
// is used when the answer names no image.
func (a Analysis) ProductInfo(defaultImage string) entities.ProductInfo {
	return entities.ProductInfo{
		ProductName: a.Product,
		Price:       string(a.Price),
		ImageURL:    cmp.Or(strings.TrimSpace(a.ImageURL), defaultImage),
		Review:      a.Summary,
		Pros:        a.Pros,
		Cons:        a.Cons,
		Rating:      rating.Clamp(float64(a.AvgRating)),
	}.Clean()
}
