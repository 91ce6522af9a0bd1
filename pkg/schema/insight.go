package schema

import (
	"time"

	"github.com/segmentio/ksuid"

	"insights/pkg/entities"
)

// Insight is one rendered analysis, kept in history.
type Insight struct {
	ID        string               `json:"id"`
	URL       string               `json:"url"`
	Product   entities.ProductInfo `json:"product"`
	CreatedAt time.Time            `json:"created_at"`
}

func NewInsight(url string, product entities.ProductInfo) Insight {
	return Insight{
		ID:        ksuid.New().String(),
		URL:       url,
		Product:   product,
		CreatedAt: time.Now().UTC(),
	}
}
