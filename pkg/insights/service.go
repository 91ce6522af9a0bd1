package insights

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"insights/pkg/diff"
	"insights/pkg/entities"
	"insights/pkg/flight"
	"insights/pkg/queue"
	"insights/pkg/schema"
	"insights/pkg/utils"
)

const DefaultImage = "/images/product.webp"

type Options struct {
	// DefaultImage is the product image shown on every insight.
	DefaultImage string
	// AnalysisImage shows the analysis' image_url instead, when it names one.
	AnalysisImage bool
	// CacheTTL is how long an analysis is reused for the same URL.
	CacheTTL     time.Duration
	HistoryLimit int
}

// Service answers product URLs with insights. Identical URLs in flight share
// one analysis, and every answer is recorded in History.
type Service struct {
	queue        queue.Queue
	cache        *flight.Cache[string, schema.Analysis]
	failures     *utils.SyncMap[map[string]schema.Failure, string, schema.Failure]
	history      *History
	defaultImage string
	useImageURL  bool
}

func NewService(q queue.Queue, opts Options) *Service {
	s := &Service{
		queue:        q,
		failures:     utils.NewSyncMap[map[string]schema.Failure](),
		history:      NewHistory(opts.HistoryLimit),
		defaultImage: opts.DefaultImage,
		useImageURL:  opts.AnalysisImage,
	}
	if s.defaultImage == "" {
		s.defaultImage = DefaultImage
	}
	s.cache = flight.NewCache(s.run)
	s.cache.Expiry(opts.CacheTTL)
	return s
}

func (s *Service) History() *History { return s.history }

// Analyze validates rawURL, obtains an analysis for it and records the
// resulting insight. force skips both the cache and recorded failures.
func (s *Service) Analyze(ctx context.Context, rawURL string, force bool) (schema.Insight, error) {
	url, err := NormalizeURL(rawURL)
	if err != nil {
		return schema.Insight{}, err
	}

	if !force {
		if f, ok := s.failures.Load(url); ok {
			return schema.Insight{}, fmt.Errorf("%w: %s", ErrForbidden, f.Reason)
		}
	}

	var previous schema.Analysis
	var hadPrevious bool
	if force {
		previous, hadPrevious = s.cache.Peek(url)
	}

	type outcome struct {
		a   schema.Analysis
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		var o outcome
		if force {
			o.a, o.err = s.cache.Force(url)
		} else {
			o.a, o.err = s.cache.Get(url)
		}
		done <- o
	}()

	var o outcome
	select {
	case <-ctx.Done():
		return schema.Insight{}, ctx.Err()
	case o = <-done:
	}

	if o.err != nil {
		if apiErr, ok := forbidden(o.err); ok {
			log.Error("inference provider refused product", "url", url, "error", o.err)
			s.cache.Forget(url)
			s.failures.Store(url, schema.Failure{
				Reason: "analysis forbidden",
				URL:    url,
				Error:  o.err,
				Raw:    apiErr.RawJSON(),
			})
			return schema.Insight{}, fmt.Errorf("%w: %v", ErrForbidden, o.err)
		}
		if errors.Is(o.err, queue.ErrFull) {
			return schema.Insight{}, ErrBusy
		}
		return schema.Insight{}, o.err
	}
	if force {
		s.failures.Delete(url)
	}

	product := s.productInfo(o.a)
	if hadPrevious && log.GetLevel() <= log.DebugLevel {
		var b strings.Builder
		diff.Products(s.productInfo(previous), product).Print(&b)
		log.Debug("re-analysed product", "url", url, "changes", b.String())
	}

	insight := schema.NewInsight(url, product)
	s.history.Add(insight)
	log.Info("insight ready", "id", insight.ID, "url", url, "product", product.ProductName, "rating", product.Rating)
	return insight, nil
}

func (s *Service) productInfo(a schema.Analysis) entities.ProductInfo {
	if !s.useImageURL {
		a.ImageURL = ""
	}
	return a.ProductInfo(s.defaultImage)
}

// run is the cache's work function: one trip through the analysis queue.
func (s *Service) run(url string) (schema.Analysis, error) {
	ch, err := s.queue.Add(url)
	if err != nil {
		return schema.Analysis{}, err
	}
	r := <-ch
	return r.Analysis, r.Err
}

func (s *Service) Failures() map[string]schema.Failure {
	return s.failures.Map()
}

// LoadFailures restores recorded failures. A missing file is not an error.
func (s *Service) LoadFailures(path string) error {
	failures, err := utils.Load[map[string]schema.Failure](path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for url, f := range failures {
		s.failures.Store(url, f)
	}
	return nil
}

func (s *Service) SaveFailures(path string) error {
	return utils.Save(path, s.failures.Map())
}

func forbidden(err error) (*openai.Error, bool) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
		return apiErr, true
	}
	return nil, false
}
