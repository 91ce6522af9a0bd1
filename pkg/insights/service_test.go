package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights/pkg/queue"
	"insights/pkg/schema"
)

// stubQueue answers every Add by calling fn, after gate is closed if set.
type stubQueue struct {
	calls atomic.Int32
	gate  chan struct{}
	fn    func(url string) (schema.Analysis, error)
	err   error
}

func (q *stubQueue) Start() {}
func (q *stubQueue) Stop()  {}

func (q *stubQueue) Add(url string) (<-chan queue.Result, error) {
	q.calls.Add(1)
	if q.err != nil {
		return nil, q.err
	}
	ch := make(chan queue.Result, 1)
	go func() {
		if q.gate != nil {
			<-q.gate
		}
		a, err := q.fn(url)
		ch <- queue.Result{Analysis: a, Err: err}
	}()
	return ch, nil
}

func mug(string) (schema.Analysis, error) {
	return schema.Analysis{
		Product:   "Steel Mug",
		Price:     "$12",
		Summary:   "Keeps coffee hot.",
		Pros:      []string{"sturdy"},
		Cons:      []string{"heavy"},
		AvgRating: 4.6,
	}, nil
}

func forbiddenErr() error {
	return &openai.Error{
		StatusCode: http.StatusForbidden,
		Request:    httptest.NewRequest(http.MethodPost, "https://api.example/v1/chat/completions", nil),
		Response:   &http.Response{StatusCode: http.StatusForbidden},
	}
}

func TestService_Analyze(t *testing.T) {
	q := &stubQueue{fn: mug}
	s := NewService(q, Options{})

	in, err := s.Analyze(context.Background(), "shop.example.com/mug", false)
	require.NoError(t, err)

	assert.NotEmpty(t, in.ID)
	assert.Equal(t, "https://shop.example.com/mug", in.URL)
	assert.Equal(t, "Steel Mug", in.Product.ProductName)
	assert.Equal(t, "Keeps coffee hot.", in.Product.Review)
	assert.Equal(t, DefaultImage, in.Product.ImageURL)
	assert.InDelta(t, 4.6, in.Product.Rating, 1e-9)

	got, ok := s.History().Get(in.ID)
	require.True(t, ok)
	assert.Equal(t, in, got)
}

func TestService_InvalidURL(t *testing.T) {
	q := &stubQueue{fn: mug}
	s := NewService(q, Options{})

	_, err := s.Analyze(context.Background(), "not a url", false)
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.Zero(t, q.calls.Load())
	assert.Zero(t, s.History().Len())
}

func TestService_CoalescesConcurrentRequests(t *testing.T) {
	q := &stubQueue{fn: mug, gate: make(chan struct{})}
	s := NewService(q, Options{})

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Analyze(context.Background(), "https://shop.example.com/mug", false)
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return q.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// let the stragglers join the in-flight call before it finishes
	time.Sleep(20 * time.Millisecond)
	close(q.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, q.calls.Load())
	assert.Equal(t, n, s.History().Len())
}

func TestService_CachesAndForce(t *testing.T) {
	q := &stubQueue{fn: mug}
	s := NewService(q, Options{CacheTTL: time.Hour})
	ctx := context.Background()

	_, err := s.Analyze(ctx, "https://shop.example.com/mug", false)
	require.NoError(t, err)
	_, err = s.Analyze(ctx, "https://shop.example.com/mug", false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, q.calls.Load())

	_, err = s.Analyze(ctx, "https://shop.example.com/mug", true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, q.calls.Load())
}

func TestService_Forbidden(t *testing.T) {
	var refuse atomic.Bool
	refuse.Store(true)
	q := &stubQueue{fn: func(url string) (schema.Analysis, error) {
		if refuse.Load() {
			return schema.Analysis{}, forbiddenErr()
		}
		return mug(url)
	}}
	s := NewService(q, Options{})
	ctx := context.Background()
	const url = "https://shop.example.com/mug"

	_, err := s.Analyze(ctx, url, false)
	require.ErrorIs(t, err, ErrForbidden)
	require.Contains(t, s.Failures(), url)
	assert.Equal(t, url, s.Failures()[url].URL)

	// recorded failures answer without another trip to the provider
	_, err = s.Analyze(ctx, url, false)
	require.ErrorIs(t, err, ErrForbidden)
	assert.EqualValues(t, 1, q.calls.Load())

	refuse.Store(false)
	in, err := s.Analyze(ctx, url, true)
	require.NoError(t, err)
	assert.Equal(t, "Steel Mug", in.Product.ProductName)
	assert.NotContains(t, s.Failures(), url)
}

func TestService_Errors(t *testing.T) {
	t.Run("busy", func(t *testing.T) {
		s := NewService(&stubQueue{err: queue.ErrFull}, Options{})
		_, err := s.Analyze(context.Background(), "https://shop.example.com/mug", false)
		assert.ErrorIs(t, err, ErrBusy)
	})

	t.Run("analysis error is not remembered", func(t *testing.T) {
		boom := errors.New("provider down")
		var fail atomic.Bool
		fail.Store(true)
		q := &stubQueue{fn: func(url string) (schema.Analysis, error) {
			if fail.Load() {
				return schema.Analysis{}, boom
			}
			return mug(url)
		}}
		s := NewService(q, Options{CacheTTL: time.Hour})

		_, err := s.Analyze(context.Background(), "https://shop.example.com/mug", false)
		require.ErrorIs(t, err, boom)
		assert.Empty(t, s.Failures())
		assert.Zero(t, s.History().Len())

		fail.Store(false)
		_, err = s.Analyze(context.Background(), "https://shop.example.com/mug", false)
		assert.NoError(t, err)
	})

	t.Run("context cancelled", func(t *testing.T) {
		q := &stubQueue{fn: mug, gate: make(chan struct{})}
		defer close(q.gate)
		s := NewService(q, Options{})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := s.Analyze(ctx, "https://shop.example.com/mug", false)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestService_FailuresPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Failures.json")
	const url = "https://shop.example.com/mug"

	s := NewService(&stubQueue{fn: func(string) (schema.Analysis, error) { return schema.Analysis{}, forbiddenErr() }}, Options{})
	_, err := s.Analyze(context.Background(), url, false)
	require.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, s.SaveFailures(path))

	q := &stubQueue{fn: mug}
	restored := NewService(q, Options{})
	require.NoError(t, restored.LoadFailures(path))
	_, err = restored.Analyze(context.Background(), url, false)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, q.calls.Load())

	assert.NoError(t, restored.LoadFailures(filepath.Join(t.TempDir(), "missing.json")))
}

func TestService_ProductImage(t *testing.T) {
	withImage := func(url string) (schema.Analysis, error) {
		a, err := mug(url)
		a.ImageURL = "https://cdn.example.com/mug.jpg"
		return a, err
	}

	in, err := NewService(&stubQueue{fn: withImage}, Options{}).Analyze(context.Background(), "https://shop.example.com/mug", false)
	require.NoError(t, err)
	assert.Equal(t, DefaultImage, in.Product.ImageURL, "local image is used by default")

	in, err = NewService(&stubQueue{fn: withImage}, Options{AnalysisImage: true}).Analyze(context.Background(), "https://shop.example.com/mug", false)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/mug.jpg", in.Product.ImageURL)
}

func TestService_NonFiniteRatingPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Insights.json")
	var raw schema.Analysis
	require.NoError(t, json.Unmarshal([]byte(`{"product":"Steel Mug","price":"$12","avg_rating":"NaN"}`), &raw))

	s := NewService(&stubQueue{fn: func(string) (schema.Analysis, error) { return raw, nil }}, Options{})
	in, err := s.Analyze(context.Background(), "https://shop.example.com/mug", false)
	require.NoError(t, err)
	assert.Zero(t, in.Product.Rating)

	require.NoError(t, s.History().Save(path))
	restored := NewHistory(0)
	require.NoError(t, restored.Load(path))
	got, ok := restored.Get(in.ID)
	require.True(t, ok)
	assert.Equal(t, "Steel Mug", got.Product.ProductName)
}
