// Package render turns insights into the HTML the browser sees.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"insights/pkg/entities"
	"insights/pkg/rating"
	"insights/pkg/schema"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	PageTemplate   = "index"
	ResultTemplate = "result"
)

// Renderer executes the embedded templates. It implements echo.Renderer.
type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

var _ echo.Renderer = (*Renderer)(nil)

func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"times": times,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, policy: bluemonday.UGCPolicy()}, nil
}

// Page is the data behind the index page.
type Page struct {
	URL    string
	Error  string
	Result *Result
	Recent []schema.Insight
}

// Result is one insight prepared for the result panel.
type Result struct {
	ID       string
	URL      string
	Name     string
	Price    string
	ImageURL string
	// Review is the sanitized review; it is the only model text emitted as markup.
	Review template.HTML
	Stars  rating.Stars
	Pros   []string
	Cons   []string
}

func (r *Renderer) Result(in schema.Insight) *Result {
	return r.result(in.ID, in.URL, in.Product)
}

func (r *Renderer) result(id, url string, p entities.ProductInfo) *Result {
	return &Result{
		ID:       id,
		URL:      url,
		Name:     p.ProductName,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Review:   template.HTML(r.policy.Sanitize(p.Review)),
		Stars:    rating.Compute(p.Rating),
		Pros:     p.Pros,
		Cons:     p.Cons,
	}
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// Fragment renders the result panel on its own, for the streaming client to
// swap into the page.
func (r *Renderer) Fragment(in schema.Insight) (string, error) {
	var b bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&b, ResultTemplate, r.Result(in)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// times lets templates repeat a block n times.
func times(n int) []struct{} {
	return make([]struct{}, max(n, 0))
}
