package schema

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysis_LenientFields(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		price  Price
		rating Rating
	}{
		{name: "canonical", in: `{"product":"Mug","price":"$9.99","avg_rating":4.5}`, price: "$9.99", rating: 4.5},
		{name: "numeric price", in: `{"product":"Mug","price":9.99,"avg_rating":4}`, price: "9.99", rating: 4},
		{name: "string rating", in: `{"product":"Mug","price":"€5","avg_rating":"3.7"}`, price: "€5", rating: 3.7},
		{name: "out of five", in: `{"product":"Mug","price":"€5","avg_rating":"4.2/5"}`, price: "€5", rating: 4.2},
		{name: "nulls", in: `{"product":"Mug","price":null,"avg_rating":null}`, price: "", rating: 0},
		{name: "nan rating", in: `{"product":"Mug","price":"$1","avg_rating":"NaN"}`, price: "$1", rating: 0},
		{name: "inf rating", in: `{"product":"Mug","price":"$1","avg_rating":"Inf"}`, price: "$1", rating: 5},
		{name: "negative infinity", in: `{"product":"Mug","price":"$1","avg_rating":"-infinity"}`, price: "$1", rating: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Analysis
			require.NoError(t, json.Unmarshal([]byte(tt.in), &a))
			assert.Equal(t, tt.price, a.Price)
			assert.InDelta(t, float64(tt.rating), float64(a.AvgRating), 1e-9)
		})
	}
}

func TestAnalysis_BadRating(t *testing.T) {
	var a Analysis
	err := json.Unmarshal([]byte(`{"product":"Mug","avg_rating":"great"}`), &a)
	assert.Error(t, err)
}

func TestAnalysis_Validate(t *testing.T) {
	assert.NoError(t, Analysis{Product: "Mug"}.Validate())
	assert.Error(t, Analysis{Product: "  "}.Validate())
}

func TestAnalysisSchema_StrictCompatible(t *testing.T) {
	s, ok := AnalysisSchema.(*jsonschema.Schema)
	require.True(t, ok)

	assert.ElementsMatch(t,
		[]string{"product", "price", "summary", "pros", "cons", "avg_rating", "image_url"},
		s.Required, "strict structured outputs need every property required")

	rating, ok := s.Properties.Get("avg_rating")
	require.True(t, ok)
	assert.Equal(t, "number", rating.Type)

	format := StructuredOutputsResponseFormat()
	require.NotNil(t, format.OfJSONSchema)
	assert.Equal(t, "product_insights", format.OfJSONSchema.JSONSchema.Name)
}

func TestFailure_JSONRoundTripKeepsError(t *testing.T) {
	in := Failure{Reason: "forbidden", URL: "https://shop.example/p/1", Error: errors.New("403 Forbidden")}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"reason":"forbidden","url":"https://shop.example/p/1","error":"403 Forbidden"}`, string(b))

	var out Failure
	require.NoError(t, json.Unmarshal(b, &out))
	require.Error(t, out.Error)
	assert.Equal(t, "403 Forbidden", out.Error.Error())
}

func TestAnalysis_ProductInfo(t *testing.T) {
	a := Analysis{
		Product:   " Steel Mug ",
		Price:     "$12",
		Summary:   "Keeps coffee hot.",
		Pros:      []string{"sturdy", " ", "dishwasher safe"},
		Cons:      []string{"heavy"},
		AvgRating: 4.4,
	}

	info := a.ProductInfo("/images/product.webp")
	assert.Equal(t, "Steel Mug", info.ProductName)
	assert.Equal(t, "$12", info.Price)
	assert.Equal(t, "Keeps coffee hot.", info.Review)
	assert.Equal(t, []string{"sturdy", "dishwasher safe"}, info.Pros)
	assert.Equal(t, []string{"heavy"}, info.Cons)
	assert.InDelta(t, 4.4, info.Rating, 1e-9)
	assert.Equal(t, "/images/product.webp", info.ImageURL)

	a.ImageURL = "https://cdn.example/mug.jpg"
	assert.Equal(t, "https://cdn.example/mug.jpg", a.ProductInfo("/images/product.webp").ImageURL)
}

func TestAnalysis_ProductInfoClampsRating(t *testing.T) {
	for _, r := range []Rating{Rating(math.NaN()), Rating(math.Inf(1)), -2, 9} {
		info := Analysis{Product: "Mug", AvgRating: r}.ProductInfo("")
		assert.GreaterOrEqual(t, info.Rating, 0.0, "rating %v", r)
		assert.LessOrEqual(t, info.Rating, 5.0, "rating %v", r)

		_, err := json.Marshal(NewInsight("https://shop.example.com/mug", info))
		assert.NoError(t, err, "rating %v", r)
	}
}
