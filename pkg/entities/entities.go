// Package entities holds the product_info view model consumed by the page.
package entities

import "strings"

// ProductInfo is the set of fields the result panel renders.
type ProductInfo struct {
	ProductName string   `json:"product_name"`
	Price       string   `json:"price"`
	ImageURL    string   `json:"image_url"`
	Review      string   `json:"review"`
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	Rating      float64  `json:"rating"`
}

// Clean trims every field and drops blank pros and cons.
func (p ProductInfo) Clean() ProductInfo {
	p.ProductName = strings.TrimSpace(p.ProductName)
	p.Price = strings.TrimSpace(p.Price)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	p.Review = strings.TrimSpace(p.Review)
	p.Pros = compact(p.Pros)
	p.Cons = compact(p.Cons)
	return p
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
