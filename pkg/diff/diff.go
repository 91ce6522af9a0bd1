package diff

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"insights/pkg/entities"
	"insights/pkg/utils"
)

type StringDiff struct {
	Old    string            `json:"old"`
	New    string            `json:"new"`
	Deltas []utils.WordDelta `json:"deltas"`
}

type FieldDiff struct {
	Field string     `json:"field"`
	Str   StringDiff `json:"diff"`
}

type ListDiff struct {
	Added   []string     `json:"added,omitempty"`
	Removed []string     `json:"removed,omitempty"`
	Edited  []StringDiff `json:"edited,omitempty"`
}

func (l ListDiff) Empty() bool {
	return len(l.Added) == 0 && len(l.Removed) == 0 && len(l.Edited) == 0
}

// ProductDiff describes how a product's insight changed between two analyses.
type ProductDiff struct {
	Fields []FieldDiff `json:"fields,omitempty"`
	Review *StringDiff `json:"review,omitempty"`
	Pros   ListDiff    `json:"pros"`
	Cons   ListDiff    `json:"cons"`
}

func (d ProductDiff) Empty() bool {
	return len(d.Fields) == 0 && d.Review == nil && d.Pros.Empty() && d.Cons.Empty()
}

// similarEnough is the similarity above which two list entries count as one
// edited entry rather than a removal plus an addition.
const similarEnough = 0.70

func Products(oldP, newP entities.ProductInfo) ProductDiff {
	var d ProductDiff

	scalar := func(field, a, b string) {
		if a != b {
			d.Fields = append(d.Fields, FieldDiff{Field: field, Str: strDiff(a, b)})
		}
	}
	scalar("product_name", oldP.ProductName, newP.ProductName)
	scalar("price", oldP.Price, newP.Price)
	scalar("rating", formatRating(oldP.Rating), formatRating(newP.Rating))
	scalar("image_url", oldP.ImageURL, newP.ImageURL)

	if oldP.Review != newP.Review {
		sd := strDiff(oldP.Review, newP.Review)
		d.Review = &sd
	}
	d.Pros = diffStringListSmart(oldP.Pros, newP.Pros)
	d.Cons = diffStringListSmart(oldP.Cons, newP.Cons)
	return d
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', 1, 64)
}

func strDiff(a, b string) StringDiff {
	if a == b {
		return StringDiff{Old: a, New: b, Deltas: []utils.WordDelta{{Op: utils.WordEqual, Text: a}}}
	}
	return StringDiff{Old: a, New: b, Deltas: coalesceRuns(utils.DiffWords(a, b))}
}

// coalesceRuns merges neighbouring records that share an op, so unchanged
// whitespace joins the unchanged words around it.
func coalesceRuns(in []utils.WordDelta) []utils.WordDelta {
	out := make([]utils.WordDelta, 0, len(in))
	for _, d := range in {
		if n := len(out); n > 0 && out[n-1].Op == d.Op {
			out[n-1].Text += d.Text
			continue
		}
		out = append(out, d)
	}
	return out
}

func diffStringListSmart(a, b []string) ListDiff {
	var l ListDiff
	usedB := make([]bool, len(b))
	for _, as := range a {
		bestJ, best := -1, 0.0
		for j, bs := range b {
			if usedB[j] {
				continue
			}
			if s := utils.Similarity(as, bs); s > best {
				bestJ, best = j, s
			}
		}
		if bestJ >= 0 && best >= similarEnough {
			if as != b[bestJ] {
				l.Edited = append(l.Edited, strDiff(as, b[bestJ]))
			}
			usedB[bestJ] = true
		} else {
			l.Removed = append(l.Removed, as)
		}
	}
	for j, bs := range b {
		if !usedB[j] {
			l.Added = append(l.Added, bs)
		}
	}
	return l
}

const (
	ansiReset = "\x1b[0m"
	fgGreen   = "\x1b[32m"
	fgRed     = "\x1b[31m"
	fgCyan    = "\x1b[36m"
	uline     = "\x1b[4m"
	strike    = "\x1b[9m"
)

func renderStringDiff(sd StringDiff) string {
	var b strings.Builder
	for _, d := range sd.Deltas {
		switch d.Op {
		case utils.WordEqual:
			b.WriteString(d.Text)
		case utils.WordInsert:
			fmt.Fprintf(&b, "%s%s%s%s", fgGreen, uline, d.Text, ansiReset)
		case utils.WordDelete:
			fmt.Fprintf(&b, "%s%s%s%s", fgRed, strike, d.Text, ansiReset)
		}
	}
	return b.String()
}

func (d ProductDiff) Print(w io.Writer) {
	if d.Empty() {
		fmt.Fprintln(w, "no changes")
		return
	}
	for _, f := range d.Fields {
		fmt.Fprintf(w, "%s: %s\n", f.Field, renderStringDiff(f.Str))
	}
	if d.Review != nil {
		fmt.Fprintf(w, "review: %s\n", renderStringDiff(*d.Review))
	}
	printList(w, "Pros", d.Pros)
	printList(w, "Cons", d.Cons)
}

func printList(w io.Writer, title string, l ListDiff) {
	if l.Empty() {
		return
	}
	fmt.Fprintln(w, fgCyan+title+ansiReset)
	for _, s := range l.Removed {
		fmt.Fprintf(w, "  [-] %s%s%s%s\n", fgRed, strike, s, ansiReset)
	}
	for _, s := range l.Added {
		fmt.Fprintf(w, "  [+] %s%s%s%s\n", fgGreen, uline, s, ansiReset)
	}
	for _, sd := range l.Edited {
		fmt.Fprintf(w, "  [~] %s\n", renderStringDiff(sd))
	}
}
