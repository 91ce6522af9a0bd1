package utils

import (
	"unicode"

	"github.com/aryann/difflib"
)

// TokenizeWords splits s into runs of whitespace, words and punctuation so
// that joining the result reproduces s.
func TokenizeWords(s string) []string {
	var out []string
	var cur []rune
	kind := -1 // 0=space,1=word,2=punct
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, string(cur))
		cur = cur[:0]
	}
	for _, r := range s {
		k := 2
		switch {
		case unicode.IsSpace(r):
			k = 0
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' || r == '\'':
			k = 1
		}
		if k != kind {
			flush()
			kind = k
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

type WordOp int

const (
	WordEqual  WordOp = 0
	WordDelete WordOp = -1
	WordInsert WordOp = 1
)

type WordDelta struct {
	Op   WordOp `json:"op"`
	Text string `json:"text"`
}

func DiffWords(a, b string) []WordDelta {
	recs := difflib.Diff(TokenizeWords(a), TokenizeWords(b))
	out := make([]WordDelta, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			out = append(out, WordDelta{Op: WordEqual, Text: r.Payload})
		case difflib.LeftOnly:
			out = append(out, WordDelta{Op: WordDelete, Text: r.Payload})
		case difflib.RightOnly:
			out = append(out, WordDelta{Op: WordInsert, Text: r.Payload})
		}
	}
	return out
}
