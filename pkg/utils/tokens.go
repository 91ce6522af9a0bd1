package utils

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var encoding = sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
	return tiktoken.EncodingForModel("gpt-4-0613")
})

// NumTokens counts tokens for text using the cl100k encoding of gpt-4. The
// encoding is fetched on first use.
func NumTokens(text string) (int, error) {
	tkm, err := encoding()
	if err != nil {
		return 0, err
	}

	return len(tkm.Encode(text, nil, nil)), nil
}
