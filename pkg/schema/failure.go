package schema

import (
	"encoding/json"
	"errors"
)

// Failure records a URL the inference provider refused to analyse.
type Failure struct {
	Reason string `json:"reason"`
	URL    string `json:"url"`

	Error error  `json:"-"`
	Raw   string `json:"raw,omitzero"`
}

type failureJSON struct {
	Reason string `json:"reason"`
	URL    string `json:"url"`
	Error  string `json:"error,omitzero"`
	Raw    string `json:"raw,omitzero"`
}

func (f Failure) MarshalJSON() ([]byte, error) {
	a := failureJSON{
		Reason: f.Reason,
		URL:    f.URL,
		Raw:    f.Raw,
	}
	if f.Error != nil {
		a.Error = f.Error.Error()
	}
	return json.Marshal(a)
}

func (f *Failure) UnmarshalJSON(data []byte) error {
	var a failureJSON
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	f.Reason = a.Reason
	f.URL = a.URL
	f.Error = nil
	if a.Error != "" {
		f.Error = errors.New(a.Error)
	}
	f.Raw = a.Raw

	return nil
}
