// Package catalog models the ModelScope MCP service directory: the raw
// records the API returns, name resolution across locales, and the filter
// that turns untrusted payloads into validated service records.
package catalog

import (
	"encoding/json"
	"errors"
)

// RemoteRecord is one service descriptor as returned by the ModelScope API.
// Every field is optional; the payload is untrusted input and nothing here
// is validated. Zero values stand in for absent fields.
type RemoteRecord struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	ChineseName     string            `json:"chinese_name"`
	Locales         map[string]Locale `json:"locales"`
	OperationalURLs []Endpoint        `json:"operational_urls"`
}

// Locale is a localized-name object keyed by language tag in
// RemoteRecord.Locales.
type Locale struct {
	Name string `json:"name"`
}

// Endpoint is one connection endpoint of a remote record.
type Endpoint struct {
	URL string `json:"url"`
}

// RawCatalog is the top-level API payload. The Data container is kept
// undecoded so that remote shape drift degrades to an empty record list
// instead of a hard failure.
type RawCatalog struct {
	Data json.RawMessage `json:"Data"`
}

// UnmarshalJSON implements json.Unmarshaler. Any syntactically valid payload
// that is not an object (a top-level array, string, number) decodes to an
// empty catalog rather than failing: shape drift is the filter's problem,
// not a parse error.
func (c *RawCatalog) UnmarshalJSON(data []byte) error {
	type plain RawCatalog
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			*c = RawCatalog{}
			return nil
		}
		return err
	}
	*c = RawCatalog(p)
	return nil
}

// Records decodes the result list out of the Data container. Any shape the
// decoder does not recognize yields nil.
func (c *RawCatalog) Records() []RemoteRecord {
	if c == nil || len(c.Data) == 0 {
		return nil
	}
	var data struct {
		Result []RemoteRecord `json:"Result"`
	}
	if err := json.Unmarshal(c.Data, &data); err != nil {
		return nil
	}
	return data.Result
}

// ServiceRecord is a validated, minimal service descriptor produced by
// Filter. Name and URL are always non-empty.
type ServiceRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}
