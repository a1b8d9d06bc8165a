// Package registry models the locally persisted Chatbox configuration
// document and its on-disk store. Only settings.mcp.servers is owned by
// mcpsync; every other field in the document, at any nesting level, must
// survive a load/save round trip byte-equivalent in meaning. Each node
// therefore keeps the raw JSON of the keys it does not manage.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// TransportTypeHTTP is the transport kind managed by the reconciler.
// Entries of any other kind are passed through untouched.
const TransportTypeHTTP = "http"

// Registry is the full local configuration document.
type Registry struct {
	Settings *Settings

	extra map[string]json.RawMessage
	order []string
}

// New returns a freshly bootstrapped registry with an empty server list.
// This is the document a first run starts from.
func New() *Registry {
	return &Registry{
		Settings: &Settings{
			MCP: &MCP{Servers: []*ServerEntry{}},
		},
	}
}

// MCPSettings returns the mcp settings node, creating the intermediate
// nodes if the loaded document lacked them.
func (r *Registry) MCPSettings() *MCP {
	if r.Settings == nil {
		r.Settings = &Settings{}
	}
	if r.Settings.MCP == nil {
		r.Settings.MCP = &MCP{}
	}
	return r.Settings.MCP
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Registry) UnmarshalJSON(data []byte) error {
	fields, order, err := splitObject(data)
	if err != nil {
		return err
	}
	r.order = order
	if raw, ok := fields["settings"]; ok {
		r.Settings = &Settings{}
		if err := json.Unmarshal(raw, r.Settings); err != nil {
			return err
		}
		delete(fields, "settings")
	}
	r.extra = fields
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return joinObject(r.extra, r.order, field{"settings", r.Settings, r.Settings != nil})
}

// Settings is the settings node of the document.
type Settings struct {
	MCP *MCP

	extra map[string]json.RawMessage
	order []string
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Settings) UnmarshalJSON(data []byte) error {
	fields, order, err := splitObject(data)
	if err != nil {
		return err
	}
	s.order = order
	if raw, ok := fields["mcp"]; ok {
		s.MCP = &MCP{}
		if err := json.Unmarshal(raw, s.MCP); err != nil {
			return err
		}
		delete(fields, "mcp")
	}
	s.extra = fields
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s *Settings) MarshalJSON() ([]byte, error) {
	return joinObject(s.extra, s.order, field{"mcp", s.MCP, s.MCP != nil})
}

// MCP is the settings.mcp node holding the ordered server list.
type MCP struct {
	Servers []*ServerEntry

	extra map[string]json.RawMessage
	order []string
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *MCP) UnmarshalJSON(data []byte) error {
	fields, order, err := splitObject(data)
	if err != nil {
		return err
	}
	m.order = order
	if raw, ok := fields["servers"]; ok {
		if err := json.Unmarshal(raw, &m.Servers); err != nil {
			return err
		}
		delete(fields, "servers")
	}
	m.extra = fields
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m *MCP) MarshalJSON() ([]byte, error) {
	servers := m.Servers
	if servers == nil {
		servers = []*ServerEntry{}
	}
	return joinObject(m.extra, m.order, field{"servers", servers, true})
}

// ServerEntry is one configured MCP server. The id is assigned once when the
// entry is created and stays stable across syncs.
type ServerEntry struct {
	ID        string
	Name      string
	Enabled   bool
	Transport *Transport

	// enabledSet records whether the source document carried an enabled
	// flag, so entries written by other tools do not gain one.
	enabledSet bool
	extra      map[string]json.RawMessage
	order      []string
}

// NewServerEntry creates an entry for a newly discovered HTTP server.
func NewServerEntry(id, name, url string) *ServerEntry {
	return &ServerEntry{
		ID:         id,
		Name:       name,
		Enabled:    true,
		Transport:  &Transport{Type: TransportTypeHTTP, URL: url},
		enabledSet: true,
	}
}

// IsHTTP reports whether the entry uses the HTTP transport managed by the
// reconciler.
func (e *ServerEntry) IsHTTP() bool {
	return e.Transport != nil && e.Transport.Type == TransportTypeHTTP
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ServerEntry) UnmarshalJSON(data []byte) error {
	fields, order, err := splitObject(data)
	if err != nil {
		return err
	}
	e.order = order
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &e.ID); err != nil {
			return err
		}
		delete(fields, "id")
	}
	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &e.Name); err != nil {
			return err
		}
		delete(fields, "name")
	}
	if raw, ok := fields["enabled"]; ok {
		if err := json.Unmarshal(raw, &e.Enabled); err != nil {
			return err
		}
		e.enabledSet = true
		delete(fields, "enabled")
	}
	if raw, ok := fields["transport"]; ok {
		e.Transport = &Transport{}
		if err := json.Unmarshal(raw, e.Transport); err != nil {
			return err
		}
		delete(fields, "transport")
	}
	e.extra = fields
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e *ServerEntry) MarshalJSON() ([]byte, error) {
	return joinObject(e.extra, e.order,
		field{"id", e.ID, e.ID != ""},
		field{"name", e.Name, e.Name != ""},
		field{"enabled", e.Enabled, e.enabledSet},
		field{"transport", e.Transport, e.Transport != nil},
	)
}

// Transport describes how a server entry is reached.
type Transport struct {
	Type string
	URL  string

	extra map[string]json.RawMessage
	order []string
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Transport) UnmarshalJSON(data []byte) error {
	fields, order, err := splitObject(data)
	if err != nil {
		return err
	}
	t.order = order
	if raw, ok := fields["type"]; ok {
		if err := json.Unmarshal(raw, &t.Type); err != nil {
			return err
		}
		delete(fields, "type")
	}
	if raw, ok := fields["url"]; ok {
		if err := json.Unmarshal(raw, &t.URL); err != nil {
			return err
		}
		delete(fields, "url")
	}
	t.extra = fields
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t *Transport) MarshalJSON() ([]byte, error) {
	return joinObject(t.extra, t.order,
		field{"type", t.Type, t.Type != ""},
		field{"url", t.URL, t.URL != ""},
	)
}

// field is one managed key to splice back into an object on marshal.
type field struct {
	key     string
	value   any
	present bool
}

// splitObject decodes an object into its raw fields, recording the order
// keys appeared in so a save does not reorder the user's document.
func splitObject(data []byte) (map[string]json.RawMessage, []string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	order, err := objectKeys(data)
	if err != nil {
		return nil, nil, err
	}
	return fields, order, nil
}

// objectKeys scans the top level of an encoded object for its key order.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		// Literal null: no keys, matching Unmarshal's no-op convention.
		return nil, nil
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// joinObject re-assembles an object from the unmanaged raw fields and the
// managed ones, splicing managed keys back in at their original document
// positions. Keys the document never had go last: managed fields in
// declared order, then any remaining extras sorted for determinism.
func joinObject(extra map[string]json.RawMessage, order []string, fields ...field) ([]byte, error) {
	managed := make(map[string]json.RawMessage, len(fields))
	for _, f := range fields {
		if !f.present {
			continue
		}
		raw, err := marshalNoEscape(f.value)
		if err != nil {
			return nil, err
		}
		managed[f.key] = raw
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, raw json.RawMessage) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(raw)
		return nil
	}

	seen := make(map[string]bool, len(extra)+len(fields))
	for _, key := range order {
		if seen[key] {
			continue
		}
		raw, ok := managed[key]
		if !ok {
			raw, ok = extra[key]
		}
		if !ok {
			continue
		}
		seen[key] = true
		if err := write(key, raw); err != nil {
			return nil, err
		}
	}
	for _, f := range fields {
		raw, ok := managed[f.key]
		if !ok || seen[f.key] {
			continue
		}
		seen[f.key] = true
		if err := write(f.key, raw); err != nil {
			return nil, err
		}
	}
	rest := make([]string, 0, len(extra))
	for k := range extra {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		if err := write(k, extra[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalNoEscape marshals without HTML escaping so URLs with query
// strings and raw passthrough bytes survive untouched.
func marshalNoEscape(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
