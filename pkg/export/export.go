// Package export renders filtered service records into a standalone
// mcp.json document. It is a separate output path with no relation to the
// Chatbox registry: nothing here is merged, and nothing is read back.
package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/chatbox-community/mcpsync/pkg/catalog"
	"github.com/chatbox-community/mcpsync/pkg/errors"
)

// TypeSSE is the transport type emitted for every exported server.
const TypeSSE = "sse"

// Document is the exported mcp.json shape.
type Document struct {
	MCPServers map[string]Server `json:"mcpServers"`
}

// Server is one exported server definition.
type Server struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Render transforms service records into an export document. Keys are slugs
// derived from the display name; two records slugging identically collapse
// to one entry with the later record winning. That collision behavior is
// intentional and matches the upstream tool.
func Render(records []catalog.ServiceRecord) *Document {
	doc := &Document{MCPServers: make(map[string]Server, len(records))}
	for _, record := range records {
		doc.MCPServers[Slug(record.Name)] = Server{
			Type: TypeSSE,
			URL:  NormalizeSSEURL(record.URL),
		}
	}
	return doc
}

// Slug derives a key-safe identifier from a display name: lower-cased,
// spaces and underscores become hyphens, and everything that is not a
// letter, digit, or hyphen is stripped. Letters and digits are Unicode
// classes, so CJK display names keep their characters.
func Slug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeSSEURL ensures the URL addresses an SSE endpoint, appending
// "/sse" (with a separating slash if needed) unless it already ends in it.
func NormalizeSSEURL(url string) string {
	if strings.HasSuffix(url, "/sse") {
		return url
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url + "sse"
}

// Write serializes the document to path, creating parent directories as
// needed. Formatting matches the registry store: 2-space indentation,
// non-ASCII and URL characters verbatim.
func Write(doc *Document, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.WrapParse("json", "export document", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
