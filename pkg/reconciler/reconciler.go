// Package reconciler merges filtered remote service records into the local
// registry. The merge is keyed by exact URL string equality over
// HTTP-transport entries, preserves existing entry identity, never removes
// anything, and is idempotent: re-running an unchanged catalog against its
// own output yields zero changes.
package reconciler

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatbox-community/mcpsync/pkg/catalog"
	"github.com/chatbox-community/mcpsync/pkg/logging"
	"github.com/chatbox-community/mcpsync/pkg/registry"
)

// Reconciler performs registry merges.
type Reconciler struct {
	logger *zerolog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used to report merge activity.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// New creates a Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{logger: logging.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Merge applies the service records to the registry in place and returns
// the change counters.
//
// For each record, in filter order:
//   - a known URL with a different name renames the entry in place; its id,
//     enabled flag and transport are never altered
//   - a known URL with an identical name is a no-op and not counted
//   - an unknown URL becomes a new entry with a fresh random id, enabled,
//     and an HTTP transport; it joins the index immediately so a duplicate
//     URL later in the same pass updates it instead of inserting again
//
// Entries without an HTTP transport are invisible to the merge and left
// untouched. URLs match by exact string comparison; no normalization of
// scheme case or trailing slashes is attempted.
func (r *Reconciler) Merge(reg *registry.Registry, records []catalog.ServiceRecord) *Result {
	mcp := reg.MCPSettings()

	byURL := make(map[string]*registry.ServerEntry, len(mcp.Servers))
	for _, entry := range mcp.Servers {
		if entry.IsHTTP() {
			byURL[entry.Transport.URL] = entry
		}
	}

	result := &Result{}
	for _, record := range records {
		existing, ok := byURL[record.URL]
		if ok {
			if existing.Name == record.Name {
				continue
			}
			r.logger.Info().
				Str("old", existing.Name).
				Str("new", record.Name).
				Str("url", record.URL).
				Msg("updated server name")
			existing.Name = record.Name
			result.Updated++
			continue
		}

		entry := registry.NewServerEntry(uuid.NewString(), record.Name, record.URL)
		mcp.Servers = append(mcp.Servers, entry)
		byURL[record.URL] = entry
		result.Added++
		r.logger.Info().
			Str("name", record.Name).
			Str("url", record.URL).
			Msg("added server")
	}

	return result
}
