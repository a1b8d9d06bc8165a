package mcpsync

import (
	"github.com/rs/zerolog"

	"github.com/chatbox-community/mcpsync/internal/config"
)

// Option configures a Syncer.
type Option func(*Syncer)

// WithAPIKey sets the ModelScope API key explicitly, bypassing the
// MODELSCOPE_API_KEY environment fallback.
func WithAPIKey(apiKey string) Option {
	return func(s *Syncer) {
		s.apiKey = apiKey
	}
}

// WithAPIURL overrides the catalog endpoint.
func WithAPIURL(apiURL string) Option {
	return func(s *Syncer) {
		s.apiURL = apiURL
	}
}

// WithRegistryPath sets the Chatbox config file path explicitly, bypassing
// the CHATBOX_CONFIG environment fallback and the platform default.
func WithRegistryPath(path string) Option {
	return func(s *Syncer) {
		s.registryPath = path
	}
}

// WithBackup controls whether the registry is copied to a .bak sibling
// before being overwritten. On by default.
func WithBackup(backup bool) Option {
	return func(s *Syncer) {
		s.backup = backup
	}
}

// WithLogger sets the logger for the run.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// WithEnvLookup replaces the environment lookup used for credential and
// path resolution. Used by tests.
func WithEnvLookup(lookup config.LookupFunc) Option {
	return func(s *Syncer) {
		s.lookup = lookup
	}
}
