// Package mcpsync reconciles the ModelScope MCP service directory with a
// locally persisted Chatbox configuration file. The merge is idempotent:
// existing entries are preserved, renamed services are updated in place,
// and newly discovered services are appended. Local-only entries are never
// pushed upstream or removed.
package mcpsync

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/chatbox-community/mcpsync/internal/config"
	"github.com/chatbox-community/mcpsync/pkg/catalog"
	"github.com/chatbox-community/mcpsync/pkg/errors"
	"github.com/chatbox-community/mcpsync/pkg/export"
	"github.com/chatbox-community/mcpsync/pkg/logging"
	"github.com/chatbox-community/mcpsync/pkg/reconciler"
	"github.com/chatbox-community/mcpsync/pkg/registry"
)

// Syncer orchestrates one sync or export run: fetch the remote catalog,
// filter it, and either merge it into the registry or render it as a
// standalone document.
type Syncer struct {
	apiKey       string
	apiURL       string
	registryPath string
	backup       bool
	logger       *zerolog.Logger
	lookup       config.LookupFunc
}

// New creates a Syncer. Without options it authenticates via
// MODELSCOPE_API_KEY, targets the default ModelScope endpoint and the
// platform-default Chatbox config path, and backs up before writing.
func New(opts ...Option) *Syncer {
	s := &Syncer{
		backup: true,
		logger: logging.Default(),
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync fetches the remote catalog and merges it into the registry file.
// The registry is written only when the merge changed something, and the
// previous file is copied to a .bak sibling first. A backup failure is
// logged and does not abort the save; a save failure does.
func (s *Syncer) Sync(ctx context.Context) (*reconciler.Result, error) {
	records, err := s.fetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	path := config.ResolveRegistryPath(s.registryPath, s.lookup)
	s.logger.Debug().Str("path", path).Msg("loading registry")
	reg, err := registry.Load(path)
	if err != nil {
		return nil, err
	}

	result := reconciler.New(reconciler.WithLogger(s.logger)).Merge(reg, records)
	if !result.HasChanges() {
		s.logger.Info().Msg("registry already up to date")
		return result, nil
	}

	// A cancelled run must leave the file in its pre-sync state.
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrCanceled
	}

	if s.backup {
		if err := registry.Backup(path); err != nil {
			s.logger.Warn().Err(err).Msg("backup failed, continuing with save")
		}
	}

	if err := registry.Save(reg, path); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("updated", result.Updated).
		Int("added", result.Added).
		Str("path", path).
		Msg("sync complete")
	return result, nil
}

// Export fetches the remote catalog and writes it to outputPath as a
// standalone mcp.json document. The registry file is not involved.
func (s *Syncer) Export(ctx context.Context, outputPath string) error {
	records, err := s.fetchRecords(ctx)
	if err != nil {
		return err
	}

	doc := export.Render(records)
	if err := export.Write(doc, outputPath); err != nil {
		return err
	}

	s.logger.Info().
		Int("servers", len(doc.MCPServers)).
		Str("path", outputPath).
		Msg("export complete")
	return nil
}

// fetchRecords runs the shared front half of both flows: credential
// resolution, catalog fetch, and filtering. A catalog that filters down to
// nothing is reported as ErrNoValidServers before anything is touched.
func (s *Syncer) fetchRecords(ctx context.Context) ([]catalog.ServiceRecord, error) {
	apiKey := config.ResolveAPIKey(s.apiKey, s.lookup)
	if apiKey == "" {
		return nil, &errors.AuthenticationError{
			Variable: config.APIKeyEnvVar,
			Message:  "no API key provided",
		}
	}

	s.logger.Debug().Msg("fetching remote catalog")
	raw, err := catalog.NewClient(apiKey, s.apiURL).Fetch(ctx)
	if err != nil {
		return nil, err
	}

	records := catalog.Filter(raw)
	if len(records) == 0 {
		return nil, errors.ErrNoValidServers
	}
	s.logger.Debug().Int("count", len(records)).Msg("filtered catalog records")
	return records, nil
}
