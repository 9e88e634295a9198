package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/orgmig-cli/internal/config"
	"github.com/custodia-labs/orgmig-cli/internal/github"
	"github.com/custodia-labs/orgmig-cli/internal/logger"
	"github.com/custodia-labs/orgmig-cli/internal/migrate"
)

// loadConfig resolves the run configuration: file and environment first,
// then flag overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if flagSourceOrg != "" {
		cfg.SourceOrg = flagSourceOrg
	}
	if flagDestOrg != "" {
		cfg.DestOrg = flagDestOrg
	}
	if flagSourceToken != "" {
		cfg.SourceToken = flagSourceToken
	}
	if flagDestToken != "" {
		cfg.DestToken = flagDestToken
	}
	if flagCapture {
		cfg.Capture = true
	}
	if flagCaptureDir != "" {
		cfg.CaptureDir = flagCaptureDir
	}

	return cfg, nil
}

// requireOrgs validates that the named organizations are configured.
func requireOrgs(cfg *config.Config, source, dest bool) error {
	if source && cfg.SourceOrg == "" {
		return fmt.Errorf("%w (--source-org)", config.ErrMissingOrg)
	}
	if dest && cfg.DestOrg == "" {
		return fmt.Errorf("%w (--dest-org)", config.ErrMissingOrg)
	}
	return nil
}

// buildClients creates the per-organization API clients, sharing one capture
// sink when capture is enabled. Clients for organizations the command does
// not touch are nil.
func buildClients(ctx context.Context, cfg *config.Config, source, dest bool) (src, dst *github.Client, err error) {
	if err := cfg.ResolveTokens(source, dest); err != nil {
		return nil, nil, err
	}

	var opts []github.Option
	if cfg.Capture {
		capture, err := github.NewCapture(cfg.CaptureDir)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, github.WithCapture(capture))
	}

	if source {
		src = github.NewClient(ctx, cfg.SourceToken, opts...)
		if err := src.ValidateCredentials(ctx); err != nil {
			return nil, nil, fmt.Errorf("source credentials: %w", err)
		}
	}
	if dest {
		dst = github.NewClient(ctx, cfg.DestToken, opts...)
		if err := dst.ValidateCredentials(ctx); err != nil {
			return nil, nil, fmt.Errorf("destination credentials: %w", err)
		}
	}
	return src, dst, nil
}

// resolveLoginMap runs the identity resolution pipeline and folds in the
// operator's override file when configured. The classification summary is
// logged so unresolved identities are always surfaced.
func resolveLoginMap(ctx context.Context, cfg *config.Config, src, dst *github.Client) (map[string]string, error) {
	identities, err := github.FetchSourceIdentities(ctx, src, cfg.SourceOrg)
	if err != nil {
		return nil, fmt.Errorf("fetch source identities: %w", err)
	}
	members, err := github.FetchDestinationMembers(ctx, dst, cfg.DestOrg)
	if err != nil {
		return nil, fmt.Errorf("fetch destination members: %w", err)
	}

	resolution := migrate.Resolve(identities, members)
	logResolution(resolution)

	mapping := resolution.LoginMap()
	if cfg.Overrides != "" {
		overrides, err := readOverridesFile(cfg.Overrides)
		if err != nil {
			return nil, err
		}
		mapping = migrate.ApplyOverrides(mapping, overrides)
		logger.Info("applied %d overrides from %s", len(overrides), cfg.Overrides)
	}
	return mapping, nil
}

func logResolution(r migrate.Resolution) {
	logger.Info("resolved %d identities", len(r.Resolved))
	for _, s := range r.UnresolvedSource {
		logger.Warn("unresolved source identity: login=%s username=%s nameId=%s", s.Login, s.Username, s.NameID)
	}
	for _, d := range r.UnresolvedDest {
		logger.Warn("unresolved destination member: login=%s email=%s", d.Login, d.ResolvedEmail())
	}
	for _, s := range r.RemovedSource {
		logger.Warn("source identity without login (removed): username=%s nameId=%s", s.Username, s.NameID)
	}
}
