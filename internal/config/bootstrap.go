package config

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/quick-apply/internal/prompts"
	"github.com/jonathan/quick-apply/internal/types"
)

// Bundle is everything loaded at startup.
type Bundle struct {
	Config    *AppConfig
	Profile   *types.Profile
	Selectors *Selectors
	Blacklist *BlacklistSource
	Secrets   Secrets
}

// Bootstrap validates cfg and loads the profile, selectors, prompt override, blacklist and
// secrets concurrently. The first failure cancels the rest.
func Bootstrap(ctx context.Context, cfg *AppConfig) (*Bundle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Bundle{
		Config:    cfg,
		Blacklist: NewBlacklistSource(cfg.BlacklistPath),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := LoadProfile(cfg.ProfilePath)
		if err != nil {
			return err
		}
		b.Profile = p
		return nil
	})
	g.Go(func() error {
		s, err := LoadSelectors(cfg.SelectorsPath)
		if err != nil {
			return err
		}
		b.Selectors = s
		return nil
	})
	g.Go(func() error {
		if cfg.PromptsPath == "" {
			return nil
		}
		return prompts.Override(cfg.PromptsPath)
	})
	g.Go(func() error {
		if _, err := b.Blacklist.Refresh(); err != nil {
			return fmt.Errorf("failed to load blacklist: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		b.Secrets = LoadSecrets()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}
