package cli

import (
	"fmt"

	"github.com/storagelab/storagelab/internal/config"
	"github.com/storagelab/storagelab/internal/guest"
	"github.com/storagelab/storagelab/internal/logger"
	"github.com/storagelab/storagelab/internal/setup"
	"github.com/storagelab/storagelab/internal/vm"
)

// env bundles the constructed collaborators every command needs. Config is
// resolved once here and passed down explicitly; nothing below the CLI reads
// ambient state.
type env struct {
	cfg     *config.Config
	paths   *config.Paths
	guest   *guest.Client
	ctrl    *vm.Controller
	builder *setup.Builder
}

func loadEnv() (*env, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("determine paths: %w", err)
	}

	cfg, err := config.Load(paths)
	if err != nil {
		return nil, err
	}

	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	g := guest.NewClient(cfg.SSHPort, cfg.GuestUser, cfg.GuestPassword, logger.WithComponent("guest"))

	return &env{
		cfg:     cfg,
		paths:   paths,
		guest:   g,
		ctrl:    vm.New(cfg, paths, g, logger.WithComponent("vm")),
		builder: setup.NewBuilder(cfg, paths, logger.WithComponent("setup")),
	}, nil
}
