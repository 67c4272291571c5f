package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/corretora/internal/api"
	"github.com/JaimeStill/corretora/internal/config"
	"github.com/JaimeStill/corretora/internal/infrastructure"
	"github.com/JaimeStill/corretora/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			svc, err := NewService(cfg)
			if err != nil {
				return err
			}

			if err := svc.Start(); err != nil {
				return err
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			return svc.Shutdown(cfg.ShutdownTimeoutDuration())
		},
	}
}

// Service coordinates the lifecycle of all subsystems.
type Service struct {
	infra  *infrastructure.Infrastructure
	api    *api.Module
	server server.System
}

// NewService creates and initializes the service with all subsystems.
func NewService(cfg *config.Config) (*Service, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	module := api.NewModule(cfg, infra)

	infra.Logger.Info("service initialized", "addr", cfg.Server.Addr(), "base_path", cfg.API.BasePath)

	return &Service{
		infra:  infra,
		api:    module,
		server: server.New(&cfg.Server, module.Handler(), infra.Logger),
	}, nil
}

// Start begins all subsystems and returns once the listener is bound.
func (s *Service) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.api.Start(s.infra.Lifecycle); err != nil {
		return err
	}
	if err := s.server.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready", "addr", s.server.Addr())
	}()

	return nil
}

// Shutdown stops all subsystems within timeout.
func (s *Service) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		return err
	}
	s.infra.Logger.Info("service stopped gracefully")
	return nil
}
