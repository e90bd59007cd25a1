package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/trackflow/tracking-service/internal/core/carrier"
	"github.com/trackflow/tracking-service/internal/infrastructure/config"
	"github.com/trackflow/tracking-service/pkg/logger"
)

const serviceName = "trackflow"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Parcel tracking aggregator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newDetectCmd(), newTrackCmd())
	return root
}

// setup loads configuration and initialises the process logger.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
	})
	return cfg, log, nil
}

// loadCarriers returns the table from CARRIERS_FILE, or the embedded one.
func loadCarriers(path string) (*carrier.Table, error) {
	if path == "" {
		return carrier.Default(), nil
	}
	return carrier.Load(path)
}
