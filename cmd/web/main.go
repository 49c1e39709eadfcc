package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/service-atlas/pkg/runtime/session"
	"github.com/de-tools/service-atlas/pkg/server"
	"github.com/de-tools/service-atlas/pkg/services/backends"
	"github.com/de-tools/service-atlas/pkg/services/config"
)

var (
	cfgPath string
	addr    string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Service Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the config or secrets file (environment only when empty)")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := cfg.Logger(zerolog.New(os.Stdout).With().Timestamp().Logger())
	ctx := logger.WithContext(cmd.Context())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s, err := session.Open(ctx, cfg, backends.Default(), reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close backend")
		}
	}()

	if addr == "" {
		addr = cfg.Server.Addr
	}
	logger.Info().
		Str("backend", s.Backend.Name()).
		Msgf("Configuration from `%s` successfully loaded.", cfgPath)

	api := server.NewWebAPI(server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Controller: s.Controller,
			Health:     s.Health,
			Gatherer:   reg,
			Logger:     logger,
		},
	})
	return api.Start()
}
