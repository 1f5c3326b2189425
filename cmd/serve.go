package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kesiliance/screening-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the screening HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(st, server.Options{
			Port:             port,
			APIKey:           cfg.Server.APIKey,
			CORSOrigins:      cfg.Server.CORSOrigins,
			DefaultThreshold: cfg.Screening.Threshold,
			DefaultLimit:     cfg.Screening.Limit,
			Workers:          cfg.Screening.Workers,
			RefreshTimeout:   time.Duration(cfg.Refresh.TimeoutSecs) * time.Second,
			UserAgent:        cfg.Refresh.UserAgent,
		})
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
