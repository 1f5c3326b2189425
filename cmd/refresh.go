package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kesiliance/screening-cli/internal/fetcher"
	"github.com/kesiliance/screening-cli/internal/server"
)

var refreshURL string

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Download a published sanction list and load it into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(),
			time.Duration(cfg.Refresh.TimeoutSecs)*time.Second)
		defer cancel()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		sanctions, err := server.FetchSanctions(ctx, refreshURL, fetcher.HTTPOptions{
			UserAgent:    cfg.Refresh.UserAgent,
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
		if err != nil {
			return err
		}

		n, err := st.ImportSanctions(ctx, sanctions)
		if err != nil {
			return err
		}

		zap.L().Info("sanctions refreshed",
			zap.String("url", refreshURL),
			zap.Int64("imported", n),
		)
		return nil
	},
}

func init() {
	refreshCmd.Flags().StringVar(&refreshURL, "url", "", "list URL, http(s) or ftp (required)")
	_ = refreshCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(refreshCmd)
}
