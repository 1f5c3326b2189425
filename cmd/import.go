package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kesiliance/screening-cli/internal/fetcher"
	"github.com/kesiliance/screening-cli/internal/model"
)

var importFilePath string

var importCmd = &cobra.Command{
	Use:       "import {entities|sanctions}",
	Short:     "Import entities or sanction records from a CSV or XLSX file",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"entities", "sanctions"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		batchID := uuid.NewString()
		var n int64
		switch args[0] {
		case "entities":
			entities, err := readEntitiesFile(importFilePath)
			if err != nil {
				return err
			}
			n, err = st.ImportEntities(ctx, entities)
			if err != nil {
				return err
			}
		case "sanctions":
			sanctions, err := readSanctionsFile(importFilePath)
			if err != nil {
				return err
			}
			n, err = st.ImportSanctions(ctx, sanctions)
			if err != nil {
				return err
			}
		}

		zap.L().Info("import complete",
			zap.String("batch_id", batchID),
			zap.String("kind", args[0]),
			zap.String("file", importFilePath),
			zap.Int64("imported", n),
		)
		return nil
	},
}

func readSanctionsFile(path string) ([]model.Sanction, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fetcher.SanctionRowsXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return fetcher.SanctionRows(f)
}

func readEntitiesFile(path string) ([]model.Entity, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return nil, eris.New("entity import supports CSV only")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return fetcher.EntityRows(f)
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to CSV or XLSX file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
