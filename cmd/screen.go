package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kesiliance/screening-cli/internal/matcher"
	"github.com/kesiliance/screening-cli/internal/model"
	"github.com/kesiliance/screening-cli/internal/screening"
)

var (
	screenName      string
	screenEntityID  int64
	screenThreshold int
	screenLimit     int
	screenWorkers   int
	screenFormat    string
	screenNormalize bool
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Score a name against the stored sanction list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if screenName == "" && screenEntityID == 0 {
			return eris.New("either --name or --entity is required")
		}
		if screenFormat != "json" && screenFormat != "csv" {
			return eris.Errorf("unknown format %q", screenFormat)
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		query := screenName
		if screenEntityID != 0 {
			entity, err := st.GetEntity(ctx, screenEntityID)
			if err != nil {
				return eris.Wrapf(err, "entity %d", screenEntityID)
			}
			query = entity.Name
		}
		if screenNormalize {
			query = matcher.NormalizeName(query)
		}

		sanctions, err := st.AllSanctions(ctx)
		if err != nil {
			return err
		}

		matches, err := screening.Screen(ctx, screening.Request{
			QueryName: query,
			Threshold: screenThreshold,
			Limit:     screenLimit,
			Workers:   screenWorkers,
		}, sanctions)
		if err != nil {
			return err
		}

		zap.L().Info("screening complete",
			zap.String("query", query),
			zap.Int("candidates", len(sanctions)),
			zap.Int("matches", len(matches)),
		)

		if screenFormat == "csv" {
			return writeMatchCSV(os.Stdout, query, matches)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	},
}

type screenRow struct {
	Query        string `csv:"query"`
	SanctionID   int64  `csv:"sanction_id"`
	SanctionName string `csv:"sanction_name"`
	Source       string `csv:"source"`
	Country      string `csv:"country"`
	Score        string `csv:"score"`
}

func writeMatchCSV(out *os.File, query string, matches []model.Match) error {
	rows := make([]screenRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, screenRow{
			Query:        query,
			SanctionID:   m.SanctionID,
			SanctionName: m.Name,
			Source:       m.Source,
			Country:      m.Country,
			Score:        fmt.Sprintf("%.1f", m.Score),
		})
	}
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "render csv")
	}
	_, err = out.Write(data)
	return err
}

func init() {
	screenCmd.Flags().StringVar(&screenName, "name", "", "name to screen")
	screenCmd.Flags().Int64Var(&screenEntityID, "entity", 0, "stored entity id to screen")
	screenCmd.Flags().IntVar(&screenThreshold, "threshold", 80, "minimum score to report (0-100)")
	screenCmd.Flags().IntVar(&screenLimit, "limit", 5, "maximum matches to report")
	screenCmd.Flags().IntVar(&screenWorkers, "workers", 0, "scoring goroutines (0 = serial)")
	screenCmd.Flags().StringVar(&screenFormat, "format", "json", "output format: json or csv")
	screenCmd.Flags().BoolVar(&screenNormalize, "normalize", false, "strip legal suffixes from the query before scoring")
	rootCmd.AddCommand(screenCmd)
}
