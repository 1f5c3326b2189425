package server

import (
	"fmt"
	"net/http"

	"github.com/jszwec/csvutil"
	"go.uber.org/zap"
)

// matchRow is one line of the CSV match export. Score is preformatted to one
// decimal so the file matches what the JSON endpoint rounds to.
type matchRow struct {
	EntityID     int64  `csv:"entity_id"`
	EntityName   string `csv:"entity_name"`
	SanctionID   int64  `csv:"sanction_id"`
	SanctionName string `csv:"sanction_name"`
	Source       string `csv:"source"`
	Country      string `csv:"country"`
	Score        string `csv:"score"`
}

func (s *Server) handleMatchCSV(w http.ResponseWriter, r *http.Request) {
	entity, req, err := s.matchParams(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	matches, err := s.screen(r, req)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	rows := make([]matchRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, matchRow{
			EntityID:     entity.ID,
			EntityName:   entity.Name,
			SanctionID:   m.SanctionID,
			SanctionName: m.Name,
			Source:       m.Source,
			Country:      m.Country,
			Score:        fmt.Sprintf("%.1f", m.Score),
		})
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="matches_%d.csv"`, entity.ID))
	if _, err := w.Write(data); err != nil {
		zap.L().Error("write csv response", zap.Error(err))
	}
}
