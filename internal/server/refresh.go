package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kesiliance/screening-cli/internal/fetcher"
	"github.com/kesiliance/screening-cli/internal/model"
	"github.com/kesiliance/screening-cli/internal/resilience"
)

// handleRefreshSanctions downloads a published sanction list and loads it
// into the store. Transient download failures are retried with backoff.
func (s *Server) handleRefreshSanctions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RefreshTimeout)
	defer cancel()

	sanctions, err := FetchSanctions(ctx, req.URL, fetcher.HTTPOptions{
		UserAgent:    s.opts.UserAgent,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
	if err != nil {
		zap.L().Error("sanctions refresh failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, http.StatusBadGateway, "list download failed")
		return
	}

	n, err := s.importSanctions(r, sanctions)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": n, "url": req.URL})
}

// FetchSanctions downloads and parses a sanction list from url, retrying
// transient failures. XLSX lists are spooled to a temp file first; CSV is
// parsed from the stream.
func FetchSanctions(ctx context.Context, rawURL string, opts fetcher.HTTPOptions) ([]model.Sanction, error) {
	f, err := fetcher.ForURL(rawURL, opts)
	if err != nil {
		return nil, err
	}

	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("sanctions refresh")

	var sanctions []model.Sanction
	err = resilience.Do(ctx, cfg, func(ctx context.Context) error {
		body, err := f.Download(ctx, rawURL)
		if err != nil {
			return err
		}
		defer body.Close()

		if strings.EqualFold(path.Ext(stripQuery(rawURL)), ".xlsx") {
			sanctions, err = spoolXLSX(body)
		} else {
			sanctions, err = fetcher.SanctionRows(body)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return sanctions, nil
}

func stripQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

func spoolXLSX(body io.Reader) ([]model.Sanction, error) {
	tmp, err := os.CreateTemp("", "sanctions-*.xlsx")
	if err != nil {
		return nil, eris.Wrap(err, "server: temp file")
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, body); err != nil {
		return nil, eris.Wrap(err, "server: spool xlsx")
	}
	return fetcher.SanctionRowsXLSX(tmp.Name())
}
