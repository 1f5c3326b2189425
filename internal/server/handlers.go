package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kesiliance/screening-cli/internal/model"
	"github.com/kesiliance/screening-cli/internal/screening"
	"github.com/kesiliance/screening-cli/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps domain errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	var invalid *screening.InvalidParameterError
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &screening.InvalidParameterError{Param: name, Value: 0, Reason: "must be an integer"}
	}
	return n, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "screening-cli",
		"docs":    "/health, /entities, /sanctions, /match/{entity_id}",
	})
}

func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	entity, err := s.store.CreateEntity(r.Context(), model.Entity{
		Name:    strings.TrimSpace(req.Name),
		Country: strings.TrimSpace(req.Country),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entity)
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 100)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	entities, err := s.store.ListEntities(r.Context(), store.EntityFilter{
		Query:  r.URL.Query().Get("query"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if entities == nil {
		entities = []model.Entity{}
	}
	writeJSON(w, http.StatusOK, entities)
}

func (s *Server) handleListSanctions(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 100)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	sanctions, err := s.store.ListSanctions(r.Context(), store.SanctionFilter{
		Query:  r.URL.Query().Get("query"),
		Source: r.URL.Query().Get("source"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sanctions == nil {
		sanctions = []model.Sanction{}
	}
	writeJSON(w, http.StatusOK, sanctions)
}

// matchParams reads the entity and screening parameters shared by the JSON
// and CSV match endpoints.
func (s *Server) matchParams(r *http.Request) (*model.Entity, screening.Request, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "entityID"), 10, 64)
	if err != nil {
		return nil, screening.Request{}, &screening.InvalidParameterError{
			Param: "entity_id", Value: 0, Reason: "must be an integer",
		}
	}

	threshold, err := intQuery(r, "threshold", s.opts.DefaultThreshold)
	if err != nil {
		return nil, screening.Request{}, err
	}
	limit, err := intQuery(r, "limit", s.opts.DefaultLimit)
	if err != nil {
		return nil, screening.Request{}, err
	}

	entity, err := s.store.GetEntity(r.Context(), id)
	if err != nil {
		return nil, screening.Request{}, err
	}

	return entity, screening.Request{
		QueryName: entity.Name,
		Threshold: threshold,
		Limit:     limit,
		Workers:   s.opts.Workers,
	}, nil
}

func (s *Server) screen(r *http.Request, req screening.Request) ([]model.Match, error) {
	sanctions, err := s.store.AllSanctions(r.Context())
	if err != nil {
		return nil, err
	}
	return screening.Screen(r.Context(), req, sanctions)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
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
	if matches == nil {
		matches = []model.Match{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entity_id":   entity.ID,
		"entity_name": entity.Name,
		"threshold":   req.Threshold,
		"limit":       req.Limit,
		"matches":     matches,
	})
}
