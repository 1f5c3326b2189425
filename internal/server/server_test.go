package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesiliance/screening-cli/internal/model"
	"github.com/kesiliance/screening-cli/internal/store"
)

func newTestServer(t *testing.T, opts Options) (*Server, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return New(st, opts), st
}

func seedSanctions(t *testing.T, st *store.SQLiteStore, names ...string) {
	t.Helper()
	sanctions := make([]model.Sanction, len(names))
	for i, n := range names {
		sanctions[i] = model.Sanction{Name: n, Source: "OFAC"}
	}
	_, err := st.ImportSanctions(context.Background(), sanctions)
	require.NoError(t, err)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAPIKey(t *testing.T) {
	srv, _ := newTestServer(t, Options{APIKey: "sekrit"})
	router := srv.Router()

	// health is open
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// protected route without key
	rec = doJSON(t, router, http.MethodGet, "/entities", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// with key
	req := httptest.NewRequest(http.MethodGet, "/entities", nil)
	req.Header.Set("x-api-key", "sekrit")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKey_UnsetDisablesCheck(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv.Router(), http.MethodGet, "/entities", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndListEntities(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/entities",
		map[string]string{"name": "Acme Trading Ltd", "country": "GB"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Entity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Acme Trading Ltd", created.Name)

	rec = doJSON(t, router, http.MethodGet, "/entities?query=acme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []model.Entity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestCreateEntity_MissingName(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/entities",
		map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatch(t *testing.T) {
	srv, st := newTestServer(t, Options{})
	seedSanctions(t, st, "Vladimir V. Putin", "Bank Rossiya", "John Smith")

	entity, err := st.CreateEntity(context.Background(), model.Entity{Name: "Vladimir Putin"})
	require.NoError(t, err)

	rec := doJSON(t, srv.Router(), http.MethodGet,
		fmt.Sprintf("/match/%d", entity.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		EntityID   int64         `json:"entity_id"`
		EntityName string        `json:"entity_name"`
		Threshold  int           `json:"threshold"`
		Matches    []model.Match `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, entity.ID, resp.EntityID)
	assert.Equal(t, 80, resp.Threshold)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "Vladimir V. Putin", resp.Matches[0].Name)
	assert.GreaterOrEqual(t, resp.Matches[0].Score, 80.0)
}

func TestMatch_UnknownEntity(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv.Router(), http.MethodGet, "/match/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatch_InvalidThreshold(t *testing.T) {
	srv, st := newTestServer(t, Options{})
	entity, err := st.CreateEntity(context.Background(), model.Entity{Name: "X"})
	require.NoError(t, err)

	rec := doJSON(t, srv.Router(), http.MethodGet,
		fmt.Sprintf("/match/%d?threshold=150", entity.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Router(), http.MethodGet,
		fmt.Sprintf("/match/%d?threshold=abc", entity.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchCSV(t *testing.T) {
	srv, st := newTestServer(t, Options{})
	seedSanctions(t, st, "Vladimir V. Putin")

	entity, err := st.CreateEntity(context.Background(), model.Entity{Name: "Vladimir Putin"})
	require.NoError(t, err)

	rec := doJSON(t, srv.Router(), http.MethodGet,
		fmt.Sprintf("/match/%d/csv", entity.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "entity_id,entity_name,sanction_id,sanction_name,source,country,score", lines[0])
	assert.Contains(t, lines[1], "Vladimir V. Putin")
	assert.True(t, strings.HasSuffix(lines[1], "95.0"), "score column rounded to one decimal: %s", lines[1])
}

func TestImportSanctionsUpload(t *testing.T) {
	srv, st := newTestServer(t, Options{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "list.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("name,country,source\nBank Rossiya,RU,EU\n,skip,me\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/sanctions/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imported":1}`, rec.Body.String())

	all, err := st.AllSanctions(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Bank Rossiya", all[0].Name)
}

func TestImportSanctions_BadUpload(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/sanctions/import", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshSanctions(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("name,country,source\nVladimir V. Putin,RU,OFAC\nBank Rossiya,RU,EU\n"))
	}))
	defer upstream.Close()

	srv, st := newTestServer(t, Options{})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/admin/refresh_sanctions",
		map[string]string{"url": upstream.URL + "/list.csv"})
	require.Equal(t, http.StatusOK, rec.Code)

	all, err := st.AllSanctions(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRefreshSanctions_DownloadFails(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/admin/refresh_sanctions",
		map[string]string{"url": upstream.URL + "/gone.csv"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRefreshSanctions_MissingURL(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/admin/refresh_sanctions",
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
