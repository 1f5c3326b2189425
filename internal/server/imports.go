package server

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/kesiliance/screening-cli/internal/fetcher"
	"github.com/kesiliance/screening-cli/internal/model"
)

// maxImportBytes caps uploaded list files. The largest published lists are a
// few tens of megabytes.
const maxImportBytes = 64 << 20

func uploadFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, bool) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart upload")
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, `missing "file" field`)
		return nil, false
	}
	return file, true
}

func (s *Server) handleImportEntities(w http.ResponseWriter, r *http.Request) {
	file, ok := uploadFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	entities, err := fetcher.EntityRows(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.store.ImportEntities(r.Context(), entities)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	zap.L().Info("entities imported", zap.Int64("count", n))
	writeJSON(w, http.StatusOK, map[string]int64{"imported": n})
}

func (s *Server) handleImportSanctions(w http.ResponseWriter, r *http.Request) {
	file, ok := uploadFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	sanctions, err := fetcher.SanctionRows(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.importSanctions(r, sanctions)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"imported": n})
}

func (s *Server) importSanctions(r *http.Request, sanctions []model.Sanction) (int64, error) {
	n, err := s.store.ImportSanctions(r.Context(), sanctions)
	if err != nil {
		return 0, err
	}
	zap.L().Info("sanctions imported", zap.Int64("count", n))
	return n, nil
}
