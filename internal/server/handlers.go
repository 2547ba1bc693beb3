package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/larder/internal/errors"
	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/pipeline"
	"github.com/hyperjump/larder/internal/storage"
)

// importRequest is the JSON body of POST /api/v1/imports.
type importRequest struct {
	Text   string `json:"text,omitempty"`
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
	Policy string `json:"policy,omitempty"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var (
		body    importRequest
		cleanup func()
		err     error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		body, cleanup, err = s.readUpload(w, r)
		if cleanup != nil {
			defer cleanup()
		}
	} else {
		err = json.NewDecoder(r.Body).Decode(&body)
		if err != nil {
			err = errors.NewInvalidRequest("invalid request body")
		}
	}
	if err != nil {
		s.respondImportError(w, err)
		return
	}

	req, err := toPipelineRequest(body)
	if err != nil {
		s.respondImportError(w, err)
		return
	}
	s.logger.Debug("Import request",
		zap.String("path", req.Path), zap.Int("text_len", len(req.Text)), zap.String("format", string(req.Format)))

	result, err := s.importer.Import(r.Context(), req)
	if err != nil {
		s.respondImportError(w, err)
		return
	}
	status := http.StatusOK
	if result.Status == models.StatusCreated {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, result)
}

// readUpload stores the "file" part of a multipart request in a temp
// directory, keeping its extension so the format can be detected.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (importRequest, func(), error) {
	maxSize := s.config.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return importRequest{}, nil, errors.NewInvalidRequest("invalid multipart upload: " + err.Error())
	}
	body := importRequest{
		Text:   r.FormValue("text"),
		Format: r.FormValue("format"),
		Policy: r.FormValue("policy"),
	}
	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return body, nil, nil
	}
	if err != nil {
		return importRequest{}, nil, errors.NewInvalidRequest("invalid file part: " + err.Error())
	}
	defer file.Close()

	dir, err := os.MkdirTemp("", "larder-upload-")
	if err != nil {
		return importRequest{}, nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	name := filepath.Base(filepath.Clean("/" + header.Filename))
	if name == "/" || name == "." {
		name = "upload"
	}
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		return importRequest{}, cleanup, fmt.Errorf("failed to store upload: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		_ = out.Close()
		return importRequest{}, cleanup, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return importRequest{}, cleanup, fmt.Errorf("failed to store upload: %w", err)
	}
	body.Path = path
	return body, cleanup, nil
}

func toPipelineRequest(body importRequest) (pipeline.Request, error) {
	format, err := models.ParseFormat(body.Format)
	if err != nil {
		return pipeline.Request{}, errors.NewInvalidRequest(err.Error())
	}
	var policy models.DuplicatePolicy
	if body.Policy != "" {
		if policy, err = models.ParseDuplicatePolicy(body.Policy); err != nil {
			return pipeline.Request{}, errors.NewInvalidRequest(err.Error())
		}
	}
	return pipeline.Request{Text: body.Text, Path: body.Path, Format: format, Policy: policy}, nil
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := storage.ListOptions{
		Category: q.Get("category"),
		Limit:    queryInt(q.Get("limit"), 50),
		Offset:   queryInt(q.Get("offset"), 0),
	}
	list, err := s.storage.ListRecipes(r.Context(), opts)
	if err != nil {
		s.logger.Error("List recipes failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*models.RecipeSummary{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"recipes": list})
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.storage.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondImportError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("Delete recipe request", zap.String("id", id))
	if err := s.importer.Delete(r.Context(), id); err != nil {
		s.respondImportError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		s.respondError(w, http.StatusNotImplemented, "search index not enabled")
		return
	}
	q := r.URL.Query()
	query := models.SearchQuery{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Limit:    queryInt(q.Get("limit"), 0),
		Offset:   queryInt(q.Get("offset"), 0),
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.index.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("Search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBackends(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"backends": s.importer.Backends()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.storage.CountRecipes(r.Context())
	if err != nil {
		s.logger.Error("Status: count recipes failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{"recipes": count}

	if s.index != nil {
		if n, err := s.index.DocCount(); err == nil {
			resp["indexed"] = n
		}
	}
	available := 0
	backends := s.importer.Backends()
	for _, b := range backends {
		if b.Available {
			available++
		}
	}
	resp["backends"] = map[string]int{"total": len(backends), "available": available}
	if s.inbox != nil {
		resp["watch_directories"] = s.inbox.Directories()
	}
	if diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath, s.config.Storage.IndexPath); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = map[string]interface{}{
		"database_path":    s.config.Storage.DatabasePath,
		"index_path":       s.config.Storage.IndexPath,
		"default_category": s.config.Import.DefaultCategory,
		"default_policy":   s.config.Import.DefaultPolicy,
		"workers":          s.config.Import.Workers,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.inbox == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.inbox.Directories()})
}

func queryInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondImportError maps a typed error to its HTTP status and a body with
// the user-facing message, the code, and any missing tools.
func (s *Server) respondImportError(w http.ResponseWriter, err error) {
	status := errors.StatusOf(err)
	body := map[string]interface{}{"error": errors.UserMessage(err)}
	if ie, ok := errors.As(err); ok {
		body["code"] = ie.Code
		if names := errors.MissingNames(err); len(names) > 0 {
			body["missing"] = names
		}
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	}
	s.respondJSON(w, status, body)
}
