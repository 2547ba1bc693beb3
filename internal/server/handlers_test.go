package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/larder/internal/config"
	"github.com/hyperjump/larder/internal/extract"
	"github.com/hyperjump/larder/internal/keyword"
	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/pipeline"
	"github.com/hyperjump/larder/internal/storage"
)

const pancakes = `Buttermilk Pancakes
Serves 4

Ingredients:
2 cups flour
2 cups buttermilk
1 egg

Method:
1. Whisk everything together.
2. Fry in a hot pan.`

type mockInbox struct {
	dirs []string
}

func (m *mockInbox) Directories() []string {
	return append([]string(nil), m.dirs...)
}

type unavailableBackend struct{}

func (unavailableBackend) Name() string     { return "antiword" }
func (unavailableBackend) Requires() string { return "antiword" }
func (unavailableBackend) Available() error { return stderrors.New("not installed") }
func (unavailableBackend) Extract(context.Context, string) (*extract.Result, error) {
	return nil, stderrors.New("unreachable")
}

func newTestServer(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{Storage: config.StorageConfig{DatabasePath: filepath.Join(dir, "db.sqlite")}}
	config.ApplyDefaults(cfg)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	kwIdx, err := keyword.NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kwIdx.Close() })

	reg := extract.DefaultRegistry()
	reg[models.FormatDOC] = []extract.Backend{unavailableBackend{}}
	runner := extract.NewRunner(extract.WithRegistry(reg))
	imp := pipeline.NewImporter(store, runner, nil, pipeline.WithIndex(kwIdx))

	srv := NewServer(imp, store, kwIdx, &mockInbox{dirs: []string{"/tmp/inbox"}}, cfg, zap.NewNop())
	return srv.Router(), cfg
}

func do(t *testing.T, h http.Handler, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func importText(t *testing.T, h http.Handler, text, policy string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(importRequest{Text: text, Policy: policy})
	return do(t, h, http.MethodPost, "/api/v1/imports", body, "application/json")
}

func TestHandleHealth(t *testing.T) {
	h, _ := newTestServer(t)
	w := do(t, h, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestImportLifecycle(t *testing.T) {
	h, _ := newTestServer(t)

	w := importText(t, h, pancakes, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("import status = %d: %s", w.Code, w.Body.String())
	}
	var result models.ImportResult
	decode(t, w, &result)
	if result.ID == "" || result.Title != "Buttermilk Pancakes" || result.Status != models.StatusCreated {
		t.Fatalf("result = %+v", result)
	}

	w = importText(t, h, pancakes, "skip")
	if w.Code != http.StatusOK {
		t.Errorf("duplicate import status = %d", w.Code)
	}
	var skipped models.ImportResult
	decode(t, w, &skipped)
	if skipped.Status != models.StatusSkipped || skipped.ID != "" {
		t.Errorf("duplicate result = %+v", skipped)
	}

	w = do(t, h, http.MethodGet, "/api/v1/recipes/"+result.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var recipe models.Recipe
	decode(t, w, &recipe)
	if len(recipe.Ingredients) != 3 || len(recipe.Instructions) != 2 {
		t.Errorf("recipe = %+v", recipe)
	}

	w = do(t, h, http.MethodGet, "/api/v1/recipes", nil, "")
	var list struct {
		Recipes []models.RecipeSummary `json:"recipes"`
	}
	decode(t, w, &list)
	if len(list.Recipes) != 1 || list.Recipes[0].IngredientCount != 3 {
		t.Errorf("list = %+v", list)
	}

	w = do(t, h, http.MethodGet, "/api/v1/search?q=buttermilk", nil, "")
	var resp models.SearchResponse
	decode(t, w, &resp)
	if resp.Total != 1 || resp.Hits[0].ID != result.ID {
		t.Errorf("search = %+v", resp)
	}

	w = do(t, h, http.MethodDelete, "/api/v1/recipes/"+result.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	w = do(t, h, http.MethodGet, "/api/v1/recipes/"+result.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
	var errBody map[string]interface{}
	decode(t, w, &errBody)
	if errBody["code"] != "NOT_FOUND" {
		t.Errorf("error body = %v", errBody)
	}
	w = do(t, h, http.MethodGet, "/api/v1/search?q=buttermilk", nil, "")
	resp = models.SearchResponse{}
	decode(t, w, &resp)
	if resp.Total != 0 {
		t.Errorf("deleted recipe still searchable: %+v", resp)
	}
}

func TestImportErrors(t *testing.T) {
	h, _ := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed body", `{"text":`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"nothing to import", `{}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown policy", `{"text": "Soup", "policy": "merge"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown format", `{"text": "Soup", "format": "pptx"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"empty source", `{"text": "[]"}`, http.StatusUnprocessableEntity, "EMPTY_RECIPE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/imports", []byte(tt.body), "application/json")
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			var body map[string]interface{}
			decode(t, w, &body)
			if body["code"] != tt.code || body["error"] == "" {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(content)
	_ = mw.Close()
	return buf.Bytes(), mw.FormDataContentType()
}

func TestImportUpload(t *testing.T) {
	h, _ := newTestServer(t)
	body, ct := multipartBody(t, "../../box.json",
		[]byte(`[{"title": "Miso Soup", "ingredients": ["dashi", "miso"]}, {"title": "Rice", "ingredients": ["rice"]}]`),
		map[string]string{"policy": "create"})

	w := do(t, h, http.MethodPost, "/api/v1/imports", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var result models.ImportResult
	decode(t, w, &result)
	if result.Format != models.FormatJSON || len(result.Records) != 2 || result.Title != "Rice" {
		t.Errorf("result = %+v", result)
	}
}

func TestImportUpload_MissingCapability(t *testing.T) {
	h, _ := newTestServer(t)
	body, ct := multipartBody(t, "grandma.doc", []byte("legacy word file"), nil)

	w := do(t, h, http.MethodPost, "/api/v1/imports", body, ct)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Error   string   `json:"error"`
		Code    string   `json:"code"`
		Missing []string `json:"missing"`
	}
	decode(t, w, &out)
	if out.Code != "MISSING_CAPABILITY" || len(out.Missing) != 1 || out.Missing[0] != "antiword" {
		t.Errorf("body = %+v", out)
	}
	if !strings.Contains(out.Error, "antiword") {
		t.Errorf("message should name the tool: %q", out.Error)
	}
}

func TestImportByPath(t *testing.T) {
	h, _ := newTestServer(t)
	path := filepath.Join(t.TempDir(), "stew.md")
	if err := os.WriteFile(path, []byte("# Beef Stew\n\n## Ingredients\n\n- 1 kg beef\n\n## Method\n\n1. Braise.\n"), 0600); err != nil {
		t.Fatal(err)
	}
	body, _ := json.Marshal(importRequest{Path: path})
	w := do(t, h, http.MethodPost, "/api/v1/imports", body, "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var result models.ImportResult
	decode(t, w, &result)
	if result.Format != models.FormatMarkdown || result.Title != "Beef Stew" {
		t.Errorf("result = %+v", result)
	}
}

func TestHandleSearch_requiresQuery(t *testing.T) {
	h, _ := newTestServer(t)
	w := do(t, h, http.MethodGet, "/api/v1/search", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHandleStatusAndBackends(t *testing.T) {
	h, cfg := newTestServer(t)
	if w := importText(t, h, pancakes, ""); w.Code != http.StatusCreated {
		t.Fatalf("import status = %d", w.Code)
	}

	w := do(t, h, http.MethodGet, "/api/v1/status", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d", w.Code)
	}
	var status struct {
		Recipes   int64    `json:"recipes"`
		Indexed   uint64   `json:"indexed"`
		Watch     []string `json:"watch_directories"`
		DiskUsage int64    `json:"disk_usage_bytes"`
		Config    struct {
			DatabasePath string `json:"database_path"`
		} `json:"config"`
	}
	decode(t, w, &status)
	if status.Recipes != 1 || status.Indexed != 1 {
		t.Errorf("status = %+v", status)
	}
	if len(status.Watch) != 1 || status.Watch[0] != "/tmp/inbox" {
		t.Errorf("watch = %v", status.Watch)
	}
	if status.DiskUsage <= 0 || status.Config.DatabasePath != cfg.Storage.DatabasePath {
		t.Errorf("disk/config = %d %q", status.DiskUsage, status.Config.DatabasePath)
	}

	w = do(t, h, http.MethodGet, "/api/v1/backends", nil, "")
	var backends struct {
		Backends []extract.BackendStatus `json:"backends"`
	}
	decode(t, w, &backends)
	found := false
	for _, b := range backends.Backends {
		if b.Name == "antiword" {
			found = true
			if b.Available {
				t.Error("antiword should be reported unavailable")
			}
		}
	}
	if !found {
		t.Errorf("backends = %+v", backends.Backends)
	}

	w = do(t, h, http.MethodGet, "/api/v1/watch/directories", nil, "")
	var dirs struct {
		Directories []string `json:"directories"`
	}
	decode(t, w, &dirs)
	if len(dirs.Directories) != 1 {
		t.Errorf("directories = %v", dirs.Directories)
	}
}
