// Package main is the larder CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/larder/internal/cli"
	"github.com/hyperjump/larder/internal/config"
	"github.com/hyperjump/larder/internal/errors"
	"github.com/hyperjump/larder/internal/extract"
	"github.com/hyperjump/larder/internal/keyword"
	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/pipeline"
	"github.com/hyperjump/larder/internal/server"
	"github.com/hyperjump/larder/internal/storage"
	"github.com/hyperjump/larder/internal/vocab"
	"github.com/hyperjump/larder/internal/watcher"
	"github.com/hyperjump/larder/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/larder/config.yaml"

// loadConfig loads config from path. When path is the default and config.yaml
// exists in the current directory, that file is used instead so that running
// from a project checkout picks up the local config.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "import":
		runImport()
	case "show":
		runShow()
	case "list":
		runList()
	case "search":
		runSearch()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "backends":
		runBackends()
	case "version", "--version", "-v":
		fmt.Printf("larder version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func parseOutput(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fail("%v", err)
	}
	return format
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (inbox events, extraction stages, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fail("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchPolicy, _ := models.ParseDuplicatePolicy(cfg.Watch.Policy)
	pool := pipeline.NewPool(ctx, components.Importer, cfg.Import.Workers, func(o pipeline.Outcome) {
		if o.Err != nil {
			logger.Warn("Inbox import failed",
				zap.String("path", o.Request.Path), zap.String("error", errors.UserMessage(o.Err)))
			return
		}
		logger.Info("Inbox import finished",
			zap.String("path", o.Request.Path), zap.String("status", string(o.Result.Status)), zap.String("title", o.Result.Title))
	})

	var inbox *watcher.Inbox
	if len(cfg.Watch.Directories) > 0 {
		inbox = watcher.NewInbox(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			func(path string) {
				if err := pool.Submit(ctx, pipeline.Request{Path: path, Policy: watchPolicy}); err != nil {
					logger.Debug("Inbox file dropped", zap.String("path", path), zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
		)
		if err := inbox.Start(ctx); err != nil {
			logger.Fatal("Failed to start inbox watcher", zap.Error(err))
		}
		go inbox.SyncExistingFiles()
	}

	var inboxSvc server.InboxService
	if inbox != nil {
		inboxSvc = inbox
	}
	srv := server.NewServer(components.Importer, components.Storage, components.Index, inboxSvc, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if inbox != nil {
		inbox.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	pool.Close()
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so that flag.Parse sees them. Go's flag
// package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// buildImportRequests turns the import flags into pipeline requests: one per
// file, or a single pasted-text request when text is set.
func buildImportRequests(files []string, text, format, policy string) ([]pipeline.Request, error) {
	f, err := models.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	var p models.DuplicatePolicy
	if policy != "" {
		if p, err = models.ParseDuplicatePolicy(policy); err != nil {
			return nil, err
		}
	}
	if text != "" {
		if len(files) > 0 {
			return nil, fmt.Errorf("give either --text or files, not both")
		}
		if text == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			text = string(data)
		}
		return []pipeline.Request{{Text: text, Format: f, Policy: p}}, nil
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("nothing to import: give files or --text")
	}
	reqs := make([]pipeline.Request, 0, len(files))
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, pipeline.Request{Path: abs, Format: f, Policy: p})
	}
	return reqs, nil
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = import directly into storage)")
	text := fs.String("text", "", "import pasted text instead of files (\"-\" reads stdin)")
	format := fs.String("format", "", "force the source format (default: detect)")
	policy := fs.String("policy", "", "duplicate policy: skip, update, or create (default from config)")
	show := fs.Bool("show", true, "print the stored recipe after a single import (-show=false to skip)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	out := parseOutput(*outputFormat)
	reqs, err := buildImportRequests(fs.Args(), *text, *format, *policy)
	if err != nil {
		fail("Import failed: %v", err)
	}

	if *serverURL != "" {
		failed := false
		for _, req := range reqs {
			res, err := importViaHTTP(*serverURL, req)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", displayName(req), err)
				failed = true
				continue
			}
			_ = cli.WriteImportResult(os.Stdout, res, out)
		}
		if failed {
			os.Exit(1)
		}
		return
	}

	if !importDirect(*configPath, *debug, reqs, *show, out) {
		os.Exit(1)
	}
}

// importDirect imports reqs into local storage and reports whether every
// request succeeded. Deferred cleanup runs before the caller exits.
func importDirect(configPath string, debug bool, reqs []pipeline.Request, show bool, out cli.OutputFormat) bool {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return false
	}
	logger, err := utils.NewCLILogger(cfg.Debug || debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return false
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return false
	}
	defer components.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	outcomes := components.Importer.ImportAll(ctx, reqs, cfg.Import.Workers)
	return reportImports(ctx, os.Stdout, os.Stderr, components.Storage, outcomes, show, out)
}

// reportImports writes each outcome: failures to errw, results to w. With
// show set, a single successful import is followed by the stored recipe.
func reportImports(ctx context.Context, w, errw io.Writer, store storage.Storage, outcomes []pipeline.Outcome, show bool, out cli.OutputFormat) bool {
	ok := true
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(errw, "%s: %s\n", displayName(o.Request), errors.UserMessage(o.Err))
			if len(errors.MissingNames(o.Err)) > 0 {
				fmt.Fprintln(errw, `  see "larder backends" for what is installed`)
			}
			ok = false
			continue
		}
		if len(outcomes) > 1 {
			fmt.Fprintf(w, "%s\n", displayName(o.Request))
		}
		_ = cli.WriteImportResult(w, o.Result, out)
		if show && len(outcomes) == 1 && o.Result.ID != "" {
			if recipe, err := store.GetRecipe(ctx, o.Result.ID); err == nil {
				fmt.Fprintln(w)
				_ = cli.WriteRecipe(w, recipe, out)
			}
		}
	}
	return ok
}

func displayName(req pipeline.Request) string {
	if req.Path != "" {
		return req.Path
	}
	return "pasted text"
}

type importPayload struct {
	Text   string `json:"text,omitempty"`
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
	Policy string `json:"policy,omitempty"`
}

func importViaHTTP(serverURL string, req pipeline.Request) (*models.ImportResult, error) {
	body, err := json.Marshal(importPayload{
		Text: req.Text, Path: req.Path, Format: string(req.Format), Policy: string(req.Policy),
	})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/imports", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, decodeServerError(resp)
	}
	var res models.ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &res, nil
}

func decodeServerError(resp *http.Response) error {
	b, _ := io.ReadAll(resp.Body)
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		return fmt.Errorf("%s", body.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
}

func runShow() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: larder show [flags] <recipe-id>")
		os.Exit(1)
	}
	out := parseOutput(*outputFormat)
	components := openDirect(*configPath, false)
	defer components.Close()

	recipe, err := components.Storage.GetRecipe(context.Background(), fs.Arg(0))
	if err != nil {
		fail("%s", errors.UserMessage(err))
	}
	if err := cli.WriteRecipe(os.Stdout, recipe, out); err != nil {
		fail("Output failed: %v", err)
	}
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	category := fs.String("category", "", "only list recipes in this category")
	limit := fs.Int("limit", 50, "number of recipes")
	offset := fs.Int("offset", 0, "number of recipes to skip")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	out := parseOutput(*outputFormat)
	components := openDirect(*configPath, false)
	defer components.Close()

	list, err := components.Storage.ListRecipes(context.Background(), storage.ListOptions{
		Category: *category, Limit: *limit, Offset: *offset,
	})
	if err != nil {
		fail("List failed: %v", err)
	}
	if err := cli.WriteRecipeList(os.Stdout, list, out); err != nil {
		fail("Output failed: %v", err)
	}
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: larder search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
When nothing matches exactly, a typo-tolerant search runs and a respelled
query is suggested.

Examples:
  larder search tomato soup
  larder search --category Soups tomato
  larder search --server "" garlic     # read the index directly
`)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use the index directly when the server is not running)")
	limit := fs.Int("limit", 10, "number of results")
	category := fs.String("category", "", "only match recipes in this category")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	out := parseOutput(*outputFormat)
	query := models.SearchQuery{Query: queryStr, Limit: *limit, Category: *category}

	var (
		response *models.SearchResponse
		err      error
	)
	if *serverURL != "" {
		// The server holds the index open; ask it instead of opening a second handle.
		response, err = searchViaHTTP(*serverURL, query)
	} else {
		components := openDirect(*configPath, true)
		defer components.Close()
		response, err = components.Index.Search(context.Background(), query)
	}
	if err != nil {
		fail("Search failed: %v", err)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, out); err != nil {
		fail("Output failed: %v", err)
	}
}

func searchViaHTTP(serverURL string, query models.SearchQuery) (*models.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query.Query)
	params.Set("limit", strconv.Itoa(query.Limit))
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	resp, err := http.Get(serverURL + "/api/v1/search?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeServerError(resp)
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: larder delete [flags] <recipe-id>")
		os.Exit(1)
	}
	id := fs.Arg(0)

	components := openDirect(*configPath, true)
	defer components.Close()

	if err := components.Importer.Delete(context.Background(), id); err != nil {
		fail("Deletion failed: %s", errors.UserMessage(err))
	}
	fmt.Printf("Recipe deleted: %s\n", id)
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	DatabasePath    string `json:"database_path,omitempty"`
	IndexPath       string `json:"index_path,omitempty"`
	DefaultCategory string `json:"default_category,omitempty"`
	DefaultPolicy   string `json:"default_policy,omitempty"`
	Workers         int    `json:"workers,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Recipes  int64   `json:"recipes"`
	Indexed  *uint64 `json:"indexed,omitempty"`
	Backends struct {
		Total     int `json:"total"`
		Available int `json:"available"`
	} `json:"backends"`
	WatchDirectories []string              `json:"watch_directories,omitempty"`
	DiskUsageBytes   *int64                `json:"disk_usage_bytes,omitempty"`
	Config           *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	out := parseOutput(*outputFormat)
	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fail("Status failed: %v", err)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fail("Failed to load config: %v", err)
		}
		status = directStatus(cfg)
	}

	if out == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fail("Output failed: %v", err)
		}
		return
	}
	fmt.Printf("recipes:            %d   # stored recipes\n", status.Recipes)
	if status.Indexed != nil {
		fmt.Printf("indexed:            %d   # recipes in the search index\n", *status.Indexed)
	}
	fmt.Printf("backends:           %d/%d available\n", status.Backends.Available, status.Backends.Total)
	if status.DiskUsageBytes != nil {
		fmt.Printf("disk_usage_bytes:   %d   # storage + index on disk\n", *status.DiskUsageBytes)
	}
	for _, d := range status.WatchDirectories {
		fmt.Printf("watching:           %s\n", d)
	}
	if c := status.Config; c != nil {
		fmt.Println()
		fmt.Println("# configuration")
		fmt.Printf("database_path:      %s\n", c.DatabasePath)
		fmt.Printf("index_path:         %s\n", c.IndexPath)
		fmt.Printf("default_category:   %s\n", c.DefaultCategory)
		fmt.Printf("default_policy:     %s\n", c.DefaultPolicy)
		fmt.Printf("workers:            %d\n", c.Workers)
	}
}

func directStatus(cfg *config.Config) statusResponse {
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		fail("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, true)
	if err != nil {
		fail("Failed to initialize: %v", err)
	}
	defer components.Close()

	count, err := components.Storage.CountRecipes(context.Background())
	if err != nil {
		fail("Count recipes failed: %v", err)
	}
	status := statusResponse{
		Recipes: count,
		Config: &statusConfigResponse{
			DatabasePath:    cfg.Storage.DatabasePath,
			IndexPath:       cfg.Storage.IndexPath,
			DefaultCategory: cfg.Import.DefaultCategory,
			DefaultPolicy:   cfg.Import.DefaultPolicy,
			Workers:         cfg.Import.Workers,
		},
	}
	if n, err := components.Index.DocCount(); err == nil {
		status.Indexed = &n
	}
	for _, b := range components.Importer.Backends() {
		status.Backends.Total++
		if b.Available {
			status.Backends.Available++
		}
	}
	if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.IndexPath); err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	return status
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeServerError(resp)
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runBackends() {
	fs := flag.NewFlagSet("backends", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	out := parseOutput(*outputFormat)
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	runner := newRunner(cfg, zap.NewNop())
	if err := cli.WriteBackends(os.Stdout, runner.Status(), out); err != nil {
		fail("Output failed: %v", err)
	}
}

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Index    keyword.KeywordIndex
	Importer *pipeline.Importer
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}

// openDirect loads config and opens storage (and the index when withIndex)
// for a one-shot command, exiting on failure.
func openDirect(configPath string, withIndex bool) *Components {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		fail("Failed to create logger: %v", err)
	}
	components, err := initializeComponents(cfg, logger, withIndex)
	if err != nil {
		fail("Failed to initialize: %v", err)
	}
	return components
}

func newRunner(cfg *config.Config, logger *zap.Logger) *extract.Runner {
	return extract.NewRunner(
		extract.WithRegistry(extract.DefaultRegistry().Without(cfg.Backends.Disabled...)),
		extract.WithMaxFileSize(cfg.Import.MaxFileSize),
		extract.WithLogger(logger),
	)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, withIndex bool) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := vocab.Default()
	if cfg.Import.VocabularyPath != "" {
		loaded, err := vocab.Load(cfg.Import.VocabularyPath)
		if err != nil {
			return nil, err
		}
		v = loaded
	}
	policy, err := cfg.Import.Policy()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	components := &Components{Storage: store}

	opts := []pipeline.ImporterOption{
		pipeline.WithLogger(logger),
		pipeline.WithDefaultPolicy(policy),
		pipeline.WithDefaultCategory(cfg.Import.DefaultCategory),
	}
	if withIndex {
		index, err := keyword.NewBleveIndex(cfg.Storage.IndexPath)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize search index: %w", err)
		}
		components.Index = index
		opts = append(opts, pipeline.WithIndex(index))
	}
	components.Importer = pipeline.NewImporter(store, newRunner(cfg, logger), v, opts...)
	return components, nil
}

func printUsage() {
	fmt.Println(`larder - recipe ingestion and normalization

Usage:
  larder server [flags]                Start the HTTP server and inbox watcher
  larder import [flags] <file>...      Import recipe files
  larder import --text <text|->        Import pasted text ("-" reads stdin)
  larder show [flags] <id>             Show a stored recipe
  larder list [flags]                  List stored recipes
  larder search [flags] <query>        Search recipes
  larder delete [flags] <id>           Delete a recipe
  larder status [flags]                Show storage/index status
  larder backends [flags]              Show extraction backends and what they need
  larder version                       Show version
  larder help                          Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/larder/config.yaml)
  --debug            Enable debug logging

Import Flags:
  --config string    Config file path
  --server string    Server URL; empty (default) imports directly into storage
  --text string      Pasted text to import instead of files
  --format string    Force the source format (txt, pdf, doc, docx, odt, rtf, xlsx, ods, csv, json, xml, yaml, markdown, html)
  --policy string    Duplicate policy: skip, update, or create
  --show             Print the stored recipe after a single import
  --output string    Output format: text or json (default: text)

Search Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to read the index directly.
  --limit int        Number of results (default: 10)
  --category string  Only match recipes in this category

Examples:
  larder server
  larder import soup.docx
  larder import --policy update *.json
  pbpaste | larder import --text -
  larder list --category Soups
  larder search "tomato soup"
  larder status --output json`)
}
