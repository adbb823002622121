// Package main is the vetcontent CLI entry point.
package main

import (
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

	"github.com/hyperjump/vetcontent/internal/cli"
	"github.com/hyperjump/vetcontent/internal/config"
	"github.com/hyperjump/vetcontent/internal/content"
	"github.com/hyperjump/vetcontent/internal/dbcontent"
	"github.com/hyperjump/vetcontent/internal/feed"
	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/page"
	"github.com/hyperjump/vetcontent/internal/render"
	"github.com/hyperjump/vetcontent/internal/resolver"
	"github.com/hyperjump/vetcontent/internal/search"
	"github.com/hyperjump/vetcontent/internal/seo"
	"github.com/hyperjump/vetcontent/internal/server"
	"github.com/hyperjump/vetcontent/internal/storage"
	"github.com/hyperjump/vetcontent/internal/watcher"
	"github.com/hyperjump/vetcontent/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/vetcontent/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if neither exists, defaults
// and environment variables are used.
// Returns the config and the path that was actually loaded ("" when none was).
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
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			cfg, err := config.Load("")
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
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
	case "index":
		runIndex()
	case "search":
		runSearch()
	case "sitemap":
		runSitemap()
	case "rss":
		runRSS()
	case "seed":
		runSeed()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("vetcontent version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// mustSetup loads config and creates the logger, exiting on failure.
func mustSetup(configPath string, debugFlag bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (content loads, watcher events, etc.)")
	watch := fs.Bool("watch", false, "rebuild the index when the content tree changes")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()
	debugMode := cfg.Debug || *debug
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := initializeComponents(ctx, cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()
	components.Assembler.ReportConflicts(ctx)

	if cfg.Watch.Enabled || *watch {
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		lib := components.Library
		watchSvc := watcher.NewWatcher(
			cfg.Content.Root,
			cfg.Content.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			func(paths []string) {
				cat, err := lib.Build(ctx)
				if err != nil {
					logger.Warn("content rebuild failed", zap.Strings("changed", paths), zap.Error(err))
					return
				}
				logger.Info("content rebuilt", zap.Int("changed", len(paths)), zap.Int("entries", cat.Snapshot.Len()))
				components.Assembler.ReportConflicts(ctx)
			},
			watchOpts...,
		)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(components.Assembler, components.Library, components.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	output := fs.String("output", "text", "output format: text or json")
	collection := fs.String("collection", "", "only list this collection")
	locale := fs.String("locale", "", "only list this locale")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	c, l, err := parseFilters(*collection, *locale)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	components, err := initializeComponents(context.Background(), cfg, logger, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	cat := components.Library.Current()
	if err := cli.WriteIndex(os.Stdout, cat.Snapshot.List(c, l), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if format == cli.OutputText && cat.Legacy.Len() > 0 {
		fmt.Printf("%d legacy documents (validated on load)\n", cat.Legacy.Len())
	}
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: vetcontent search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Matching ignores case and accents. When nothing matches exactly the search is retried once with
typo tolerance; use --fuzzy to start there.

Examples:
  vetcontent search telemedicina
  vetcontent search --locale en inventory management
  vetcontent search --fuzzy inventaro               # typo-tolerant search
  vetcontent search --server "" --output json ia    # read the content tree directly
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
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

func parseFilters(collection, locale string) (models.Collection, models.Locale, error) {
	var c models.Collection
	var l models.Locale
	if collection != "" {
		var ok bool
		if c, ok = models.ParseCollection(collection); !ok {
			return "", "", fmt.Errorf("unknown collection %q", collection)
		}
	}
	if locale != "" {
		var ok bool
		if l, ok = models.ParseLocale(locale); !ok {
			return "", "", fmt.Errorf("unknown locale %q", locale)
		}
	}
	return c, l, nil
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = read the content tree directly)")
	limit := fs.Int("limit", 10, "number of results")
	locale := fs.String("locale", "", "only search this locale (es or en)")
	collection := fs.String("collection", "", "only search this collection (blog or case-studies)")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typo tolerance")
	output := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	c, l, err := parseFilters(*collection, *locale)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	q := search.Query{Text: queryStr, Locale: l, Collection: c, Limit: *limit, Fuzzy: *fuzzy}

	var response *search.Response
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, q)
	} else {
		response, err = searchDirect(*configPath, q)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchDirect(configPath string, q search.Query) (*search.Response, error) {
	cfg, _, logger := mustSetup(configPath, false)
	defer logger.Sync()
	components, err := initializeComponents(context.Background(), cfg, logger, false)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	idx := components.Library.Current().Search
	if idx == nil {
		return nil, fmt.Errorf("search index unavailable")
	}
	return idx.Search(context.Background(), q)
}

// searchQueryValues encodes q as the query string of GET /api/v1/search.
func searchQueryValues(q search.Query) url.Values {
	v := url.Values{}
	v.Set("q", q.Text)
	if q.Locale != "" {
		v.Set("locale", string(q.Locale))
	}
	if q.Collection != "" {
		v.Set("collection", string(q.Collection))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Fuzzy {
		v.Set("fuzzy", "true")
	}
	return v
}

func searchViaHTTP(serverURL string, q search.Query) (*search.Response, error) {
	resp, err := http.Get(strings.TrimSuffix(serverURL, "/") + "/api/v1/search?" + searchQueryValues(q).Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response search.Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

// openOutput returns stdout for "" or "-", otherwise creates path.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func runSitemap() {
	fs := flag.NewFlagSet("sitemap", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	out := fs.String("o", "", "output file (default stdout)")
	_ = fs.Parse(os.Args[2:])

	writeFeed(*configPath, *out, func(w io.Writer, a *page.Assembler, items []feed.Item) error {
		return feed.Sitemap(w, a.Site(), items, feed.StaticPaths())
	})
}

func runRSS() {
	fs := flag.NewFlagSet("rss", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	locale := fs.String("locale", string(models.LocaleES), "feed locale (es or en)")
	out := fs.String("o", "", "output file (default stdout)")
	_ = fs.Parse(os.Args[2:])

	l, ok := models.ParseLocale(*locale)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown locale %q\n", *locale)
		os.Exit(1)
	}
	writeFeed(*configPath, *out, func(w io.Writer, a *page.Assembler, items []feed.Item) error {
		return feed.RSS(w, a.Site(), l, items)
	})
}

func writeFeed(configPath, out string, write func(io.Writer, *page.Assembler, []feed.Item) error) {
	cfg, _, logger := mustSetup(configPath, false)
	defer logger.Sync()
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	w, err := openOutput(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open output: %v\n", err)
		os.Exit(1)
	}
	if err := write(w, components.Assembler, components.Assembler.FeedItems(ctx)); err != nil {
		_ = w.Close()
		fmt.Fprintf(os.Stderr, "Generation failed: %v\n", err)
		os.Exit(1)
	}
	if err := w.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}
}

// schemaEnsurer is implemented by stores whose schema is not created on open.
type schemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: vetcontent seed [flags] <records.yaml>")
		os.Exit(1)
	}
	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	if !cfg.Database.Enabled() {
		fmt.Fprintln(os.Stderr, "No database configured (database.driver is none)")
		os.Exit(1)
	}

	records, err := storage.LoadSeed(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load seed: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	if se, ok := store.(schemaEnsurer); ok {
		if err := se.EnsureSchema(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create schema: %v\n", err)
			os.Exit(1)
		}
	}
	n, err := storage.Seed(ctx, store, records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed failed after %d records: %v\n", n, err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d records into %s\n", n, cfg.Database.Driver)
}

// statusDatabase is the database section of the status response.
type statusDatabase struct {
	Driver         string           `json:"driver"`
	Enabled        bool             `json:"enabled"`
	Published      map[string]int64 `json:"published,omitempty"`
	DiskUsageBytes *int64           `json:"disk_usage_bytes,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Entries         int            `json:"entries"`
	Legacy          int            `json:"legacy"`
	BuiltAt         string         `json:"built_at"`
	SearchDocuments *uint64        `json:"search_documents,omitempty"`
	Database        statusDatabase `json:"database"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = read the content tree directly)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var status *statusResponse
	if *serverURL != "" {
		status, err = statusViaHTTP(*serverURL)
	} else {
		status, err = statusDirect(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if format == cli.OutputJSON {
		if err := cli.WriteJSON(os.Stdout, status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeStatusText(os.Stdout, status)
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "entries:            %d   # indexed static documents\n", status.Entries)
	fmt.Fprintf(w, "legacy:             %d   # legacy documents, validated on load\n", status.Legacy)
	fmt.Fprintf(w, "built_at:           %s\n", status.BuiltAt)
	if status.SearchDocuments != nil {
		fmt.Fprintf(w, "search_documents:   %d\n", *status.SearchDocuments)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# database")
	fmt.Fprintf(w, "driver:             %s\n", status.Database.Driver)
	fmt.Fprintf(w, "enabled:            %t\n", status.Database.Enabled)
	for _, c := range models.Collections {
		if n, ok := status.Database.Published[string(c)]; ok {
			fmt.Fprintf(w, "published[%s]: %d\n", c, n)
		}
	}
	if status.Database.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d\n", *status.Database.DiskUsageBytes)
	}
	if status.Database.Error != "" {
		fmt.Fprintf(w, "error:              %s\n", status.Database.Error)
	}
}

func statusDirect(configPath string) (*statusResponse, error) {
	cfg, _, logger := mustSetup(configPath, false)
	defer logger.Sync()
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger, true)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	cat := components.Library.Current()
	status := &statusResponse{
		Entries: cat.Snapshot.Len(),
		Legacy:  cat.Legacy.Len(),
		BuiltAt: cat.Snapshot.BuiltAt().UTC().Format(time.RFC3339),
		Database: statusDatabase{
			Driver:  cfg.Database.Driver,
			Enabled: components.Store != nil,
		},
	}
	if cat.Search != nil {
		if n, err := cat.Search.DocCount(); err == nil {
			status.SearchDocuments = &n
		}
	}
	if components.Store != nil {
		counts, err := components.Store.CountPublished(ctx)
		if err != nil {
			status.Database.Error = err.Error()
		} else {
			status.Database.Published = make(map[string]int64, len(counts))
			for c, n := range counts {
				status.Database.Published[string(c)] = n
			}
		}
		if cfg.Database.Driver == storage.DriverSQLite {
			if size, err := storage.SQLiteDiskUsage(cfg.Database.Path); err == nil {
				status.Database.DiskUsageBytes = &size
			}
		}
	}
	return status, nil
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(strings.TrimSuffix(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Renderer  *render.Renderer
	Library   *content.Library
	Store     storage.Store // nil when no database is configured or it could not be opened
	Assembler *page.Assembler
}

func (c *Components) Close() {
	if c.Library != nil {
		_ = c.Library.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

// initializeComponents builds the content library and, when withDB is set and a database is
// configured, opens it. A failed content build leaves the empty catalog in place. A database
// that cannot be opened is logged and left out.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, withDB bool) (*Components, error) {
	if err := os.MkdirAll(cfg.Content.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content root: %w", err)
	}
	renderer := render.NewRenderer(nil)
	lib := content.NewLibrary(
		os.DirFS(cfg.Content.Root),
		renderer,
		content.WithExtensions(cfg.Content.Extensions),
		content.WithCache(resolver.NewCache(cfg.Content.CacheSize)),
		content.WithSearchOptions(search.WithFuzziness(cfg.Search.Fuzziness)),
		content.WithLogger(logger),
	)
	if _, err := lib.Build(ctx); err != nil {
		logger.Error("content index build failed, serving an empty catalog",
			zap.String("root", cfg.Content.Root), zap.Error(err))
	}
	cat := lib.Current()
	logger.Debug("content index ready",
		zap.String("root", cfg.Content.Root),
		zap.Int("entries", cat.Snapshot.Len()),
		zap.Int("legacy", cat.Legacy.Len()),
	)

	components := &Components{Renderer: renderer, Library: lib}
	var db page.DBSource
	if withDB && cfg.Database.Enabled() {
		store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN())
		if err != nil {
			logger.Warn("database unavailable, serving the content tree only",
				zap.String("driver", cfg.Database.Driver), zap.Error(err))
		} else {
			components.Store = store
			db = dbcontent.NewAdapter(store, logger)
		}
	}

	site := seo.Site{
		Name:         cfg.Site.Name,
		BaseURL:      cfg.Site.BaseURL,
		Descriptions: cfg.Site.Descriptions,
		DefaultImage: cfg.Site.DefaultImage,
	}
	components.Assembler = page.NewAssembler(db, lib, renderer, site,
		page.WithTimeout(cfg.Page.ResolveTimeout),
		page.WithLogger(logger),
	)
	return components, nil
}

func printUsage() {
	fmt.Println(`vetcontent - Bilingual content service for the veterinary site

Usage:
  vetcontent server [flags]           Start the HTTP server
  vetcontent index [flags]            Build and print the content index
  vetcontent search [flags] <query>   Search content
  vetcontent sitemap [flags]          Write sitemap.xml
  vetcontent rss [flags]              Write the RSS feed of one locale
  vetcontent seed [flags] <file>      Load database records from a YAML file
  vetcontent status [flags]           Show index and database status
  vetcontent version                  Show version
  vetcontent help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/vetcontent/config.yaml)
  --debug            Enable debug logging
  --watch            Rebuild the index when the content tree changes

Index Flags:
  --config string       Config file path
  --output string       Output format: text or json (default: text)
  --collection string   Only list blog or case-studies
  --locale string       Only list es or en

Search Flags:
  --server string       Server URL (default: http://localhost:8080). Use --server "" to read the content tree directly.
  --limit int           Number of results (default: 10)
  --locale string       Only search es or en
  --collection string   Only search blog or case-studies
  --fuzzy               Enable fuzzy matching for typo tolerance (default: false)
  --output string       Output format: text or json (default: text)

Sitemap/RSS Flags:
  --config string    Config file path
  --o string         Output file (default: stdout)
  --locale string    RSS feed locale (default: es)

Status Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to read directly.
  --output string    Output format: text or json (default: text)

Environment:
  VETCONTENT_DEBUG, VETCONTENT_HOST, VETCONTENT_PORT, VETCONTENT_BASE_URL, VETCONTENT_CONTENT_ROOT,
  VETCONTENT_DATABASE_DRIVER, VETCONTENT_DATABASE_URL, VETCONTENT_WATCH

Examples:
  vetcontent server --watch
  vetcontent index --output json
  vetcontent search --locale es telemedicina
  vetcontent sitemap -o public/sitemap.xml
  vetcontent rss --locale en -o public/en/rss.xml
  vetcontent seed records.yaml
  vetcontent status --output json`)
}
