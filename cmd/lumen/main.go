package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/lumen-org/lumen/engine"
	"github.com/lumen-org/lumen/helpers"
	"github.com/lumen-org/lumen/server"
	"github.com/lumen-org/lumen/warehouse"
)

const version = "0.1.0"

func main() {
	addr := pflag.String("addr", "", "Listen address (overrides config)")
	configPath := pflag.String("config", "", "Path to HuJSON config file")
	dbPath := pflag.String("db", "", "Path to the warehouse database (overrides config)")
	fixtureDir := pflag.String("fixture-dir", "", "Serve from CSV fixtures instead of the warehouse")
	exportDataset := pflag.String("export", "", "One-shot export: dataset name (people or sessions)")
	outPath := pflag.String("out", "", "Export destination (defaults to the dataset's fixed filename)")
	showVersion := pflag.Bool("version", false, "Print version and exit")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Lumen — analytics dashboard backend

Usage:
  lumen --db warehouse.db
  lumen --fixture-dir ./fixtures --addr :9090
  lumen --db warehouse.db --export people --out people_data.csv

Flags:
`)
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  LUMEN_PROJECT_ID          Required for warehouse mode
  LUMEN_CREDENTIALS_PATH    Credentials file (local dev fallback)
  LUMEN_ADDR, LUMEN_DB_PATH, LUMEN_FIXTURE_DIR, LUMEN_CACHE_TTL_SECONDS
`)
	}
	pflag.Parse()

	if *showVersion {
		fmt.Printf("lumen %s\n", version)
		return
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *fixtureDir != "" {
		cfg.FixtureDir = *fixtureDir
	}

	fetcher, cleanup, err := buildFetcher(cfg)
	if err != nil {
		fatalf("%v", err)
	}
	defer cleanup()

	loader := warehouse.NewLoader(fetcher, cfg.CacheTTL())

	if *exportDataset != "" {
		if err := runExport(loader, *exportDataset, *outPath); err != nil {
			fatalf("export: %v", err)
		}
		return
	}

	srv := server.New(loader)
	log.Printf("lumen %s listening on %s", version, cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv); err != nil {
		fatalf("serve: %v", err)
	}
}

// buildFetcher picks the data source: CSV fixtures when configured,
// otherwise the warehouse database.
func buildFetcher(cfg Config) (warehouse.Fetcher, func(), error) {
	if cfg.FixtureDir != "" {
		log.Printf("serving from fixtures in %s", cfg.FixtureDir)
		return fixtureFetcher{dir: cfg.FixtureDir}, func() {}, nil
	}

	whCfg, err := warehouse.ResolveConfig(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	client, err := warehouse.Open(whCfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func runExport(loader *warehouse.Loader, dataset, out string) error {
	ds, err := loader.Load(context.Background())
	if err != nil {
		return err
	}

	var tbl *engine.Table
	switch dataset {
	case "people":
		tbl = ds.People
		if out == "" {
			out = "people_data.csv"
		}
	case "sessions":
		tbl = ds.Sessions
		if out == "" {
			out = "sessions_data.csv"
		}
	default:
		return fmt.Errorf("unknown dataset %q", dataset)
	}

	if err := helpers.ExportFile(out, tbl); err != nil {
		return err
	}
	log.Printf("exported %d rows to %s", tbl.Len(), out)
	return nil
}

// ============================================================================
// FIXTURE FETCHER — CSV-backed warehouse stand-in
// ============================================================================

type fixtureFetcher struct {
	dir string
}

func (f fixtureFetcher) FetchDatasets(ctx context.Context) (*engine.Table, *engine.Table, error) {
	people, err := readFixture(filepath.Join(f.dir, "people.csv"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading people data: %w", err)
	}
	sessions, err := readFixture(filepath.Join(f.dir, "sessions.csv"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading sessions data: %w", err)
	}
	return people, sessions, nil
}

func readFixture(path string) (*engine.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return helpers.ReadCSV(data)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
