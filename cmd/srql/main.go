package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/clarktrimble/sabot"
	_ "github.com/marcboeker/go-duckdb"

	"srql"
	"srql/catalog"
	"srql/page"
	"srql/store/duck"
)

func main() {

	var (
		dataDir     = flag.String("data", "data", "directory of <entity>.ndjson exports")
		entity      = flag.String("entity", "devices", "entity to open")
		limit       = flag.Int("limit", 100, "default page size")
		tenant      = flag.String("tenant", "local", "tenant to query as")
		catalogPath = flag.String("catalog", "", "optional catalog override yaml")
		logPath     = flag.String("log", "srql.log", "log file (the TUI owns the terminal)")
	)
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fatal(err)
	}
	defer logFile.Close()

	lgr := &sabot.Sabot{Writer: logFile, MaxLen: 120}
	ctx := context.Background()

	cat := catalog.Default()
	if *catalogPath != "" {
		cat, err = catalog.Load(*catalogPath)
		if err != nil {
			fatal(err)
		}
	}

	dk, err := duck.New(lgr)
	if err != nil {
		fatal(err)
	}
	defer dk.Close()

	err = loadExports(dk, *dataDir)
	if err != nil {
		fatal(err)
	}
	lgr.Info(ctx, "loaded entities", "entities", dk.Entities(), "data", *dataDir)

	pg := page.New(cat, dk, lgr)

	cfg := srql.Config{
		Entity: *entity,
		Limit:  *limit,
	}
	model := cfg.New(ctx, pg, srql.LocalActor(*tenant), lgr)

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}

// loadExports ingests every <entity>.ndjson file in dir.
func loadExports(dk *duck.Duck, dir string) error {

	paths, err := filepath.Glob(filepath.Join(dir, "*.ndjson"))
	if err != nil {
		return err
	}

	for _, path := range paths {
		entity := strings.TrimSuffix(filepath.Base(path), ".ndjson")
		err = dk.LoadNDJSON(entity, path)
		if err != nil {
			return err
		}
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "srql: %v\n", err)
	os.Exit(1)
}
