package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/codechunk/internal/config"
	"github.com/dshills/codechunk/internal/engine"
	"github.com/dshills/codechunk/internal/guard"
	"github.com/dshills/codechunk/internal/lang"
	"github.com/dshills/codechunk/internal/parser"
	"github.com/dshills/codechunk/internal/priority"
	"github.com/dshills/codechunk/internal/store"
	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// maxFileBytes skips files too large to chunk sensibly.
const maxFileBytes = 4 << 20

func main() {
	configPath := flag.String("config", "", "path to YAML configuration")
	dbPath := flag.String("db", "", "persist chunks to this SQLite database")
	workers := flag.Int("workers", 0, "batch worker pool size (overrides config)")
	verbose := flag.Bool("v", false, "verbose structured logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("codechunk\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", store.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", store.DriverName)
		os.Exit(0)
	}

	root := flag.Arg(0)
	if root == "" {
		fmt.Fprintln(os.Stderr, "usage: codechunk [-config file] [-db file] [-workers n] <path>")
		os.Exit(2)
	}

	if err := run(root, *configPath, *dbPath, *workers, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "codechunk: %v\n", err)
		os.Exit(1)
	}
}

func run(root, configPath, dbPath string, workers int, verbose bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
		defer func() { _ = logger.Sync() }()
	}

	registry := strategy.NewDefaultRegistry()
	priorities := priority.NewManager(cfg.PriorityConfig(), priority.NewStats(), registry)
	eng := engine.New(registry, priorities,
		engine.WithASTProvider(parser.New()),
		engine.WithSink(engine.NewZapSink(logger)),
		engine.WithGuard(guard.New(cfg.GuardOptions())),
		engine.WithSelectorConfig(cfg.SelectorConfig()),
		engine.WithWorkers(cfg.Workers),
	)

	var st store.Store
	if dbPath != "" {
		s, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		st = s
		defer func() { _ = st.Close() }()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	files, skippedUnchanged, err := collectFiles(ctx, root, st)
	if err != nil {
		return err
	}
	fmt.Printf("Chunking %d files under %s (%d unchanged)\n", len(files), root, skippedUnchanged)

	start := time.Now()
	results, err := eng.ProcessBatch(ctx, files, cfg.Options())
	if err != nil {
		return err
	}

	succeeded, failed, totalChunks := 0, 0, 0
	for i, res := range results {
		if !res.Success {
			failed++
			fmt.Fprintf(os.Stderr, "  failed: %s: %v\n", res.FilePath, res.Err)
			continue
		}
		succeeded++
		totalChunks += res.ChunkCount()
		if st != nil {
			hash := types.ComputeContentHash(files[i].Content)
			if err := st.SaveResult(ctx, res, hash, int64(len(files[i].Content))); err != nil {
				fmt.Fprintf(os.Stderr, "  store: %s: %v\n", res.FilePath, err)
			}
		}
	}

	fmt.Printf("Done in %v: %d ok, %d failed, %d chunks\n",
		time.Since(start).Round(time.Millisecond), succeeded, failed, totalChunks)
	printStats(eng.Stats())
	return nil
}

// collectFiles walks the tree gathering chunkable files, skipping hidden
// directories, vendor trees, and files whose stored hash is unchanged.
func collectFiles(ctx context.Context, root string, st store.Store) ([]engine.FileInput, int, error) {
	var files []engine.FileInput
	unchanged := 0

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !lang.Known(path) || info.Size() > maxFileBytes {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if st != nil {
			skip, err := st.Unchanged(ctx, path, types.ComputeContentHash(string(content)))
			if err != nil {
				return err
			}
			if skip {
				unchanged++
				return nil
			}
		}
		files = append(files, engine.FileInput{Path: path, Content: string(content)})
		return nil
	})
	return files, unchanged, err
}

// printStats prints the per-strategy summary sorted by execution count.
func printStats(stats map[string]priority.Snapshot) {
	if len(stats) == 0 {
		return
	}
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if stats[names[i]].Executions != stats[names[j]].Executions {
			return stats[names[i]].Executions > stats[names[j]].Executions
		}
		return names[i] < names[j]
	})

	fmt.Println("Strategy statistics:")
	for _, name := range names {
		s := stats[name]
		fmt.Printf("  %-10s runs=%-5d success=%.0f%% avg=%v\n",
			name, s.Executions, s.SuccessRate*100, s.AvgTime.Round(time.Microsecond))
	}
}
