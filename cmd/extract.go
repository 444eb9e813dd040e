package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hashapp/scout/internal/cascade"
	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/monitoring"
	"github.com/hashapp/scout/internal/ocr"
	"github.com/hashapp/scout/internal/page"
)

var (
	extractURL     string
	extractListing bool
	extractPolicy  string
	extractStats   bool
	extractWorkers int
)

var extractCmd = &cobra.Command{
	Use:   "extract <file-or-dir>",
	Short: "Run the cascade over saved HTML snapshots",
	Long: `Runs the extraction cascade over one saved HTML file, or over every
.html file in a directory (batch mode). Results are printed as JSON,
one record per line.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractURL, "url", "", "resolved page URL the snapshot was fetched from")
	extractCmd.Flags().BoolVar(&extractListing, "listing", false, "listing mode: one record per structured event block")
	extractCmd.Flags().StringVar(&extractPolicy, "policy", "", "cascade policy file overriding the main config")
	extractCmd.Flags().BoolVar(&extractStats, "stats", false, "print batch metrics after extraction")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 4, "concurrent extractions in batch mode")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractPolicy != "" {
		policy, err := config.LoadPolicy(extractPolicy)
		if err != nil {
			return err
		}
		cfg.Cascade = policy
	}

	handle := ocr.NewHandle(cfg.OCR)
	collector := monitoring.NewCollector()
	engine := cascade.New(cfg, handle).WithMetrics(collector)

	info, err := os.Stat(args[0])
	if err != nil {
		return eris.Wrapf(err, "stat %s", args[0])
	}

	ctx := cmd.Context()
	if info.IsDir() {
		if err := runBatch(ctx, engine, args[0]); err != nil {
			return err
		}
	} else {
		if err := runOne(ctx, engine, args[0], extractURL); err != nil {
			return err
		}
	}

	if extractStats {
		snap := collector.Snapshot()
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal stats")
		}
		fmt.Fprintln(os.Stderr, string(out))
	}
	return nil
}

func runOne(ctx context.Context, engine *cascade.Engine, path, pageURL string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	snap, err := page.New(f, pageURL)
	if err != nil {
		return err
	}

	if extractListing {
		results, metas, err := engine.ExtractAll(ctx, snap)
		if err != nil {
			return err
		}
		for i, r := range results {
			if err := printRecord(r, metas[i]); err != nil {
				return err
			}
		}
		return nil
	}

	result, meta, err := engine.Extract(ctx, snap)
	if err != nil {
		return err
	}
	return printRecord(result, meta)
}

// runBatch extracts every .html file in dir. The shared engine keeps one
// OCR handle across all workers, so the recognition engine is started at
// most once and torn down when the last extraction finishes.
func runBatch(ctx context.Context, engine *cascade.Engine, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return eris.Wrapf(err, "read dir %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	var mu sync.Mutex // serializes record output lines

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(extractWorkers)
	for _, path := range files {
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				zap.L().Warn("batch: skipping unreadable file", zap.String("path", path), zap.Error(err))
				return nil
			}
			defer f.Close()

			snap, err := page.New(f, "file://"+path)
			if err != nil {
				zap.L().Warn("batch: skipping unparseable file", zap.String("path", path), zap.Error(err))
				return nil
			}

			result, meta, err := engine.Extract(gCtx, snap)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			return printRecord(result, meta)
		})
	}
	return g.Wait()
}

func printRecord(result *model.ExtractionResult, meta *model.Metadata) error {
	record := struct {
		Result *model.ExtractionResult `json:"result"`
		Meta   *model.Metadata         `json:"metadata"`
	}{Result: result, Meta: meta}

	out, err := json.Marshal(record)
	if err != nil {
		return eris.Wrap(err, "marshal record")
	}
	fmt.Println(string(out))
	return nil
}
