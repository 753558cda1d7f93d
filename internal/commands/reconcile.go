package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/tradematch/internal/gitops"
	"github.com/cleared-dev/tradematch/internal/importer"
	"github.com/cleared-dev/tradematch/internal/mapping"
	"github.com/cleared-dev/tradematch/internal/model"
	"github.com/cleared-dev/tradematch/internal/reconcile"
	"github.com/cleared-dev/tradematch/internal/runlog"
)

type reconcileFlags struct {
	repoDir     string
	historyPath string
	feedPath    string
	jsonPath    string
	restart     bool
	dryRun      bool
	asJSON      bool
}

func newReconcileCommand() *cobra.Command {
	var f reconcileFlags

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match brokerage history against the transaction feed",
		Long: `Parses brokerage history, matches every spread against the imported
transaction feed and appends the results to mappings/mappings.csv.

Without --history every .txt file in import/ is reconciled and moved to
import/processed/ afterwards. Trade numbers continue after the highest one
already in mappings/mappings.csv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVar(&f.repoDir, "repo", ".", "repository directory")
	cmd.Flags().StringVar(&f.historyPath, "history", "", "history export to reconcile (default: scan import/)")
	cmd.Flags().StringVar(&f.feedPath, "feed", "", "transaction feed JSON (required)")
	_ = cmd.MarkFlagRequired("feed")
	cmd.Flags().StringVar(&f.jsonPath, "feed-path", "", "JSONPath of the transaction array in the feed (default: feed.path from config)")
	cmd.Flags().BoolVar(&f.restart, "restart", false, "number trades from the configured start instead of after the persisted mappings")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "match without writing mappings or logs")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the mapping results as JSON")

	return cmd
}

// historyFile is one history export and the spreads parsed from it.
type historyFile struct {
	name    string
	path    string
	scanned bool
	spreads []model.Spread
}

func runReconcile(ctx context.Context, out io.Writer, f reconcileFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := openRepo(f.repoDir)
	if err != nil {
		return err
	}
	defer func() { _ = r.logger.Sync() }()

	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID))

	parser, err := historyParser(r.cfg, log)
	if err != nil {
		return err
	}

	files, err := historyFiles(r.root, f.historyPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No history files to reconcile.")
		return nil
	}

	var feed []model.FeedTransaction
	g, gctx := errgroup.WithContext(ctx)
	for i := range files {
		hf := &files[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			spreads, err := parseHistoryFile(parser, hf.path)
			if errors.Is(err, importer.ErrNoSpreads) {
				log.Warn("history file has no spreads", zap.String("file", hf.name))
				return nil
			}
			hf.spreads = spreads
			return err
		})
	}
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		sel := f.jsonPath
		if sel == "" {
			sel = r.cfg.Feed.Path
		}
		var err error
		feed, err = readFeedFile(f.feedPath, sel)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	store := mapping.NewStore(r.root, r.chart)
	mapped, err := store.MappedIDs()
	if err != nil {
		return err
	}
	pending := make([]model.FeedTransaction, 0, len(feed))
	for _, txn := range feed {
		if !mapped[txn.ID] {
			pending = append(pending, txn)
		}
	}

	opts := r.cfg.ToOptions()
	opts.Logger = log
	if f.restart {
		if len(mapped) > 0 {
			log.Warn("restarting trade numbers over persisted mappings", zap.Int("mapped", len(mapped)))
		}
	} else {
		next, err := store.NextTradeNum()
		if err != nil {
			return err
		}
		opts.StartTradeNum = next
	}

	var spreads []model.Spread
	for _, hf := range files {
		spreads = append(spreads, hf.spreads...)
	}
	res := reconcile.Reconcile(spreads, pending, opts)
	mappings := res.Mappings
	now := time.Now().UTC()

	var (
		commit   string
		rejected []mapping.ValidationError
		unmapped []model.FeedTransaction
		entries  []runlog.Entry
	)
	if f.dryRun {
		unmapped = unmappedOptions(pending, mappings)
		entries = runEntries(runID, now, files, mappings, unmapped)
	} else {
		mappings, rejected, err = store.AppendValid(res.Mappings)
		if err != nil {
			return fmt.Errorf("saving mappings: %w", err)
		}
		unmapped = unmappedOptions(pending, mappings)
		entries = runEntries(runID, now, files, mappings, unmapped)
		for _, ve := range rejected {
			log.Warn("mapping held back", zap.String("txn_id", ve.TxnID), zap.Int("invariant", ve.Invariant), zap.String("detail", ve.Detail))
			entries = append(entries, runlog.Entry{
				Timestamp: now,
				RunID:     runID,
				Action:    runlog.ActionRejected,
				Details:   ve.Error(),
				TxnID:     ve.TxnID,
			})
		}
		entries = append(entries, runlog.Entry{
			Timestamp: now,
			RunID:     runID,
			Action:    runlog.ActionPersist,
			Details:   fmt.Sprintf("appended %d results to %s", len(mappings), store.Path()),
		})
		if err := runlog.Append(r.root, entries); err != nil {
			log.Warn("failed to write run log", zap.Error(err))
		}
		for _, hf := range files {
			if !hf.scanned {
				continue
			}
			if err := importer.MarkProcessed(r.root, hf.name); err != nil {
				return err
			}
		}
		commit = commitRun(r.root, runID, len(mappings), log)
	}

	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(mappings)
	}

	trades := make(map[string]bool)
	var opened, closed decimal.Decimal
	for _, m := range mappings {
		trades[m.TradeNum] = true
		if m.IsClosing {
			closed = closed.Add(m.Principal)
		} else {
			opened = opened.Add(m.Principal)
		}
	}
	fmt.Fprintf(out, "Run %s: %d spreads from %d file(s)\n", runID, len(spreads), len(files))
	fmt.Fprintf(out, "Matched %d legs across %d trades\n", len(mappings), len(trades))
	if len(rejected) > 0 {
		fmt.Fprintf(out, "%d results held back by validation (see %s)\n", len(rejected), runlog.Path(r.root))
	}
	if len(mappings) > 0 {
		fmt.Fprintf(out, "Principal: %s opened, %s closed\n", usd(opened), usd(closed))
	}
	if len(unmapped) > 0 {
		fmt.Fprintf(out, "%d transactions remain unmapped\n", len(unmapped))
	}
	if f.dryRun {
		fmt.Fprintln(out, "Dry run: nothing written")
	}
	if commit != "" {
		fmt.Fprintf(out, "Committed %s\n", commit)
	}
	return nil
}

// commitRun commits the run's changes when the repo is under git. Results are
// already on disk, so a failed commit is only logged.
func commitRun(root, runID string, results int, log *zap.Logger) string {
	if !gitops.IsRepo(root) {
		return ""
	}
	changed, err := gitops.HasChanges(root)
	if err != nil {
		log.Warn("git status failed", zap.Error(err))
		return ""
	}
	if !changed {
		return ""
	}
	hash, err := gitops.Commit(root, fmt.Sprintf("reconcile: %d results (run %s)", results, runID))
	if err != nil {
		log.Warn("git commit failed", zap.Error(err))
		return ""
	}
	return hash
}

func historyFiles(root, historyPath string) ([]historyFile, error) {
	if historyPath != "" {
		return []historyFile{{name: filepath.Base(historyPath), path: historyPath}}, nil
	}
	scanned, err := importer.Scan(root, ".txt")
	if err != nil {
		return nil, err
	}
	files := make([]historyFile, len(scanned))
	for i, s := range scanned {
		files[i] = historyFile{name: s.Name, path: s.Path, scanned: true}
	}
	return files, nil
}

func parseHistoryFile(p importer.Parser, path string) ([]model.Spread, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	spreads, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return spreads, nil
}

func readFeedFile(path, sel string) ([]model.FeedTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feed: %w", err)
	}
	defer f.Close()
	return importer.ReadFeedPath(f, sel)
}

// unmappedOptions returns the option transactions no kept result claims.
func unmappedOptions(txns []model.FeedTransaction, mappings []model.MappingResult) []model.FeedTransaction {
	consumed := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		consumed[m.TxnID] = true
	}
	var out []model.FeedTransaction
	for _, txn := range txns {
		if txn.ContractType() == "" || consumed[txn.ID] {
			continue
		}
		out = append(out, txn)
	}
	return out
}

func runEntries(runID string, now time.Time, files []historyFile, mappings []model.MappingResult, unmapped []model.FeedTransaction) []runlog.Entry {
	var entries []runlog.Entry
	for _, hf := range files {
		entries = append(entries, runlog.Entry{
			Timestamp: now,
			RunID:     runID,
			Action:    runlog.ActionParse,
			Details:   fmt.Sprintf("%s: %d spreads", hf.name, len(hf.spreads)),
		})
	}
	for _, m := range mappings {
		side := "open"
		if m.IsClosing {
			side = "close"
		}
		entries = append(entries, runlog.Entry{
			Timestamp: now,
			RunID:     runID,
			Action:    runlog.ActionMatch,
			Details:   fmt.Sprintf("%s %s %s coa %d: %s", side, m.Strategy, m.Confidence, m.COA, m.MatchedTo),
			TradeNum:  m.TradeNum,
			TxnID:     m.TxnID,
		})
	}
	for _, txn := range unmapped {
		entries = append(entries, runlog.Entry{
			Timestamp: now,
			RunID:     runID,
			Action:    runlog.ActionUnmapped,
			Details:   fmt.Sprintf("%s %s %s", txn.Date, txn.Underlying(), txn.Name),
			TxnID:     txn.ID,
		})
	}
	return entries
}
