package mapping

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cleared-dev/tradematch/internal/id"
	"github.com/cleared-dev/tradematch/internal/model"
)

// Store persists mapping results to mappings/mappings.csv under a repo root.
type Store struct {
	repoRoot string
	accounts AccountChecker
}

// NewStore creates a Store. accounts may be nil to skip account checks.
func NewStore(repoRoot string, accounts AccountChecker) *Store {
	return &Store{repoRoot: repoRoot, accounts: accounts}
}

// Path returns the mappings file location.
func (s *Store) Path() string {
	return filepath.Join(s.repoRoot, "mappings", "mappings.csv")
}

// ReadAll reads every persisted result. A missing file is not an error.
func (s *Store) ReadAll() ([]model.MappingResult, error) {
	path := s.Path()
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening mappings %s: %w", path, err)
	}
	defer f.Close()

	results, err := ReadResults(f)
	if err != nil {
		return nil, fmt.Errorf("reading mappings %s: %w", path, err)
	}
	return results, nil
}

// Append validates new results together with the persisted ones and appends
// them. Nothing is written when validation fails.
func (s *Store) Append(results []model.MappingResult) error {
	if len(results) == 0 {
		return nil
	}

	existing, err := s.ReadAll()
	if err != nil {
		return err
	}

	all := append(existing, results...)
	if verrs := Validate(all, s.accounts); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating mappings dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening mappings: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendResults(f, results); err != nil {
		return fmt.Errorf("appending results: %w", err)
	}
	return nil
}

// AppendValid appends the results that validate and holds back the rest. A
// trade with any invalid result is held back whole, so a run never loses its
// good trades to one bad one. The error is reserved for I/O failures and an
// already invalid mappings file; in both cases nothing is written.
func (s *Store) AppendValid(results []model.MappingResult) (saved []model.MappingResult, rejected []ValidationError, err error) {
	existing, err := s.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if verrs := Validate(existing, s.accounts); len(verrs) > 0 {
		return nil, nil, fmt.Errorf("mappings %s: %w", s.Path(), verrs[0])
	}

	saved = results
	for {
		verrs := Validate(append(slices.Clone(existing), saved...), s.accounts)
		if len(verrs) == 0 {
			break
		}
		bad := badTrades(verrs, saved)
		if len(bad) == 0 {
			return nil, nil, fmt.Errorf("validation failed: %w", verrs[0])
		}
		rejected = append(rejected, verrs...)
		saved = slices.DeleteFunc(slices.Clone(saved), func(r model.MappingResult) bool {
			return bad[r.TradeNum]
		})
	}

	if err := s.Append(saved); err != nil {
		return nil, nil, err
	}
	return saved, rejected, nil
}

// badTrades returns the trade numbers of the results named by verrs.
func badTrades(verrs []ValidationError, results []model.MappingResult) map[string]bool {
	txns := make(map[string]bool, len(verrs))
	for _, ve := range verrs {
		txns[ve.TxnID] = true
	}
	bad := make(map[string]bool)
	for _, r := range results {
		if txns[r.TxnID] {
			bad[r.TradeNum] = true
		}
	}
	return bad
}

// NextTradeNum returns the counter value that continues numbering after the
// persisted results.
func (s *Store) NextTradeNum() (int, error) {
	results, err := s.ReadAll()
	if err != nil {
		return 0, err
	}
	nums := make([]string, len(results))
	for i, r := range results {
		nums[i] = r.TradeNum
	}
	return id.NextTradeNum(nums), nil
}

// MappedIDs returns the set of feed transaction ids already persisted.
func (s *Store) MappedIDs() (map[string]bool, error) {
	results, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(results))
	for _, r := range results {
		ids[r.TxnID] = true
	}
	return ids, nil
}
