package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cleared-dev/tradematch/internal/model"
)

// Parser converts a brokerage history export into Spreads.
type Parser interface {
	Parse(r io.Reader) ([]model.Spread, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultFormat is the history format used when no broker is configured.
const DefaultFormat = "robinhood"

// Settings configures the built-in parsers. Zero windows keep each parser's
// defaults.
type Settings struct {
	Lookahead    int
	LegLookahead int
	Logger       *zap.Logger
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry(s Settings) *Registry {
	hp := NewHistoryParser(s.Logger)
	hp.Lookahead = s.Lookahead
	hp.LegLookahead = s.LegLookahead

	r := NewRegistry()
	r.Register(hp)
	return r
}

// importDir is the subdirectory for history exports.
const importDir = "import"

// processedDir is the subdirectory for reconciled exports.
const processedDir = "import/processed"

// Scan returns files with extension ext (e.g. ".txt") in <repoRoot>/import/.
func Scan(repoRoot, ext string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	ext = strings.ToLower(ext)
	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
