package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"

	"github.com/cleared-dev/tradematch/internal/model"
)

// feedEnvelope is the wrapped form some exports use.
type feedEnvelope struct {
	Transactions []model.FeedTransaction `json:"transactions"`
}

// ReadFeed decodes previously imported transactions from JSON. It accepts a
// bare array or an object with a "transactions" array.
func ReadFeed(r io.Reader) ([]model.FeedTransaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '{' {
		var env feedEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("parsing feed: %w", err)
		}
		return env.Transactions, nil
	}

	var txns []model.FeedTransaction
	if err := json.Unmarshal(data, &txns); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return txns, nil
}

// ReadFeedPath decodes the transactions selected by a JSONPath expression,
// for exports that nest them deeper than ReadFeed looks (e.g.
// "$.data.items"). An empty path behaves like ReadFeed.
func ReadFeedPath(r io.Reader, path string) ([]model.FeedTransaction, error) {
	if path == "" {
		return ReadFeed(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("feed path %q: %w", path, err)
	}
	list, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("feed path %q selects %T, want an array", path, val)
	}
	// Wildcards and recursive descent yield a list of arrays.
	var flat []any
	for _, v := range list {
		inner, ok := v.([]any)
		if !ok {
			flat = list
			break
		}
		flat = append(flat, inner...)
	}

	raw, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("re-encoding feed: %w", err)
	}
	var txns []model.FeedTransaction
	if err := json.Unmarshal(raw, &txns); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return txns, nil
}
