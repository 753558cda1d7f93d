package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tradematch/internal/model"
)

// Header is the CSV header for mappings.csv.
const Header = "txn_id,trade_num,strategy,coa,confidence,is_closing,action,quantity,price,principal,fees,net_amount,matched_to"

const (
	numFields    = 13
	colTxnID     = 0
	colTradeNum  = 1
	colStrategy  = 2
	colCOA       = 3
	colConf      = 4
	colClosing   = 5
	colAction    = 6
	colQuantity  = 7
	colPrice     = 8
	colPrincipal = 9
	colFees      = 10
	colNet       = 11
	colMatchedTo = 12
)

// ReadResults reads all mapping results from a mappings.csv reader.
func ReadResults(r io.Reader) ([]model.MappingResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading mappings CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var results []model.MappingResult
	for i, rec := range records[1:] {
		res, err := UnmarshalResult(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// WriteResults writes results to a mappings.csv writer (including header).
func WriteResults(w io.Writer, results []model.MappingResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, res := range results {
		if err := cw.Write(MarshalResult(res)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendResults appends results to an existing mappings.csv writer (no header).
func AppendResults(w io.Writer, results []model.MappingResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, res := range results {
		if err := cw.Write(MarshalResult(res)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalResult converts a MappingResult to a CSV row.
func MarshalResult(res model.MappingResult) []string {
	row := make([]string, numFields)
	row[colTxnID] = res.TxnID
	row[colTradeNum] = res.TradeNum
	row[colStrategy] = string(res.Strategy)
	row[colCOA] = strconv.Itoa(res.COA)
	row[colConf] = string(res.Confidence)
	row[colClosing] = strconv.FormatBool(res.IsClosing)
	row[colAction] = string(res.Action)
	row[colQuantity] = strconv.FormatInt(res.Quantity, 10)
	row[colPrice] = res.Price.String()
	row[colPrincipal] = res.Principal.StringFixed(2)
	if !res.Fees.IsZero() {
		row[colFees] = res.Fees.StringFixed(2)
	}
	if !res.NetAmount.IsZero() {
		row[colNet] = res.NetAmount.StringFixed(2)
	}
	row[colMatchedTo] = res.MatchedTo
	return row
}

// UnmarshalResult converts a CSV row to a MappingResult.
func UnmarshalResult(record []string) (model.MappingResult, error) {
	if len(record) != numFields {
		return model.MappingResult{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	coa, err := strconv.Atoi(record[colCOA])
	if err != nil {
		return model.MappingResult{}, fmt.Errorf("parsing coa %q: %w", record[colCOA], err)
	}

	closing, err := strconv.ParseBool(record[colClosing])
	if err != nil {
		return model.MappingResult{}, fmt.Errorf("parsing is_closing %q: %w", record[colClosing], err)
	}

	qty, err := strconv.ParseInt(record[colQuantity], 10, 64)
	if err != nil {
		return model.MappingResult{}, fmt.Errorf("parsing quantity %q: %w", record[colQuantity], err)
	}

	amounts := make([]decimal.Decimal, 4)
	for i, col := range []int{colPrice, colPrincipal, colFees, colNet} {
		if record[col] == "" {
			continue
		}
		amounts[i], err = decimal.NewFromString(record[col])
		if err != nil {
			return model.MappingResult{}, fmt.Errorf("parsing %s %q: %w", headerName(col), record[col], err)
		}
	}

	return model.MappingResult{
		TxnID:      record[colTxnID],
		TradeNum:   record[colTradeNum],
		Strategy:   model.Strategy(record[colStrategy]),
		COA:        coa,
		Confidence: model.Confidence(record[colConf]),
		MatchedTo:  record[colMatchedTo],
		Quantity:   qty,
		Price:      amounts[0],
		Principal:  amounts[1],
		Fees:       amounts[2],
		NetAmount:  amounts[3],
		Action:     model.Action(record[colAction]),
		IsClosing:  closing,
	}, nil
}

func headerName(col int) string {
	return strings.Split(Header, ",")[col]
}
