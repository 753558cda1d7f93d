package importer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokSpreadHeader
	tokLeg
	tokPositionEffect
	tokContracts
	tokFillTime
	tokFeesLabel
	tokCostLabel
	tokLimitLabel
	tokConfirmation
	tokPager
)

// token is one classified history line. Only the fields relevant to its
// kind are populated; Text always holds the trimmed line.
type token struct {
	kind tokenKind
	text string

	symbol   string
	strategy string

	action  string
	strike  string
	optType string
	expiry  string

	quantity string
	price    string

	date  string
	clock string
}

const sym = `([A-Z][A-Z0-9.]{0,9})`

var (
	spreadHeaderRe = regexp.MustCompile(`^` + sym + `\s+(.*?(?:Credit Spread|Debit Spread|Iron Condor|Long Call|Long Put|Short Call|Short Put|2-Option Order))$`)
	legRe          = regexp.MustCompile(`^(?i:(Buy|Sell))\s+` + sym + `\s+\$([\d,]+(?:\.\d+)?)\s+(?i:(Call|Put))\s+(\d{1,2}/\d{1,2}(?:/\d{2,4})?)`)
	contractsRe    = regexp.MustCompile(`(?i)^([\d,]+(?:\.\d+)?)\s+contracts?\s+at\s+\$([\d,]+(?:\.\d+)?)`)
	fillTimeRe     = regexp.MustCompile(`^(\d{1,2}/\d{1,2}(?:/\d{2,4})?),\s*(\d{1,2}:\d{2}\s*[AaPp][Mm])`)
)

// tokenize splits text into trimmed, non-empty lines and classifies each.
func tokenize(text string) []token {
	var toks []token
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		toks = append(toks, classify(line))
	}
	return toks
}

func classify(line string) token {
	t := token{kind: tokText, text: line}
	lower := strings.ToLower(line)

	if m := legRe.FindStringSubmatch(line); m != nil {
		t.kind = tokLeg
		t.action = strings.ToLower(m[1])
		t.symbol = m[2]
		t.strike = m[3]
		t.optType = strings.ToLower(m[4])
		t.expiry = m[5]
		return t
	}
	if m := spreadHeaderRe.FindStringSubmatch(line); m != nil {
		t.kind = tokSpreadHeader
		t.symbol = m[1]
		t.strategy = strings.TrimSpace(m[2])
		return t
	}
	if m := contractsRe.FindStringSubmatch(line); m != nil {
		t.kind = tokContracts
		t.quantity = m[1]
		t.price = m[2]
		return t
	}
	if m := fillTimeRe.FindStringSubmatch(line); m != nil {
		t.kind = tokFillTime
		t.date = m[1]
		t.clock = m[2]
		return t
	}

	switch {
	case lower == "position effect":
		t.kind = tokPositionEffect
	case lower == "limit price":
		t.kind = tokLimitLabel
	case strings.HasPrefix(lower, "est regulatory fees"):
		t.kind = tokFeesLabel
	case strings.HasPrefix(lower, "est cost"), strings.HasPrefix(lower, "est credit"):
		t.kind = tokCostLabel
	case strings.Contains(lower, "download trade confirmation"):
		t.kind = tokConfirmation
	case lower == "older" || lower == "recent":
		t.kind = tokPager
	}
	return t
}

// endsBlock reports whether k terminates a spread block or a leg's detail scan.
func (k tokenKind) endsBlock() bool {
	return k == tokSpreadHeader || k == tokConfirmation || k == tokPager
}

// parseMoney reads "$1,234.56", "-$0.04", "+$3.00" or "($0.04)".
func parseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "+")
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

func parseNumber(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
