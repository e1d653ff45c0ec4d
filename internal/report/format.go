package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoData is rendered in place of undefined values.
const NoData = "no data"

// Tone classifies a figure for colouring.
type Tone string

const (
	ToneGood    Tone = "good"
	ToneBad     Tone = "bad"
	ToneNeutral Tone = "neutral"
)

// Formatter renders numbers with locale grouping.
type Formatter struct {
	printer    *message.Printer
	decimalSep string
}

// NewFormatter builds a formatter for a BCP-47 tag; unknown tags fall back to Russian.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Russian
	}
	printer := message.NewPrinter(tag)
	// "1<sep>5" yields the locale's decimal separator.
	sample := printer.Sprintf("%.1f", 1.5)
	return &Formatter{printer: printer, decimalSep: sample[1 : len(sample)-1]}
}

// Money renders a detail/summary amount with two decimals.
func (f *Formatter) Money(v decimal.NullDecimal) string {
	if !v.Valid {
		return NoData
	}
	return f.amount(v.Decimal, 2)
}

// MoneyCompact renders a list-row amount without decimals.
func (f *Formatter) MoneyCompact(v decimal.NullDecimal) string {
	if !v.Valid {
		return NoData
	}
	return f.amount(v.Decimal, 0)
}

// SignedMoney renders a variance amount with an explicit sign.
func (f *Formatter) SignedMoney(v decimal.NullDecimal) string {
	if !v.Valid {
		return NoData
	}
	return sign(v.Decimal.Round(2)) + f.amount(v.Decimal.Abs(), 2)
}

// Percent renders a percentage with one decimal.
func (f *Formatter) Percent(v decimal.NullDecimal) string {
	if !v.Valid {
		return NoData
	}
	return f.amount(v.Decimal, 1) + "%"
}

// SignedPercent renders a variance percentage with an explicit sign.
func (f *Formatter) SignedPercent(v decimal.NullDecimal) string {
	if !v.Valid {
		return NoData
	}
	return sign(v.Decimal.Round(1)) + f.amount(v.Decimal.Abs(), 1) + "%"
}

// Points renders a percentage-point difference with an explicit sign.
func (f *Formatter) Points(v decimal.NullDecimal) string {
	if !v.Valid {
		return NoData
	}
	return sign(v.Decimal.Round(1)) + f.amount(v.Decimal.Abs(), 1) + " pp"
}

// Date renders a calendar date, or NoData for nil.
func (f *Formatter) Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NoData
	}
	return t.Format("02.01.2006")
}

// Timestamp renders the generation footer time.
func (f *Formatter) Timestamp(t time.Time) string {
	return t.Format("02.01.2006 15:04 MST")
}

// amount groups the whole part through the locale printer and appends the
// fraction digits from the exact decimal string.
func (f *Formatter) amount(v decimal.Decimal, places int32) string {
	rounded := v.Round(places)
	prefix := ""
	if rounded.IsNegative() {
		prefix = "-"
		rounded = rounded.Neg()
	}
	out := prefix + f.printer.Sprintf("%d", rounded.IntPart())
	if places <= 0 {
		return out
	}
	fixed := rounded.StringFixed(places)
	return out + f.decimalSep + fixed[strings.IndexByte(fixed, '.')+1:]
}

func sign(v decimal.Decimal) string {
	switch v.Sign() {
	case 1:
		return "+"
	case -1:
		return "-"
	default:
		return ""
	}
}

// ToneOf colours a signed figure. positiveIsGood selects the direction:
// budget overspend is bad, revenue above plan is good.
func ToneOf(v decimal.NullDecimal, positiveIsGood bool) Tone {
	if !v.Valid || v.Decimal.IsZero() {
		return ToneNeutral
	}
	if v.Decimal.IsPositive() == positiveIsGood {
		return ToneGood
	}
	return ToneBad
}
