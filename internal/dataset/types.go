package dataset

import (
	"fmt"
	"math"
)

// Column is the canonical name of an input column after header normalization.
type Column string

const (
	ColCode            Column = "code"
	ColName            Column = "name"
	ColRevenue         Column = "revenue"
	ColOperatingIncome Column = "operating_income"
	ColNetIncome       Column = "net_income"
	ColTotalAssets     Column = "total_assets"
	ColEquity          Column = "equity"
	ColROA             Column = "roa"
	ColROE             Column = "roe"
)

// RequiredColumns lists every column the loader must find in the input sheet.
var RequiredColumns = []Column{
	ColCode,
	ColName,
	ColRevenue,
	ColOperatingIncome,
	ColNetIncome,
	ColTotalAssets,
	ColEquity,
	ColROA,
	ColROE,
}

// NumericColumns lists the columns subject to numeric coercion.
var NumericColumns = []Column{
	ColRevenue,
	ColOperatingIncome,
	ColNetIncome,
	ColTotalAssets,
	ColEquity,
	ColROA,
	ColROE,
}

// Value is an explicit undefined marker for numeric results. A ratio whose
// denominator is zero, or a raw field that is missing from the input, carries
// Defined=false and must never be coerced to 0 or dropped from summaries
// without being counted.
type Value struct {
	Float   float64
	Defined bool
}

// Defined wraps a concrete float in a defined Value
func Defined(f float64) Value {
	return Value{Float: f, Defined: true}
}

// Undefined returns the undefined marker
func Undefined() Value {
	return Value{}
}

// IsValid reports whether a defined value is finite. Undefined values are
// valid by definition; NaN or Inf never are.
func (v Value) IsValid() bool {
	if !v.Defined {
		return true
	}
	return !math.IsNaN(v.Float) && !math.IsInf(v.Float, 0)
}

// Sub subtracts o from v, propagating undefined
func (v Value) Sub(o Value) Value {
	if !v.Defined || !o.Defined {
		return Undefined()
	}
	return Defined(v.Float - o.Float)
}

// Div divides v by o, yielding undefined for an undefined operand or a zero
// denominator rather than a silent zero or infinity.
func (v Value) Div(o Value) Value {
	if !v.Defined || !o.Defined || o.Float == 0 {
		return Undefined()
	}
	return Defined(v.Float / o.Float)
}

// Scale multiplies a defined value by f, propagating undefined
func (v Value) Scale(f float64) Value {
	if !v.Defined {
		return Undefined()
	}
	return Defined(v.Float * f)
}

// String renders the value for logs and reports, using "n/a" for undefined
func (v Value) String() string {
	if !v.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.Float)
}

// CompanyRecord is one row of the input table: a single company's financial
// figures for the fiscal year. Numeric fields carry the undefined marker so a
// missing cell survives preprocessing under the "flag" policy.
type CompanyRecord struct {
	Code            string // security code, unique across the dataset
	Name            string
	Revenue         Value
	OperatingIncome Value // may be negative (operating loss)
	NetIncome       Value // may be negative (net loss)
	TotalAssets     Value
	Equity          Value
	ROA             Value // percent scale after preprocessing
	ROE             Value // percent scale after preprocessing
}

// Field returns the named numeric field of the record
func (r CompanyRecord) Field(col Column) Value {
	switch col {
	case ColRevenue:
		return r.Revenue
	case ColOperatingIncome:
		return r.OperatingIncome
	case ColNetIncome:
		return r.NetIncome
	case ColTotalAssets:
		return r.TotalAssets
	case ColEquity:
		return r.Equity
	case ColROA:
		return r.ROA
	case ColROE:
		return r.ROE
	default:
		return Undefined()
	}
}

// SetField assigns the named numeric field of the record
func (r *CompanyRecord) SetField(col Column, v Value) {
	switch col {
	case ColRevenue:
		r.Revenue = v
	case ColOperatingIncome:
		r.OperatingIncome = v
	case ColNetIncome:
		r.NetIncome = v
	case ColTotalAssets:
		r.TotalAssets = v
	case ColEquity:
		r.Equity = v
	case ColROA:
		r.ROA = v
	case ColROE:
		r.ROE = v
	}
}

// HasMissing reports whether any numeric field is undefined
func (r CompanyRecord) HasMissing() bool {
	for _, col := range NumericColumns {
		if !r.Field(col).Defined {
			return true
		}
	}
	return false
}

// RawTable holds the sheet contents after header resolution but before
// numeric coercion. Rows are raw cell strings aligned to the sheet; Columns
// maps each canonical column to its index within a row.
type RawTable struct {
	Source    string
	Sheet     string
	Columns   map[Column]int
	Rows      [][]string
	HeaderRow int // 0-based index of the header row within the sheet
}

// Cell returns the raw cell for the given data row and canonical column.
// Short rows read as empty cells.
func (t *RawTable) Cell(row int, col Column) string {
	idx, ok := t.Columns[col]
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	cells := t.Rows[row]
	if idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
