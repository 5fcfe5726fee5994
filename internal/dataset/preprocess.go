package dataset

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"pharmacli/internal/errors"
)

// MissingPolicy decides what happens to rows with cells that are absent or
// fail numeric coercion.
type MissingPolicy string

const (
	// MissingDrop removes the affected row from the dataset
	MissingDrop MissingPolicy = "drop"
	// MissingFlag keeps the row; every derived value depending on a missing
	// cell comes out undefined
	MissingFlag MissingPolicy = "flag"
)

// IsValid reports whether the policy is one of the recognized options
func (p MissingPolicy) IsValid() bool {
	return p == MissingDrop || p == MissingFlag
}

// Preprocessor coerces raw cells into typed company records according to a
// declared missing-value policy.
type Preprocessor struct {
	policy MissingPolicy
	logger *slog.Logger
}

// NewPreprocessor creates a preprocessor with the given missing-value policy
func NewPreprocessor(policy MissingPolicy, logger *slog.Logger) (*Preprocessor, error) {
	if !policy.IsValid() {
		return nil, errors.NewConfigError(fmt.Sprintf("unknown missing-value policy %q", policy), nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{policy: policy, logger: logger}, nil
}

// numericReplacer strips formatting characters that commonly wrap numbers in
// financial spreadsheets: thousands separators (ASCII and full-width),
// currency markers and stray spaces.
var numericReplacer = strings.NewReplacer(
	",", "",
	"，", "",
	"¥", "",
	"$", "",
	"€", "",
	"円", "",
	"　", "",
	" ", "",
	"%", "",
	"％", "",
)

// ParseNumeric coerces a raw cell to a float. The second return value is
// false for a blank cell (missing, not an error); a non-blank cell that still
// fails to parse returns an error.
func ParseNumeric(raw string) (float64, bool, error) {
	cleaned := numericReplacer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, false, nil
	}
	// Accounting notation: (123) means -123
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %q: %w", raw, err)
	}
	return f, true, nil
}

// Result carries the outcome of preprocessing: the typed records plus the
// full parse-failure report. Parse is nil when every cell coerced cleanly.
type Result struct {
	Records []CompanyRecord
	Parse   *errors.ParseError
	Dropped []string // codes removed under the drop policy
}

// Records converts a raw table into company records. Every cell that fails
// coercion is collected into one ParseError rather than aborting on the first
// bad row; under the drop policy the affected rows are removed, under the
// flag policy they stay with undefined fields. Duplicate security codes are a
// validation error because every downstream tie-break keys on the code.
func (p *Preprocessor) Records(t *RawTable) (*Result, error) {
	var bad []errors.BadCell
	var records []CompanyRecord
	rowHasBad := make(map[int]bool)

	for i := range t.Rows {
		code := strings.TrimSpace(t.Cell(i, ColCode))
		name := strings.TrimSpace(t.Cell(i, ColName))
		rec := CompanyRecord{Code: code, Name: name}

		for _, col := range NumericColumns {
			raw := t.Cell(i, col)
			f, ok, err := ParseNumeric(raw)
			if err != nil {
				bad = append(bad, errors.BadCell{
					Row:    t.HeaderRow + i + 2, // 1-based sheet row
					Code:   code,
					Column: string(col),
					Raw:    raw,
				})
				rowHasBad[i] = true
				rec.SetField(col, Undefined())
				continue
			}
			if !ok {
				rec.SetField(col, Undefined())
				continue
			}
			rec.SetField(col, Defined(f))
		}
		records = append(records, rec)
	}

	var result Result
	if len(bad) > 0 {
		result.Parse = errors.NewParseError(bad)
		p.logger.Warn("numeric coercion failures",
			"cells", len(bad),
			"rows", result.Parse.Rows(),
			"policy", string(p.policy),
		)
	}

	if p.policy == MissingDrop {
		kept := records[:0]
		for i, rec := range records {
			if rowHasBad[i] || rec.HasMissing() {
				result.Dropped = append(result.Dropped, rec.Code)
				continue
			}
			kept = append(kept, rec)
		}
		records = kept
		if len(result.Dropped) > 0 {
			p.logger.Info("dropped rows with missing or unparsable cells",
				"count", len(result.Dropped),
				"codes", result.Dropped,
			)
		}
	}

	if err := validateCodes(records); err != nil {
		return nil, err
	}

	result.Records = records
	return &result, nil
}

// validateCodes enforces the unique-identifier invariant
func validateCodes(records []CompanyRecord) error {
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.Code == "" {
			return errors.NewValidationError("company row without a security code").
				WithContext("name", rec.Name)
		}
		if seen[rec.Code] {
			return errors.NewValidationError(fmt.Sprintf("duplicate security code %s", rec.Code))
		}
		seen[rec.Code] = true
	}
	return nil
}

// NormalizePercent rescales a column expressed on a 0-1 scale to 0-100.
// Columns whose maximum defined value is already above 1 are left alone, so a
// sheet that stores ROA as 5.2 and one that stores it as 0.052 both come out
// on the percent scale.
func NormalizePercent(records []CompanyRecord, cols ...Column) []CompanyRecord {
	for _, col := range cols {
		maxVal, any := 0.0, false
		for _, rec := range records {
			v := rec.Field(col)
			if v.Defined {
				if !any || v.Float > maxVal {
					maxVal = v.Float
					any = true
				}
			}
		}
		if !any || maxVal > 1.0 || maxVal <= 0 {
			continue
		}
		for i := range records {
			records[i].SetField(col, records[i].Field(col).Scale(100))
		}
	}
	return records
}

// ValidateColumns checks the raw table for required columns, naming every
// missing column at once.
func ValidateColumns(t *RawTable, required []Column) error {
	var missing []Column
	for _, col := range required {
		if _, ok := t.Columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.NewSchemaError(columnNames(missing))
	}
	return nil
}
