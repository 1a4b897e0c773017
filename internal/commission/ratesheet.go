package commission

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RateSheet is the YAML document operators use to publish commission rates:
//
//	rates:
//	  - instrument: VISA
//	    percentage: "1.75"
//	    fixed: 10
//	    effective_from: 2026-09-01
type RateSheet struct {
	Rates []RateSheetEntry `yaml:"rates"`
}

type RateSheetEntry struct {
	Instrument    string          `yaml:"instrument"`
	Percentage    decimal.Decimal `yaml:"-"`
	RawPercentage string          `yaml:"percentage"`
	Fixed         int64           `yaml:"fixed"`
	EffectiveFrom time.Time       `yaml:"-"`
	RawFrom       string          `yaml:"effective_from"`
	EffectiveTo   *time.Time      `yaml:"-"`
	RawTo         string          `yaml:"effective_to"`
}

const sheetDateLayout = "2006-01-02"

func ParseRateSheet(r io.Reader) (*RateSheet, error) {
	var sheet RateSheet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sheet); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ParseRateSheet: empty document")
		}
		return nil, fmt.Errorf("ParseRateSheet: %w", err)
	}
	if len(sheet.Rates) == 0 {
		return nil, fmt.Errorf("ParseRateSheet: no rates")
	}

	for i := range sheet.Rates {
		if err := sheet.Rates[i].resolve(); err != nil {
			return nil, fmt.Errorf("ParseRateSheet: rate %d: %w", i+1, err)
		}
	}
	return &sheet, nil
}

func (e *RateSheetEntry) resolve() error {
	if e.Instrument == "" {
		return fmt.Errorf("instrument is required")
	}

	pct, err := decimal.NewFromString(e.RawPercentage)
	if err != nil {
		return fmt.Errorf("percentage %q: %w", e.RawPercentage, err)
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("percentage %s out of range", pct)
	}
	if e.Fixed < 0 {
		return fmt.Errorf("fixed must not be negative")
	}
	e.Percentage = pct

	from, err := time.Parse(sheetDateLayout, e.RawFrom)
	if err != nil {
		return fmt.Errorf("effective_from %q: %w", e.RawFrom, err)
	}
	e.EffectiveFrom = from

	if e.RawTo != "" {
		to, err := time.Parse(sheetDateLayout, e.RawTo)
		if err != nil {
			return fmt.Errorf("effective_to %q: %w", e.RawTo, err)
		}
		if !to.After(from) {
			return fmt.Errorf("effective_to must be after effective_from")
		}
		e.EffectiveTo = &to
	}
	return nil
}
