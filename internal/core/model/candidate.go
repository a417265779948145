package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidCandidate is returned when an extracted value fails the validity
// predicate of its field. Callers drop such values before clustering.
var ErrInvalidCandidate = errors.New("invalid candidate")

type FieldType string

const (
	FieldName           FieldType = "name"
	FieldContactAddress FieldType = "contact_address"
	FieldOrganization   FieldType = "organization"
	FieldPosition       FieldType = "position"
)

// Fields lists every resolvable field in profile order.
var Fields = []FieldType{FieldName, FieldContactAddress, FieldOrganization, FieldPosition}

func (f FieldType) Valid() bool {
	switch f {
	case FieldName, FieldContactAddress, FieldOrganization, FieldPosition:
		return true
	}
	return false
}

type SourceType string

const (
	SourceTitle   SourceType = "title"
	SourceMeta    SourceType = "meta"
	SourceH1      SourceType = "h1"
	SourceJSONLD  SourceType = "json_ld"
	SourceContent SourceType = "content"
)

// HighTrust reports whether values from this source type earn the quality bonus.
func (s SourceType) HighTrust() bool {
	return s == SourceTitle || s == SourceMeta || s == SourceJSONLD
}

// RawExtraction is one value handed over by the upstream extraction pipeline.
type RawExtraction struct {
	Value      string     `json:"value"`
	FieldType  FieldType  `json:"field_type"`
	SourceURL  string     `json:"source_url"`
	SourceType SourceType `json:"source_type"`
	Context    string     `json:"context,omitempty"`
}

// ConfidenceComponents are the four sub-scores of a value's confidence.
type ConfidenceComponents struct {
	Source      float64 `json:"source"`
	Context     float64 `json:"context"`
	Validation  float64 `json:"validation"`
	Consistency float64 `json:"consistency"`
}

// Overall is the weighted sum 0.3·source + 0.25·context + 0.25·validation + 0.2·consistency.
func (c ConfidenceComponents) Overall() float64 {
	return Clamp01(0.3*c.Source + 0.25*c.Context + 0.25*c.Validation + 0.2*c.Consistency)
}

// Clamped returns a copy with every component in [0,1].
func (c ConfidenceComponents) Clamped() ConfidenceComponents {
	return ConfidenceComponents{
		Source:      Clamp01(c.Source),
		Context:     Clamp01(c.Context),
		Validation:  Clamp01(c.Validation),
		Consistency: Clamp01(c.Consistency),
	}
}

// Uniform spreads a single confidence over all components.
func Uniform(v float64) ConfidenceComponents {
	return ConfidenceComponents{Source: v, Context: v, Validation: v, Consistency: v}.Clamped()
}

// CandidateValue is one source-attributed value for one field. It is immutable
// once built by NewCandidateValue.
type CandidateValue struct {
	value      string
	field      FieldType
	sourceID   string
	sourceType SourceType
	context    string
	components ConfidenceComponents
}

// NewCandidateValue validates value against the field predicate and returns
// ErrInvalidCandidate when it does not pass.
func NewCandidateValue(field FieldType, value, sourceID string, sourceType SourceType, components ConfidenceComponents) (CandidateValue, error) {
	if !field.Valid() {
		return CandidateValue{}, fmt.Errorf("%w: unknown field type %q", ErrInvalidCandidate, field)
	}
	value = strings.TrimSpace(value)
	if err := validate(field, value); err != nil {
		return CandidateValue{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidCandidate, field, value, err)
	}
	if sourceType == "" {
		sourceType = SourceContent
	}
	return CandidateValue{
		value:      value,
		field:      field,
		sourceID:   sourceID,
		sourceType: sourceType,
		components: components.Clamped(),
	}, nil
}

// WithContext returns a copy carrying the surrounding text snippet.
func (c CandidateValue) WithContext(ctx string) CandidateValue {
	c.context = ctx
	return c
}

func (c CandidateValue) Value() string                    { return c.value }
func (c CandidateValue) Field() FieldType                 { return c.field }
func (c CandidateValue) SourceID() string                 { return c.sourceID }
func (c CandidateValue) SourceType() SourceType           { return c.sourceType }
func (c CandidateValue) Context() string                  { return c.context }
func (c CandidateValue) Components() ConfidenceComponents { return c.components }
func (c CandidateValue) Confidence() float64              { return c.components.Overall() }

var (
	letterRe       = regexp.MustCompile(`\p{L}`)
	addressRe      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	leadingDigitRe = regexp.MustCompile(`^\d`)
	nameJunkRe     = regexp.MustCompile(`[<>{}\[\]()"']`)
	nameServiceRe  = regexp.MustCompile(`(?i)(abstract|keywords|copyright|download|pdf)`)
)

func validate(field FieldType, v string) error {
	n := utf8.RuneCountInString(v)
	switch field {
	case FieldName:
		if n < 3 || n > 100 {
			return errors.New("length out of range")
		}
		if !letterRe.MatchString(v) {
			return errors.New("no letters")
		}
		if leadingDigitRe.MatchString(v) || nameJunkRe.MatchString(v) || nameServiceRe.MatchString(v) {
			return errors.New("not a personal name")
		}
	case FieldContactAddress:
		if !addressRe.MatchString(v) {
			return errors.New("malformed address")
		}
	case FieldOrganization:
		if n < 5 || n > 200 {
			return errors.New("length out of range")
		}
		if !letterRe.MatchString(v) {
			return errors.New("no letters")
		}
	case FieldPosition:
		if n < 3 || n > 100 {
			return errors.New("length out of range")
		}
		if !letterRe.MatchString(v) {
			return errors.New("no letters")
		}
	}
	return nil
}

// HasCyrillic reports whether s contains at least one Cyrillic letter.
func HasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

// Clamp01 bounds v to [0,1]; NaN maps to 0.
func Clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
