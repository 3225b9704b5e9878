package stackup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

var (
	// ErrNoSuchRecord is returned when an edit selector matches no record.
	ErrNoSuchRecord = errors.New("no such record")
	// ErrUnknownField is returned when an edit names a field records do not have.
	ErrUnknownField = errors.New("unknown field")
)

// Kind distinguishes layer records from material records.
type Kind int

const (
	// KindLayer selects layer records.
	KindLayer Kind = iota
	// KindMaterial selects material records.
	KindMaterial
)

// String returns the lower-case record kind.
func (k Kind) String() string {
	if k == KindMaterial {
		return "material"
	}
	return "layer"
}

// Edit assigns Value to Field of the record matched by Selector.
type Edit struct {
	// Selector is a zero-based record index or a record name.
	Selector string
	Field    string
	Value    string
}

// ParseEdit parses "<selector>.<Field>=<value>". The selector may contain dots;
// the last dot before "=" separates it from the field name.
func ParseEdit(expr string) (Edit, error) {
	lhs, value, ok := strings.Cut(expr, "=")
	if !ok {
		return Edit{}, fmt.Errorf("invalid edit %q, expected <selector>.<Field>=<value>", expr)
	}
	lhs = strings.TrimSpace(lhs)
	dot := strings.LastIndex(lhs, ".")
	if dot <= 0 || dot == len(lhs)-1 {
		return Edit{}, fmt.Errorf("invalid edit %q, expected <selector>.<Field>=<value>", expr)
	}
	return Edit{
		Selector: strings.TrimSpace(lhs[:dot]),
		Field:    strings.TrimSpace(lhs[dot+1:]),
		Value:    strings.TrimSpace(value),
	}, nil
}

// ParseEdits parses every expression, combining all failures.
func ParseEdits(exprs []string) ([]Edit, error) {
	var (
		edits []Edit
		errs  error
	)
	for _, expr := range exprs {
		e, err := ParseEdit(expr)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		edits = append(edits, e)
	}
	return edits, errs
}

// ApplyEdits sets record values in memory. Edits that cannot be applied are
// skipped and reported together; call Apply to merge the values into the tree.
func (s *Stackup) ApplyEdits(kind Kind, edits []Edit) error {
	var errs error
	for _, e := range edits {
		fields, label, err := s.selectRecord(kind, e.Selector)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		f, name, ok := lookupField(fields, e.Field)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%s %q: %w %q", kind, label, ErrUnknownField, e.Field))
			continue
		}
		if !f.Writable() {
			errs = multierr.Append(errs, &UnboundFieldError{Kind: kind.String(), Record: label, Field: name})
			continue
		}
		f.Value = e.Value
	}
	return errs
}

func (s *Stackup) selectRecord(kind Kind, selector string) ([]NamedField, string, error) {
	count := len(s.Layers)
	if kind == KindMaterial {
		count = len(s.Materials)
	}
	record := func(i int) ([]NamedField, string) {
		if kind == KindMaterial {
			return s.Materials[i].Fields(), s.Materials[i].label()
		}
		return s.Layers[i].Fields(), s.Layers[i].label()
	}

	if idx, err := strconv.Atoi(selector); err == nil {
		if idx < 0 || idx >= count {
			return nil, "", fmt.Errorf("%s index %d out of range (have %d): %w", kind, idx, count, ErrNoSuchRecord)
		}
		fields, label := record(idx)
		return fields, label, nil
	}
	for i := 0; i < count; i++ {
		fields, label := record(i)
		name, _, _ := lookupField(fields, FieldName)
		if name.Value == selector {
			return fields, label, nil
		}
	}
	return nil, "", fmt.Errorf("%s %q: %w", kind, selector, ErrNoSuchRecord)
}
