// Package filter composes optional query-string predicates into one
// parameterized WHERE fragment. A parameter that is absent adds nothing.
package filter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Builder accumulates predicates joined with AND. Column names come from
// code, values only ever travel as bind arguments.
type Builder struct {
	clauses []string
	args    []any
	errs    []error
}

func New() *Builder { return &Builder{} }

func (b *Builder) add(clause string, args ...any) *Builder {
	b.clauses = append(b.clauses, clause)
	b.args = append(b.args, args...)
	return b
}

// Equal adds column = value for a non-empty string value.
func (b *Builder) Equal(column, value string) *Builder {
	if value == "" {
		return b
	}
	return b.add(column+" = ?", value)
}

// Contains adds a case-insensitive substring match.
func (b *Builder) Contains(column, value string) *Builder {
	if value == "" {
		return b
	}
	return b.add(column+` ILIKE ?`, "%"+escapeLike(value)+"%")
}

// Int adds column = n when raw parses as an integer.
func (b *Builder) Int(column, raw string) *Builder {
	if raw == "" {
		return b
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("%s must be an integer", column))
		return b
	}
	return b.add(column+" = ?", n)
}

// Bool adds column = v for "true"/"false"/"1"/"0".
func (b *Builder) Bool(column, raw string) *Builder {
	if raw == "" {
		return b
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("%s must be true or false", column))
		return b
	}
	return b.add(column+" = ?", v)
}

// Box is a latitude/longitude bounding box in raw query form.
type Box struct {
	MinLat, MaxLat, MinLon, MaxLon string
}

func (bx Box) empty() bool {
	return bx.MinLat == "" && bx.MaxLat == "" && bx.MinLon == "" && bx.MaxLon == ""
}

// Within restricts a PostGIS geography column to points inside the box,
// edges included. All four bounds must be given together.
func (b *Builder) Within(column string, box Box) *Builder {
	if box.empty() {
		return b
	}
	if box.MinLat == "" || box.MaxLat == "" || box.MinLon == "" || box.MaxLon == "" {
		b.errs = append(b.errs, errors.New("minLat, maxLat, minLon and maxLon must be given together"))
		return b
	}
	var v [4]float64
	for i, raw := range []string{box.MinLat, box.MaxLat, box.MinLon, box.MaxLon} {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			b.errs = append(b.errs, fmt.Errorf("bounding box value %q is not a number", raw))
			return b
		}
		v[i] = f
	}
	minLat, maxLat, minLon, maxLon := v[0], v[1], v[2], v[3]
	switch {
	case minLat > maxLat || minLon > maxLon:
		b.errs = append(b.errs, errors.New("bounding box minimum exceeds maximum"))
		return b
	case minLat < -90 || maxLat > 90 || minLon < -180 || maxLon > 180:
		b.errs = append(b.errs, errors.New("bounding box out of range"))
		return b
	}
	return b.add(
		"ST_Covers(ST_MakeEnvelope(?, ?, ?, ?, 4326), "+column+"::geometry)",
		minLon, minLat, maxLon, maxLat,
	)
}

// Build returns the combined fragment and its arguments. An empty fragment
// means no constraint.
func (b *Builder) Build() (string, []any, error) {
	if err := errors.Join(b.errs...); err != nil {
		return "", nil, err
	}
	if len(b.clauses) == 0 {
		return "", nil, nil
	}
	return "(" + strings.Join(b.clauses, ") AND (") + ")", b.args, nil
}

// Apply adds the fragment to q.
func (b *Builder) Apply(q *gorm.DB) (*gorm.DB, error) {
	where, args, err := b.Build()
	if err != nil {
		return nil, err
	}
	if where == "" {
		return q, nil
	}
	return q.Where(where, args...), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
