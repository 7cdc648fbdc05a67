package divefilter

import (
	"strings"

	"divelog/internal/models"
)

type ConstraintField int

const (
	FieldDate ConstraintField = iota
	FieldMaxDepth
	FieldDuration
	FieldWaterTemp
	FieldSAC
	FieldDiveMode
	FieldBuddy
	FieldDiveMaster
	FieldSuit
	FieldTags
	FieldNotes
)

type ConstraintOp int

const (
	// numeric
	OpEqual ConstraintOp = iota
	OpLess
	OpGreater
	OpRange
	// string
	OpStartsWith
	OpSubstring
	OpExact
)

// Constraint compares one dive field against one or more literals. Numeric
// fields use From/To in native units (mm, seconds, mK, mliter/min, unix
// seconds); string fields match when any literal matches.
type Constraint struct {
	Field   ConstraintField `json:"field"`
	Op      ConstraintOp    `json:"op"`
	Strings []string        `json:"strings,omitempty"`
	From    int64           `json:"from,omitempty"`
	To      int64           `json:"to,omitempty"`
}

func (c Constraint) isStringOp() bool {
	return c.Op >= OpStartsWith
}

func (c Constraint) equals(o Constraint) bool {
	if c.Field != o.Field || c.Op != o.Op || c.From != o.From || c.To != o.To {
		return false
	}
	if len(c.Strings) != len(o.Strings) {
		return false
	}
	for i := range c.Strings {
		if c.Strings[i] != o.Strings[i] {
			return false
		}
	}
	return true
}

func (c Constraint) numericValue(d *models.Dive) (int64, bool) {
	switch c.Field {
	case FieldDate:
		return int64(d.When), true
	case FieldMaxDepth:
		return int64(d.MaxDepth), true
	case FieldDuration:
		return int64(d.Duration), true
	case FieldWaterTemp:
		return int64(d.WaterTemp), d.WaterTemp != 0
	case FieldSAC:
		return int64(d.SAC), d.SAC > 0
	case FieldDiveMode:
		return int64(d.DC.DiveMode), true
	default:
		return 0, false
	}
}

func (c Constraint) stringValues(d *models.Dive) []string {
	switch c.Field {
	case FieldBuddy:
		return splitPeople(d.Buddy)
	case FieldDiveMaster:
		return splitPeople(d.DiveMaster)
	case FieldSuit:
		return []string{d.Suit}
	case FieldTags:
		return d.Tags
	case FieldNotes:
		return []string{d.Notes}
	default:
		return nil
	}
}

func splitPeople(s string) []string {
	parts := strings.Split(s, ",")
	res := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			res = append(res, t)
		}
	}
	return res
}

func stringMatches(value, literal string, op ConstraintOp) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	literal = strings.ToLower(strings.TrimSpace(literal))
	switch op {
	case OpStartsWith:
		return strings.HasPrefix(value, literal)
	case OpExact:
		return value == literal
	default:
		return strings.Contains(value, literal)
	}
}

// MatchesDive evaluates the constraint against one dive. A constraint on a
// field with no data never matches.
func (c Constraint) MatchesDive(d *models.Dive) bool {
	if d == nil {
		return false
	}
	if c.isStringOp() {
		for _, value := range c.stringValues(d) {
			for _, literal := range c.Strings {
				if stringMatches(value, literal, c.Op) {
					return true
				}
			}
		}
		return false
	}
	v, ok := c.numericValue(d)
	if !ok {
		return false
	}
	switch c.Op {
	case OpEqual:
		return v == c.From
	case OpLess:
		return v < c.From
	case OpGreater:
		return v > c.From
	case OpRange:
		return v >= c.From && v <= c.To
	default:
		return false
	}
}
