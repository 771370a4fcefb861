// Package demographics holds the demographic categories a report is broken
// down by, the ordered sets of answers observed for each of them, and the
// display-order reconciliation that lines report columns up with the
// spreadsheet they get pasted into.
package demographics

import (
	"fmt"
	"strings"
)

// Type is a demographic category. The value doubles as the CFP export column
// name and the registration question text.
type Type string

const (
	Gender           Type = "gender"
	Age              Type = "age"
	Ethnicity        Type = "ethnicity"
	Education        Type = "education"
	EmploymentStatus Type = "employment status"
	MaritalStatus    Type = "marital status"
	HouseholdIncome  Type = "household income"
)

// NoResponse is the value recorded when an answer is blank.
const NoResponse = "no response"

// AllTypes lists every known category in report order.
var AllTypes = []Type{
	Gender,
	Age,
	Ethnicity,
	Education,
	EmploymentStatus,
	MaritalStatus,
	HouseholdIncome,
}

func (t Type) String() string {
	return string(t)
}

// Valid reports whether t is one of AllTypes.
func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Names returns the string form of types.
func Names(types []Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}

// NormalizeName canonicalises a category name typed by a user or found in a
// header: trimmed, lower-cased, underscores read as spaces.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.Join(strings.Fields(name), " ")
}

// ParseType resolves a single category name.
func ParseType(name string) (Type, error) {
	t := Type(NormalizeName(name))
	if !t.Valid() {
		return "", fmt.Errorf("unknown demographic type %q (possibilities: %s)",
			name, strings.Join(Names(AllTypes), ", "))
	}
	return t, nil
}

// ParseTypes resolves a list of category names, dropping duplicates while
// keeping the caller's order. An empty list selects AllTypes.
func ParseTypes(names []string) ([]Type, error) {
	var types []Type
	seen := make(map[Type]bool)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	if len(types) == 0 {
		return append([]Type(nil), AllTypes...), nil
	}
	return types, nil
}

// Contains reports whether t is in types.
func Contains(types []Type, t Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// NormalizeValue lower-cases and trims a raw answer. Blank answers become
// NoResponse.
func NormalizeValue(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return NoResponse
	}
	return value
}
