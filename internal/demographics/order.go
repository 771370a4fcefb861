package demographics

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Preferences maps a category to the order its answers should be displayed
// in. It only affects ordering: answers missing from a list are still
// reported, after the listed ones.
type Preferences map[Type][]string

// order makes it easier to paste into the spreadsheet
var defaultPreferences = Preferences{
	Age: {
		"under 18",
		"18-24",
		"25-34",
		"35-44",
		"45-54",
		"55+",
		"prefer not to say",
		NoResponse,
	},
	Education: {
		"some high school",
		"high school or equivalent",
		"trade school",
		"bachelor's degree",
		"master's degree",
		"doctorate (e.g. phd, edd, md)",
		"other",
		"prefer not to say",
		NoResponse,
	},
	// not every answer shows up every year, list them all so the columns line up
	Ethnicity: {
		"asian",
		"black / african american",
		"latino / hispanic",
		"native american / american indian",
		"native hawaiian or pacific islander",
		"other/unknown",
		"prefer not to say",
		"two or more",
		"white / caucasian",
		NoResponse,
	},
	Gender: {
		"male",
		"female",
		"other",
		NoResponse,
		"prefer not to say",
		"non-binary",
	},
	HouseholdIncome: {
		"below $10k / year",
		"$10k-$50k / year",
		"$50k-$100k / year",
		"$100k-$200k / year",
		"$200k-$500k / year",
		"more than $500k / year",
		"prefer not to say",
		NoResponse,
	},
}

// DefaultPreferences returns a copy of the built-in order table.
func DefaultPreferences() Preferences {
	return defaultPreferences.Clone()
}

// Clone returns a deep copy of p.
func (p Preferences) Clone() Preferences {
	out := make(Preferences, len(p))
	for t, values := range p {
		out[t] = append([]string(nil), values...)
	}
	return out
}

// With returns a copy of p where every entry in overrides replaces the
// built-in order for its category. Override values are normalised and
// de-duplicated.
func (p Preferences) With(overrides map[Type][]string) Preferences {
	out := p.Clone()
	for t, values := range overrides {
		set := &ValueSet{}
		for _, v := range values {
			set.Add(NormalizeValue(v))
		}
		out[t] = set.Values()
	}
	return out
}

// ForRegistration rewrites the age buckets into the labels the registration
// system uses for the same ranges: "55+" becomes "55 and up" and "18-24"
// becomes "18 to 24".
func (p Preferences) ForRegistration() Preferences {
	out := p.Clone()
	if ages, ok := out[Age]; ok {
		for i, label := range ages {
			ages[i] = RegistrationAgeLabel(label)
		}
	}
	return out
}

// RegistrationAgeLabel converts a CFP age bucket label to its registration
// equivalent.
func RegistrationAgeLabel(label string) string {
	if label == "55+" {
		return "55 and up"
	}
	return strings.ReplaceAll(label, "-", " to ")
}

// Reconciliation is the display order chosen for one category along with
// the mismatches found between the observed answers and the preferred order.
type Reconciliation struct {
	Type   Type
	Fields []string
	// Extra holds observed answers the preferred order does not list.
	Extra []string
	// Missing holds preferred answers nobody gave.
	Missing []string
}

// Reconcile picks the display order for the answers observed for t.
//
// With a preferred order the result is that order followed by any extra
// answers in the order they were first seen. Without one the answers are
// sorted, with NoResponse moved to the end. Mismatches are logged as
// warnings; Reconcile never fails.
func (p Preferences) Reconcile(t Type, possible *ValueSet) Reconciliation {
	observed := possible.Values()
	preferred, ok := p[t]
	if !ok {
		return Reconciliation{Type: t, Fields: sortedWithNoResponseLast(observed)}
	}

	log.Debug().
		Str("type", t.String()).
		Strs("possible", observed).
		Strs("preferred", preferred).
		Msg("Reconciling field order")

	prefSet := NewValueSet(preferred...)
	var extra, missing []string
	for _, v := range observed {
		if !prefSet.Has(v) {
			extra = append(extra, v)
		}
	}
	for _, v := range prefSet.Values() {
		if !possible.Has(v) {
			missing = append(missing, v)
		}
	}

	if len(extra) > 0 {
		log.Warn().
			Str("type", t.String()).
			Strs("values", extra).
			Msg("Preferred field order is missing values")
	}
	if missingIsNotable(missing) {
		log.Warn().
			Str("type", t.String()).
			Strs("values", missing).
			Msg("Did not see any entries with values specified in order preference")
	}

	fields := append(prefSet.Values(), extra...)
	return Reconciliation{Type: t, Fields: fields, Extra: extra, Missing: missing}
}

// missingIsNotable reports whether missing preferred answers deserve a
// warning. NoResponse alone does not: complete data has none.
func missingIsNotable(missing []string) bool {
	return len(missing) > 0 && !(len(missing) == 1 && missing[0] == NoResponse)
}

// Warnings returns how many order mismatches Reconcile warned about.
func (r Reconciliation) Warnings() int {
	n := 0
	if len(r.Extra) > 0 {
		n++
	}
	if missingIsNotable(r.Missing) {
		n++
	}
	return n
}

func sortedWithNoResponseLast(values []string) []string {
	fields := make([]string, 0, len(values))
	hasNoResponse := false
	for _, v := range values {
		if v == NoResponse {
			hasNoResponse = true
			continue
		}
		fields = append(fields, v)
	}
	sort.Strings(fields)
	if hasNoResponse {
		fields = append(fields, NoResponse)
	}
	return fields
}
