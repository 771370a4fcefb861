// Package calc derives the rates and percentages shown in a report from the
// parsed tallies.
package calc

import "fmt"

// Pct is a percentage in tenths of a percent, i.e. already rounded to one
// decimal place. 333 is 33.3%.
type Pct int64

// Percent returns 100*num/den rounded half-up to one decimal place. The
// rounding is done in integers so 12.25 always becomes 12.3. ok is false
// when den is zero.
func Percent(num, den int) (p Pct, ok bool) {
	if den == 0 {
		return 0, false
	}
	n, d := int64(num), int64(den)
	neg := (n < 0) != (d < 0)
	if n < 0 {
		n = -n
	}
	if d < 0 {
		d = -d
	}
	// tenths = round(1000*n/d), half away from zero
	tenths := (2000*n + d) / (2 * d)
	if neg {
		tenths = -tenths
	}
	return Pct(tenths), true
}

// Float64 returns p as a percentage.
func (p Pct) Float64() float64 {
	return float64(p) / 10
}

// String renders p with exactly one decimal, e.g. "33.3", "100.0", "0.0".
func (p Pct) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%d", sign, v/10, v%10)
}
