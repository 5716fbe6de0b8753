package ranking

import "time"

// Gate decides whether a page may be re-optimized. Overlapping structural
// changes on one page would compound confounds, so a page stays ineligible
// until the cooldown window since its last experiment has fully elapsed.
type Gate struct {
	minDaysBetweenChanges int
}

// NewGate creates a Gate with the given cooldown in days.
func NewGate(minDaysBetweenChanges int) *Gate {
	return &Gate{minDaysBetweenChanges: minDaysBetweenChanges}
}

// DaysSince returns whole days elapsed between then and now.
func DaysSince(then, now time.Time) int {
	return int(now.Sub(then).Hours() / 24)
}

// IsEligible reports whether a page may be optimized. A page with no prior
// experiment (nil lastExperiment) is always eligible; otherwise the cooldown
// boundary is inclusive at >= minDaysBetweenChanges.
func (g *Gate) IsEligible(lastExperiment *time.Time, now time.Time) bool {
	if lastExperiment == nil {
		return true
	}
	return DaysSince(*lastExperiment, now) >= g.minDaysBetweenChanges
}
