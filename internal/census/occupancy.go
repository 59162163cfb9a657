// Package census computes the derived figures shown on the dashboard: bed
// occupancy, ages, on-duty status and simple aggregates. Every function is
// pure and tolerates inconsistent input rather than failing on it.
package census

import "math"

// Band is the colour band of an occupancy rate.
type Band string

const (
	BandSuccess Band = "success"
	BandWarning Band = "warning"
	BandDanger  Band = "danger"
)

// Variant returns the badge variant used to render the band.
func (b Band) Variant() string {
	switch b {
	case BandDanger:
		return "danger"
	case BandWarning:
		return "warning"
	case BandSuccess:
		return "success"
	}
	return "default"
}

// BedState is the headline status of a department's beds.
type BedState string

const (
	BedFull      BedState = "Full"
	BedAvailable BedState = "Available"
)

// Variant returns the badge variant used to render the state.
func (s BedState) Variant() string {
	if s == BedFull {
		return "danger"
	}
	return "success"
}

// OccupancyRate returns occupied/total as a whole percentage rounded half up.
// A non-positive total yields 0 and the result is clamped to [0, 100], so
// records that violate occupied <= total still produce a usable figure.
func OccupancyRate(occupied, total int) int {
	if total <= 0 {
		return 0
	}
	rate := int(math.Floor(float64(occupied)/float64(total)*100 + 0.5))
	switch {
	case rate < 0:
		return 0
	case rate > 100:
		return 100
	}
	return rate
}

// BandOccupancy classifies a rate: danger at 90 and above, warning at 70 and
// above, success otherwise.
func BandOccupancy(rate int) Band {
	switch {
	case rate >= 90:
		return BandDanger
	case rate >= 70:
		return BandWarning
	}
	return BandSuccess
}

// BedStatus reports Full at 90% and above.
func BedStatus(rate int) BedState {
	if rate >= 90 {
		return BedFull
	}
	return BedAvailable
}

// AvailableBedsBand colours the hospital-wide free bed count.
func AvailableBedsBand(available int) Band {
	if available < 10 {
		return BandWarning
	}
	return BandSuccess
}
