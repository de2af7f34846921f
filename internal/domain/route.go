package domain

// Control is a checkpoint along a route.
type Control struct {
	Name string
	// DistanceKm is the cumulative distance from the start.
	DistanceKm float64
}

// ControlsStrictlyIncreasing reports whether cumulative distances increase
// strictly across the ordered list. The implicit start (0 km) and finish
// (total distance) are not part of the stored list and are exempt.
func ControlsStrictlyIncreasing(cs []Control) bool {
	for i := 1; i < len(cs); i++ {
		if cs[i].DistanceKm <= cs[i-1].DistanceKm {
			return false
		}
	}
	return true
}
