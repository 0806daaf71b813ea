package stats

import "fmt"

// FormatDuration renders a duration in seconds as a short human string,
// picking the two most significant units past an hour.
func FormatDuration(seconds float64) string {
	s := int64(seconds)
	switch {
	case s < 60:
		return fmt.Sprintf("%d sec", s)
	case s < 3600:
		return fmt.Sprintf("%d min", s/60)
	case s < 86400:
		return fmt.Sprintf("%d h %d min", s/3600, (s%3600)/60)
	default:
		return fmt.Sprintf("%d d %d h", s/86400, (s%86400)/3600)
	}
}
