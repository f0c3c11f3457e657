package model

// Freedesktop notification urgencies, carried in the "urgency" hint. They
// only pick the default attributes of an entry; scheduling uses Precedence.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// UrgencyName returns the name of an urgency. Unknown values read as normal,
// as they do when attributes are chosen.
func UrgencyName(urgency int) string {
	switch urgency {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}
