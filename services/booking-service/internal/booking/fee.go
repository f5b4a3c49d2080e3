package booking

// HourlyRate is the flat per-hour session fee in currency units. There is no
// per-tutor or per-subject pricing and no discount logic; the service only
// quotes the amount, it never charges it.
const HourlyRate = 350

// Fee returns the total session fee for a duration in hours.
func Fee(durationHours int) int {
	return HourlyRate * durationHours
}
