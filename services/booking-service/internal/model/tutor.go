package model

// WeeklyAvailability maps a lowercase English weekday name ("monday".."sunday")
// to that day's open time ranges, each "H:MM-H:MM". A missing day means the
// tutor takes no sessions that day. Ranges are kept in declaration order and
// carry no sortedness or non-overlap guarantee.
type WeeklyAvailability map[string][]string

type Tutor struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email,omitempty"`
	Bio          string             `json:"bio,omitempty"`
	Subjects     []string           `json:"subjects"`
	HourlyRate   int                `json:"hourlyRate,omitempty"`
	ProfileImage string             `json:"profileImage,omitempty"`
	Availability WeeklyAvailability `json:"availability,omitempty"`
}

func (t *Tutor) Teaches(subject string) bool {
	for _, s := range t.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}
