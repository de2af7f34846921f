package domain

type Gender string

const (
	GenderFemale      Gender = "F"
	GenderMale        Gender = "M"
	GenderNonBinary   Gender = "X"
	GenderUndisclosed Gender = ""
)

// Rider is the domain representation of a person. Identity is not guaranteed
// unique per person; the fuzzy resolver suggests merges, it never merges.
type Rider struct {
	ID RiderID

	FirstName string
	LastName  string

	// Email is optional; riders without one never receive submission requests.
	Email  *string
	Gender Gender
}

type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "REGISTERED"
	RegistrationStatusCancelled  RegistrationStatus = "CANCELLED"
)
