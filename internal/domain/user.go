package domain

// User represents a single registered address subscription. One chat may
// hold any number of these.
type User struct {
	FriendlyName string // unique across all records
	ChatID       int64
	Municipality string // canonical cyrillic script
	Street       string // canonical cyrillic script
}

// Complete reports whether all text fields are filled in. Only complete
// records are persisted or considered by outage matching.
func (u User) Complete() bool {
	return u.FriendlyName != "" && u.Municipality != "" && u.Street != ""
}
