package entity

// Identity is the verified claim resolved from a request credential.
// It is never persisted by the catalog.
type Identity struct {
	ID    string
	Email string
}
