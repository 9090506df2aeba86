package domain

// Actor identifies who is performing an engine operation. It is passed
// explicitly into every call; the engine never reads session state.
type Actor struct {
	ID           string
	IsSuperAdmin bool
}
