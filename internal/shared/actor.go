package shared

// Actor identifies the authenticated user performing a request. Write paths
// require one; its Name is snapshotted into audit rows at write time.
type Actor struct {
	ID   string
	Name string
	Role string
}
