package models

// Scope restricts repository queries. An empty OwnerID means every record
// is visible.
type Scope struct {
	OwnerID string
}

// AllRecords is the unrestricted scope.
var AllRecords = Scope{}

// Allows reports whether a record owned by ownerID is inside the scope.
func (s Scope) Allows(ownerID string) bool {
	return s.OwnerID == "" || s.OwnerID == ownerID
}
