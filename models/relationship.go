package models

// RelationshipType identifies one of the four per-person relationship sets.
type RelationshipType string

const (
	RelationshipParent  RelationshipType = "parent"
	RelationshipChild   RelationshipType = "child"
	RelationshipPartner RelationshipType = "partner"
	RelationshipSpouse  RelationshipType = "spouse"
)

// RelationshipTypes lists all valid types in a fixed order.
var RelationshipTypes = []RelationshipType{
	RelationshipParent,
	RelationshipChild,
	RelationshipPartner,
	RelationshipSpouse,
}

// IsValid reports whether t is one of the four known relationship types.
func (t RelationshipType) IsValid() bool {
	switch t {
	case RelationshipParent, RelationshipChild, RelationshipPartner, RelationshipSpouse:
		return true
	}
	return false
}

// Reciprocal returns the type that must be maintained on the other
// endpoint: parent and child mirror each other, partner and spouse are
// symmetric in kind.
func (t RelationshipType) Reciprocal() RelationshipType {
	switch t {
	case RelationshipParent:
		return RelationshipChild
	case RelationshipChild:
		return RelationshipParent
	default:
		return t
	}
}
