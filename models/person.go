package models

// Person represents a single individual in the family tree.
// It corresponds to the 'people' table; relationship sets are stored as
// JSON-encoded TEXT columns.
type Person struct {
	ID string `gorm:"primaryKey" json:"id"`

	// DisplayName is a cached derivation from the name parts below; it is
	// refreshed on every create/update and is never authoritative
	DisplayName string `json:"display_name"`

	// Name is the legacy single name field, still accepted on import
	Name string `json:"name,omitempty"`

	FirstName     string `json:"first_name,omitempty"`
	MiddleName    string `json:"middle_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	MaidenName    string `json:"maiden_name,omitempty"`
	PreferredName string `json:"preferred_name,omitempty"`

	// BirthDate and DeathDate are ISO dates (YYYY-MM-DD); when both are
	// set, birth must be strictly before death (validated before the
	// store is touched)
	BirthDate string `json:"birth_date,omitempty"`
	DeathDate string `json:"death_date,omitempty"`

	Gender string `json:"gender,omitempty"`
	Notes  string `json:"notes,omitempty"`

	// photo assets, managed by the photo upload pipeline
	PhotoPath     *string `json:"photo_path,omitempty"`
	ThumbnailPath *string `json:"thumbnail_path,omitempty"`

	ParentIDs  IDList `gorm:"type:text" json:"parent_ids"`
	ChildIDs   IDList `gorm:"type:text" json:"child_ids"`
	PartnerIDs IDList `gorm:"type:text" json:"partner_ids"`
	SpouseIDs  IDList `gorm:"type:text" json:"spouse_ids"`

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// NormalizeRelationshipSets replaces nil relationship sets with empty ones
// so that every Person carries all four sets.
func (p *Person) NormalizeRelationshipSets() {
	if p.ParentIDs == nil {
		p.ParentIDs = IDList{}
	}
	if p.ChildIDs == nil {
		p.ChildIDs = IDList{}
	}
	if p.PartnerIDs == nil {
		p.PartnerIDs = IDList{}
	}
	if p.SpouseIDs == nil {
		p.SpouseIDs = IDList{}
	}
}

// RelationshipSet returns a pointer to the set matching the given type,
// or nil for an invalid type.
func (p *Person) RelationshipSet(t RelationshipType) *IDList {
	switch t {
	case RelationshipParent:
		return &p.ParentIDs
	case RelationshipChild:
		return &p.ChildIDs
	case RelationshipPartner:
		return &p.PartnerIDs
	case RelationshipSpouse:
		return &p.SpouseIDs
	default:
		return nil
	}
}

// Clone returns a deep copy of the person, including relationship sets and
// photo path pointers.
func (p *Person) Clone() Person {
	out := *p
	out.ParentIDs = p.ParentIDs.Clone()
	out.ChildIDs = p.ChildIDs.Clone()
	out.PartnerIDs = p.PartnerIDs.Clone()
	out.SpouseIDs = p.SpouseIDs.Clone()
	if p.PhotoPath != nil {
		v := *p.PhotoPath
		out.PhotoPath = &v
	}
	if p.ThumbnailPath != nil {
		v := *p.ThumbnailPath
		out.ThumbnailPath = &v
	}
	return out
}
