package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IDList is an ordered, duplicate-free collection of person ids. It is
// stored as a JSON array in a TEXT column.
type IDList []string

// Contains reports whether id is present in the list.
func (l IDList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id if it is not already present. Returns true if the list
// changed.
func (l *IDList) Add(id string) bool {
	if l.Contains(id) {
		return false
	}
	*l = append(*l, id)
	return true
}

// Remove deletes id from the list, preserving the order of the remaining
// entries. Returns true if the list changed.
func (l *IDList) Remove(id string) bool {
	for i, v := range *l {
		if v == id {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the list. A nil receiver yields an
// empty, non-nil list.
func (l IDList) Clone() IDList {
	out := make(IDList, len(l))
	copy(out, l)
	return out
}

// Value implements driver.Valuer, serializing the list as a JSON array.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode id list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner, accepting TEXT/BLOB JSON arrays. NULL scans
// to an empty list.
func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = IDList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported id list column type %T", value)
	}
	if len(data) == 0 {
		*l = IDList{}
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("failed to decode id list: %w", err)
	}
	if *l == nil {
		*l = IDList{}
	}
	return nil
}
