package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// TreeStats aggregates counts over the persisted collection. Parent/child
// references are counted per side, so a single parent-child link
// contributes one parent reference and one child reference.
type TreeStats struct {
	PeopleCount    int `json:"people_count"`
	WithPhotoCount int `json:"with_photo_count"`
	ParentRefs     int `json:"parent_refs"`
	ChildRefs      int `json:"child_refs"`
	PartnerRefs    int `json:"partner_refs"`
	SpouseRefs     int `json:"spouse_refs"`
}

// GetTreeStats computes collection aggregates with a single query over the
// JSON-encoded relationship columns (sqlite JSON1).
func GetTreeStats(db *sql.DB) (*TreeStats, error) {
	query := psql.Select(
		"COUNT(*)",
		"COUNT(photo_path)",
		"COALESCE(SUM(json_array_length(parent_ids)), 0)",
		"COALESCE(SUM(json_array_length(child_ids)), 0)",
		"COALESCE(SUM(json_array_length(partner_ids)), 0)",
		"COALESCE(SUM(json_array_length(spouse_ids)), 0)",
	).From("people")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tree stats query: %w", err)
	}

	stats := &TreeStats{}
	err = db.QueryRow(sqlStr, args...).Scan(
		&stats.PeopleCount,
		&stats.WithPhotoCount,
		&stats.ParentRefs,
		&stats.ChildRefs,
		&stats.PartnerRefs,
		&stats.SpouseRefs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tree stats: %w", err)
	}
	return stats, nil
}
