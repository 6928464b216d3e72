package models

import (
	"database/sql"
	"errors"
)

func CreateGroup(db *sql.DB, title, slug, description string) (int64, error) {
	res, err := db.Exec(`INSERT INTO groups (title, slug, description) VALUES (?, ?, ?)`, title, slug, description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func GetGroupBySlug(db *sql.DB, slug string) (*Group, error) {
	row := db.QueryRow(`SELECT id, title, slug, description FROM groups WHERE slug = ?`, slug)
	var g Group
	err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func GetGroupByID(db *sql.DB, id int) (*Group, error) {
	row := db.QueryRow(`SELECT id, title, slug, description FROM groups WHERE id = ?`, id)
	var g Group
	err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func ListGroups(db *sql.DB) ([]Group, error) {
	rows, err := db.Query(`SELECT id, title, slug, description FROM groups ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// DeleteGroup removes the group. Its posts survive with group_id cleared by
// the ON DELETE SET NULL constraint.
func DeleteGroup(db *sql.DB, id int) error {
	res, err := db.Exec(`DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
