package models

import (
	"database/sql"
	"errors"
)

const postColumns = `p.id, p.text, p.author_id, u.username, p.group_id, g.title, g.slug, p.image, p.created_at`

const postFrom = ` FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

func CreatePost(db *sql.DB, authorID int, text string, groupID *int, image string) (int64, error) {
	res, err := db.Exec(`INSERT INTO posts (text, author_id, group_id, image) VALUES (?, ?, ?, ?)`,
		text, authorID, groupID, image)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func UpdatePost(db *sql.DB, id int, text string, groupID *int, image string) error {
	_, err := db.Exec(`UPDATE posts SET text = ?, group_id = ?, image = ? WHERE id = ?`,
		text, groupID, image, id)
	return err
}

func GetPost(db *sql.DB, id int) (*Post, error) {
	row := db.QueryRow(`SELECT `+postColumns+postFrom+` WHERE p.id = ?`, id)
	var p Post
	if err := scanPost(row.Scan, &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPosts returns every post, newest first.
func ListPosts(db *sql.DB) ([]Post, error) {
	return queryPosts(db, `SELECT `+postColumns+postFrom+` ORDER BY p.created_at DESC, p.id DESC`)
}

// ListPostsByGroup returns the group's posts, newest first.
func ListPostsByGroup(db *sql.DB, groupID int) ([]Post, error) {
	return queryPosts(db, `SELECT `+postColumns+postFrom+` WHERE p.group_id = ? ORDER BY p.created_at DESC, p.id DESC`, groupID)
}

// ListPostsByAuthor returns the author's posts, newest first.
func ListPostsByAuthor(db *sql.DB, authorID int) ([]Post, error) {
	return queryPosts(db, `SELECT `+postColumns+postFrom+` WHERE p.author_id = ? ORDER BY p.created_at DESC, p.id DESC`, authorID)
}

// ListFeedPosts returns posts by every author the user follows, newest first.
func ListFeedPosts(db *sql.DB, userID int) ([]Post, error) {
	return queryPosts(db, `SELECT `+postColumns+postFrom+`
		JOIN follows f ON f.author_id = p.author_id
		WHERE f.user_id = ? ORDER BY p.created_at DESC, p.id DESC`, userID)
}

func CountPostsByAuthor(db *sql.DB, authorID int) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM posts WHERE author_id = ?`, authorID).Scan(&n)
	return n, err
}

func queryPosts(db *sql.DB, q string, args ...any) ([]Post, error) {
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []Post
	for rows.Next() {
		var p Post
		if err := scanPost(rows.Scan, &p); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanPost(scan func(...any) error, p *Post) error {
	var groupID sql.NullInt64
	var groupName, groupSlug sql.NullString
	err := scan(&p.ID, &p.Text, &p.AuthorID, &p.Author, &groupID, &groupName, &groupSlug, &p.Image, &p.CreatedAt)
	if err != nil {
		return err
	}
	if groupID.Valid {
		id := int(groupID.Int64)
		p.GroupID = &id
		p.GroupName = groupName.String
		p.GroupSlug = groupSlug.String
	}
	return nil
}
