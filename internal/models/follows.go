package models

import "database/sql"

// FollowAuthor creates the (user, author) edge if it does not exist. The
// UNIQUE(user_id, author_id) constraint makes a racing duplicate a no-op.
func FollowAuthor(db *sql.DB, userID, authorID int) error {
	_, err := db.Exec(`INSERT INTO follows (user_id, author_id) VALUES (?, ?)
		ON CONFLICT(user_id, author_id) DO NOTHING`, userID, authorID)
	return err
}

// UnfollowAuthor deletes the (user, author) edge, ErrNotFound if absent.
func UnfollowAuthor(db *sql.DB, userID, authorID int) error {
	res, err := db.Exec(`DELETE FROM follows WHERE user_id = ? AND author_id = ?`, userID, authorID)
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

func IsFollowing(db *sql.DB, userID, authorID int) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM follows WHERE user_id = ? AND author_id = ?`, userID, authorID).Scan(&n)
	return n > 0, err
}
