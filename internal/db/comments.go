package db

import (
	"context"
	"database/sql"

	"github.com/anonmektep/portal/internal/models"
)

func AddComment(ctx context.Context, database *sql.DB, c *models.InternalComment) error {
	return database.QueryRowContext(ctx, `
		INSERT INTO internal_comments (report_id, author_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, c.ReportID, c.AuthorID, c.Text).Scan(&c.ID, &c.CreatedAt)
}

// ListComments — в хронологическом порядке; автор может быть уже удалён.
func ListComments(ctx context.Context, database *sql.DB, reportID int64) ([]models.InternalComment, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT c.id, c.report_id, c.author_id, COALESCE(u.username, ''), c.text, c.created_at
		FROM internal_comments c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.report_id = $1
		ORDER BY c.created_at, c.id
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.InternalComment
	for rows.Next() {
		var c models.InternalComment
		if err := rows.Scan(&c.ID, &c.ReportID, &c.AuthorID, &c.AuthorName, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
