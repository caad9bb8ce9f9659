package db

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

const createUnit = `
INSERT INTO units (id, file_id, idx, content, embedding)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, file_id, idx, content, embedding, created_at
`

type CreateUnitParams struct {
	ID        string
	FileID    int64
	Idx       int32
	Content   string
	Embedding pgvector.Vector
}

func (q *Queries) CreateUnit(ctx context.Context, arg CreateUnitParams) (Unit, error) {
	row := q.db.QueryRow(ctx, createUnit, arg.ID, arg.FileID, arg.Idx, arg.Content, arg.Embedding)
	var u Unit
	err := row.Scan(&u.ID, &u.FileID, &u.Idx, &u.Content, &u.Embedding, &u.CreatedAt)
	return u, err
}

const deleteUnitsByFile = `
DELETE FROM units
WHERE file_id = $1
`

func (q *Queries) DeleteUnitsByFile(ctx context.Context, fileID int64) error {
	_, err := q.db.Exec(ctx, deleteUnitsByFile, fileID)
	return err
}

const searchUnitsByEmbedding = `
SELECT u.id, u.file_id, u.idx, u.content, u.embedding, u.created_at
FROM units u
JOIN files f ON f.id = u.file_id
WHERE f.user_id = $1
ORDER BY u.embedding <=> $2
LIMIT $3
`

// SearchUnitsByEmbedding returns the user's units closest to the query
// vector by cosine distance.
func (q *Queries) SearchUnitsByEmbedding(ctx context.Context, userID int64, embedding pgvector.Vector, limit int32) ([]Unit, error) {
	rows, err := q.db.Query(ctx, searchUnitsByEmbedding, userID, embedding, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := make([]Unit, 0)
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.FileID, &u.Idx, &u.Content, &u.Embedding, &u.CreatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

const deleteUnitsByUser = `
DELETE FROM units
WHERE file_id IN (SELECT id FROM files WHERE user_id = $1)
`

func (q *Queries) DeleteUnitsByUser(ctx context.Context, userID int64) error {
	_, err := q.db.Exec(ctx, deleteUnitsByUser, userID)
	return err
}
