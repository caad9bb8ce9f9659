package db

import (
	"context"
)

const createQuery = `
INSERT INTO queries (user_id, text, response, response_graph)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, text, response, response_graph, timestamp
`

// CreateQueryParams records a question, its answer, and the subgraph that
// backed the answer (serialized GraphData).
type CreateQueryParams struct {
	UserID        int64
	Text          string
	Response      string
	ResponseGraph []byte
}

func (q *Queries) CreateQuery(ctx context.Context, arg CreateQueryParams) (Query, error) {
	row := q.db.QueryRow(ctx, createQuery, arg.UserID, arg.Text, arg.Response, arg.ResponseGraph)
	var record Query
	err := row.Scan(&record.ID, &record.UserID, &record.Text, &record.Response, &record.ResponseGraph, &record.Timestamp)
	return record, err
}

const getQueriesByUser = `
SELECT id, user_id, text, response, response_graph, timestamp
FROM queries
WHERE user_id = $1
ORDER BY timestamp DESC, id DESC
LIMIT $2
`

// GetQueriesByUser returns the user's history, newest first.
func (q *Queries) GetQueriesByUser(ctx context.Context, userID int64, limit int32) ([]Query, error) {
	rows, err := q.db.Query(ctx, getQueriesByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Query, 0)
	for rows.Next() {
		var record Query
		if err := rows.Scan(&record.ID, &record.UserID, &record.Text, &record.Response, &record.ResponseGraph, &record.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

const deleteQueriesByUser = `
DELETE FROM queries
WHERE user_id = $1
`

func (q *Queries) DeleteQueriesByUser(ctx context.Context, userID int64) error {
	_, err := q.db.Exec(ctx, deleteQueriesByUser, userID)
	return err
}
