package db

import (
	"context"
)

const createFile = `
INSERT INTO files (user_id, original_name, stored_name, mime_type, size)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, original_name, stored_name, mime_type, size, processed, uploaded_at
`

type CreateFileParams struct {
	UserID       int64
	OriginalName string
	StoredName   string
	MimeType     string
	Size         int64
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (File, error) {
	row := q.db.QueryRow(ctx, createFile, arg.UserID, arg.OriginalName, arg.StoredName, arg.MimeType, arg.Size)
	var f File
	err := row.Scan(&f.ID, &f.UserID, &f.OriginalName, &f.StoredName, &f.MimeType, &f.Size, &f.Processed, &f.UploadedAt)
	return f, err
}

const getFilesByUser = `
SELECT id, user_id, original_name, stored_name, mime_type, size, processed, uploaded_at
FROM files
WHERE user_id = $1
ORDER BY uploaded_at DESC, id DESC
`

func (q *Queries) GetFilesByUser(ctx context.Context, userID int64) ([]File, error) {
	rows, err := q.db.Query(ctx, getFilesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]File, 0)
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.UserID, &f.OriginalName, &f.StoredName, &f.MimeType, &f.Size, &f.Processed, &f.UploadedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

const getFileByID = `
SELECT id, user_id, original_name, stored_name, mime_type, size, processed, uploaded_at
FROM files
WHERE id = $1 AND user_id = $2
`

func (q *Queries) GetFileByID(ctx context.Context, id int64, userID int64) (File, error) {
	row := q.db.QueryRow(ctx, getFileByID, id, userID)
	var f File
	err := row.Scan(&f.ID, &f.UserID, &f.OriginalName, &f.StoredName, &f.MimeType, &f.Size, &f.Processed, &f.UploadedAt)
	return f, err
}

const markFileProcessed = `
UPDATE files
SET processed = TRUE
WHERE id = $1
`

func (q *Queries) MarkFileProcessed(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, markFileProcessed, id)
	return err
}

const deleteFileByID = `
DELETE FROM files
WHERE id = $1 AND user_id = $2
`

func (q *Queries) DeleteFileByID(ctx context.Context, id int64, userID int64) error {
	_, err := q.db.Exec(ctx, deleteFileByID, id, userID)
	return err
}

const deleteFilesByUser = `
DELETE FROM files
WHERE user_id = $1
`

func (q *Queries) DeleteFilesByUser(ctx context.Context, userID int64) error {
	_, err := q.db.Exec(ctx, deleteFilesByUser, userID)
	return err
}
