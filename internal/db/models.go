package db

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// User is an account row. PasswordHash is a bcrypt digest and never leaves
// the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Query is one entry in a user's question history.
type Query struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Text          string    `json:"query"`
	Response      string    `json:"response"`
	ResponseGraph []byte    `json:"-"`
	Timestamp     time.Time `json:"timestamp"`
}

// File is an uploaded file record. StoredName is the object key under
// which the original bytes are kept.
type File struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	OriginalName string    `json:"name"`
	StoredName   string    `json:"stored_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Processed    bool      `json:"processed"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Unit is a token-bounded chunk of an uploaded file together with its
// embedding vector.
type Unit struct {
	ID        string          `json:"id"`
	FileID    int64           `json:"file_id"`
	Idx       int32           `json:"index"`
	Content   string          `json:"content"`
	Embedding pgvector.Vector `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
}
