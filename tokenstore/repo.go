package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TokenType is the key a token is stored under.
type TokenType string

const (
	AccessToken  TokenType = "accessToken"
	RefreshToken TokenType = "refreshToken"
)

// TokenTypes lists every key the store can hold.
func TokenTypes() []TokenType {
	return []TokenType{AccessToken, RefreshToken}
}

// Record is one persisted token. At most one record exists per ID.
type Record struct {
	ID        TokenType `json:"id"`
	Value     string    `json:"value"`
	Timestamp int64     `json:"timestamp"` // write time, epoch milliseconds
}

// WrittenAt returns the record's write time.
func (r Record) WrittenAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Encode and Decode give every repo the same on-disk layout.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding token record: %w", err)
	}
	return &r, nil
}

// Repo is the record level storage behind a Store. Each call is atomic on its
// own; there is no transaction spanning calls.
type Repo interface {
	// Put writes every record in one atomic operation, overwriting existing ones.
	Put(ctx context.Context, records ...Record) error

	// Get returns the record for id, or ErrTokenNotFound.
	Get(ctx context.Context, id TokenType) (*Record, error)

	// Delete removes the given records. Missing records are not an error.
	Delete(ctx context.Context, ids ...TokenType) error

	// Close releases the underlying storage.
	Close() error
}
