// Package memrepo keeps token records in process memory.
package memrepo

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/tokenstore"
)

var _ tokenstore.Repo = (*Repo)(nil)

type Repo struct {
	records map[tokenstore.TokenType]tokenstore.Record
	lock    sync.RWMutex
}

func New() *Repo {
	return &Repo{
		records: make(map[tokenstore.TokenType]tokenstore.Record),
	}
}

func (r *Repo) Put(_ context.Context, records ...tokenstore.Record) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return nil
}

func (r *Repo) Get(_ context.Context, id tokenstore.TokenType) (*tokenstore.Record, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return &rec, nil
}

func (r *Repo) Delete(_ context.Context, ids ...tokenstore.TokenType) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, id := range ids {
		delete(r.records, id)
	}
	return nil
}

// Len returns the number of stored records.
func (r *Repo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.records)
}

func (r *Repo) Close() error {
	return nil
}
