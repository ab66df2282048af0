// Package boltrepo persists token records in a BBolt database file, so a
// session survives process restarts.
package boltrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/tokenstore"
	"go.etcd.io/bbolt"
)

var tokensBucket = []byte("tokens")

// Repo implements tokenstore.Repo backed by a BBolt database.
type Repo struct {
	db *bbolt.DB
}

var _ tokenstore.Repo = (*Repo)(nil)

// New returns a Repo backed by the given BBolt database.
func New(db *bbolt.DB) (*Repo, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tokensBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating tokens bucket: %w", err)
	}
	return &Repo{db: db}, nil
}

// NewFromFile opens (or creates) the database at path. The parent directory is
// created with owner-only permissions.
func NewFromFile(path string) (*Repo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating token store directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	repo, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *Repo) Put(_ context.Context, records ...tokenstore.Record) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(tokensBucket)
		for _, rec := range records {
			data, err := rec.Encode()
			if err != nil {
				return err
			}
			if err := b.Put([]byte(rec.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) Get(_ context.Context, id tokenstore.TokenType) (*tokenstore.Record, error) {
	var rec *tokenstore.Record
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(tokensBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%s: %w", id, apperrors.ErrTokenNotFound)
		}
		var err error
		rec, err = tokenstore.DecodeRecord(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Repo) Delete(_ context.Context, ids ...tokenstore.TokenType) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(tokensBucket)
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying BBolt database.
func (r *Repo) Close() error {
	return r.db.Close()
}
