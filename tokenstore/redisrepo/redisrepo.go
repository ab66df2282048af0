// Package redisrepo keeps token records in Redis, letting several client
// processes share one session.
package redisrepo

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/tokenstore"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "journal:session:"

type Repo struct {
	client *redis.Client
	prefix string
}

var _ tokenstore.Repo = (*Repo)(nil)

type Option func(*Repo)

// WithPrefix namespaces the keys, e.g. per user profile.
func WithPrefix(prefix string) Option {
	return func(r *Repo) {
		r.prefix = prefix
	}
}

func New(client *redis.Client, options ...Option) *Repo {
	r := &Repo{client: client, prefix: defaultPrefix}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Dial connects to addr and checks the connection with a PING.
func Dial(ctx context.Context, addr, password string, options ...Option) (*Repo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return New(client, options...), nil
}

func (r *Repo) key(id tokenstore.TokenType) string {
	return r.prefix + string(id)
}

func (r *Repo) Put(ctx context.Context, records ...tokenstore.Record) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rec := range records {
			data, err := rec.Encode()
			if err != nil {
				return err
			}
			pipe.Set(ctx, r.key(rec.ID), data, 0)
		}
		return nil
	})
	return err
}

func (r *Repo) Get(ctx context.Context, id tokenstore.TokenType) (*tokenstore.Record, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", id, apperrors.ErrTokenNotFound)
	}
	if err != nil {
		return nil, err
	}
	return tokenstore.DecodeRecord(data)
}

func (r *Repo) Delete(ctx context.Context, ids ...tokenstore.TokenType) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.key(id))
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *Repo) Close() error {
	return r.client.Close()
}
