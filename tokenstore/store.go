// Package tokenstore persists the client's bearer tokens.
//
// A Store exposes three operations: SaveTokens, GetToken and RemoveTokens. Tokens
// older than the maximum age are evicted when read, not by a background sweep.
package tokenstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/rs/zerolog/log"
)

// DefaultMaxAge is the ceiling on token age, independent of any expiry the token carries.
const DefaultMaxAge = 30 * 24 * time.Hour

type Store struct {
	repo    Repo
	maxAge  time.Duration
	nowFunc func() time.Time

	// writeLock orders saves against evictions. generation counts saves so an
	// eviction can tell whether the stale tokens it saw were since replaced.
	writeLock  sync.Mutex
	generation uint64
	evictions  sync.WaitGroup
}

type Option func(*Store)

func WithMaxAge(maxAge time.Duration) Option {
	return func(s *Store) {
		s.maxAge = maxAge
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		s.nowFunc = now
	}
}

func New(repo Repo, options ...Option) *Store {
	s := &Store{repo: repo}
	for _, opt := range options {
		opt(s)
	}
	if s.maxAge <= 0 {
		s.maxAge = DefaultMaxAge
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}
	return s
}

// SaveTokens writes the access token, and the refresh token when given, with one
// shared timestamp. An empty access token is rejected without writing anything.
func (s *Store) SaveTokens(ctx context.Context, accessToken string, refreshToken *string) error {
	if strings.TrimSpace(accessToken) == "" {
		return apperrors.ErrEmptyAccessToken
	}

	ts := s.nowFunc().UnixMilli()
	records := []Record{{ID: AccessToken, Value: accessToken, Timestamp: ts}}
	if refreshToken != nil && *refreshToken != "" {
		records = append(records, Record{ID: RefreshToken, Value: *refreshToken, Timestamp: ts})
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()
	if err := s.repo.Put(ctx, records...); err != nil {
		return apperrors.Wrapf(joinStorage(err), "Store.SaveTokens")
	}
	s.generation++
	return nil
}

// GetToken returns the stored token, or nil when there is none. A token older
// than the maximum age is reported as absent and every token is removed in the
// background. Tokens saved after the stale read are not evicted.
func (s *Store) GetToken(ctx context.Context, tokenType TokenType) (*string, error) {
	generation := s.currentGeneration()
	rec, err := s.repo.Get(ctx, tokenType)
	if apperrors.Is(err, apperrors.ErrTokenNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(joinStorage(err), "Store.GetToken %s", tokenType)
	}

	if s.isStale(rec) {
		log.Info().Str("token", string(tokenType)).Time("written", rec.WrittenAt()).Msg("evicting stale tokens")
		s.evictAsync(ctx, generation)
		return nil, nil
	}

	value := rec.Value
	return &value, nil
}

// RemoveTokens deletes both records. It succeeds when they are already gone.
func (s *Store) RemoveTokens(ctx context.Context) error {
	if err := s.repo.Delete(ctx, TokenTypes()...); err != nil {
		return apperrors.Wrapf(joinStorage(err), "Store.RemoveTokens")
	}
	return nil
}

// Age returns how long ago the token was written, or ErrTokenNotFound.
func (s *Store) Age(ctx context.Context, tokenType TokenType) (time.Duration, error) {
	rec, err := s.repo.Get(ctx, tokenType)
	if err != nil {
		return 0, err
	}
	return s.nowFunc().Sub(rec.WrittenAt()), nil
}

// Close waits for pending evictions and closes the repo.
func (s *Store) Close() error {
	s.evictions.Wait()
	return s.repo.Close()
}

func (s *Store) isStale(rec *Record) bool {
	return s.nowFunc().Sub(rec.WrittenAt()) > s.maxAge
}

func (s *Store) currentGeneration() uint64 {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()
	return s.generation
}

// evictAsync removes every token unless a save has happened since generation
// was read.
func (s *Store) evictAsync(ctx context.Context, generation uint64) {
	s.evictions.Add(1)
	go func() {
		defer s.evictions.Done()
		s.writeLock.Lock()
		defer s.writeLock.Unlock()
		if s.generation != generation {
			log.Debug().Msg("tokens saved since stale read, skipping eviction")
			return
		}
		if err := s.RemoveTokens(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("stale token eviction failed")
		}
	}()
}

func joinStorage(err error) error {
	if apperrors.Is(err, apperrors.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
}
