package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/journal-session/authapi"
	"github.com/jrsteele09/journal-session/authctx"
	"github.com/jrsteele09/journal-session/internal/config"
	"github.com/jrsteele09/journal-session/journal"
	"github.com/jrsteele09/journal-session/session"
	"github.com/jrsteele09/journal-session/tokenstore"
	"github.com/jrsteele09/journal-session/tokenstore/boltrepo"
	"github.com/jrsteele09/journal-session/tokenstore/memrepo"
	"github.com/jrsteele09/journal-session/tokenstore/redisrepo"
	"github.com/jrsteele09/journal-session/users"
)

// clientSession is everything a command needs to talk to the backend.
type clientSession struct {
	store   *tokenstore.Store
	manager *session.Manager
	api     *journal.Client
	auth    *authctx.Context
}

func (cs *clientSession) Close() error {
	return cs.store.Close()
}

// openRepo opens the token repository selected by the settings.
func openRepo(ctx context.Context, s settings) (tokenstore.Repo, error) {
	switch s.StoreKind {
	case config.TokenStoreBolt:
		return boltrepo.NewFromFile(s.StorePath)
	case config.TokenStoreMemory:
		return memrepo.New(), nil
	case config.TokenStoreRedis:
		return redisrepo.Dial(ctx, s.RedisAddr, s.RedisPassword)
	default:
		return nil, fmt.Errorf("unknown token store %q (want bolt, memory or redis)", s.StoreKind)
	}
}

// openSession wires the token store, session manager, API client and auth
// context. An expired session is reported on w with the login page to return to.
// The scope is the role of the stored token when there is one.
func openSession(ctx context.Context, w io.Writer) (*clientSession, error) {
	s := resolveSettings()
	repo, err := openRepo(ctx, s)
	if err != nil {
		return nil, err
	}
	store := tokenstore.New(repo, tokenstore.WithMaxAge(s.cfg.GetMaxTokenAge()))

	manager := session.New(store,
		session.NewHTTPRefresher(s.APIURL, store),
		session.WithTimeout(s.cfg.GetRequestTimeout()),
	)
	api := journal.New(s.APIURL, manager.Client())
	nav := session.NavigatorFunc(func(_ context.Context, route string) {
		fmt.Fprintf(w, "Session ended. Sign in again (%s).\n", route)
	})
	ac := authctx.New(manager, api, nav, storedRole(ctx, store))
	ac.Mount()

	return &clientSession{store: store, manager: manager, api: api, auth: ac}, nil
}

func storedRole(ctx context.Context, store *tokenstore.Store) users.Role {
	value, err := store.GetToken(ctx, tokenstore.AccessToken)
	if err != nil || value == nil {
		return users.RoleAuthor
	}
	claims, err := authapi.PeekClaims(*value)
	if err != nil || !claims.Role.Valid() {
		return users.RoleAuthor
	}
	return claims.Role
}
