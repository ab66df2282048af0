package session

import (
	"context"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/rs/zerolog/log"
)

type retriedKey struct{}

// WithRetried marks requests made with ctx as already replayed once, so a 401
// on them is returned as is.
func WithRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func IsRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey{}).(bool)
	return retried
}

// Transport is the http.RoundTripper behind Manager.Client.
type Transport struct {
	manager *Manager
	base    http.RoundTripper
}

// RoundTrip sends req with the current access token. A 401 on a request that is
// not exempt and not yet replayed triggers a refresh and one replay; otherwise
// responses and errors come back unchanged. When the refresh fails the original
// 401 response is returned.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.send(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	ctx := req.Context()
	if t.manager.exempt.Matches(req.URL.Path) || IsRetried(ctx) {
		return resp, nil
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		log.Debug().Str("path", req.URL.Path).Msg("request body cannot be replayed, not refreshing")
		return resp, nil
	}

	if err := t.manager.Refresh(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			closeBody(resp)
			return nil, err
		}
		return resp, nil
	}
	closeBody(resp)

	replay := req.Clone(WithRetried(ctx))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		replay.Body = body
	}
	t.manager.metrics.Replays.Inc()
	log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("replaying request")
	return t.send(replay)
}

func (t *Transport) send(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if !t.manager.exempt.Matches(req.URL.Path) {
		t.authorize(out)
	}
	return t.base.RoundTrip(out)
}

// authorize attaches the bearer token when one is stored. A read failure sends
// the request unauthenticated and lets the backend decide.
func (t *Transport) authorize(req *http.Request) {
	tok, err := t.manager.store.TokenSource(req.Context()).Token()
	if errors.Is(err, apperrors.ErrTokenNotFound) {
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("reading access token, sending request without it")
		return
	}
	tok.SetAuthHeader(req)
}

func closeBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
