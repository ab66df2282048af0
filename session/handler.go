package session

import (
	"context"

	"github.com/rs/zerolog/log"
)

// RootRoute is where the fallback navigation sends the user when no failure
// handler is registered.
const RootRoute = "/"

// FailureHandler is told when the session could not be recovered. The token
// store has already been purged when OnSessionExpired runs.
type FailureHandler interface {
	OnSessionExpired(ctx context.Context)
}

type FailureHandlerFunc func(ctx context.Context)

func (f FailureHandlerFunc) OnSessionExpired(ctx context.Context) {
	f(ctx)
}

// Navigator moves the user to a route of the application.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Navigate(ctx context.Context, route string) {
	f(ctx, route)
}

type logNavigator struct{}

func (logNavigator) Navigate(_ context.Context, route string) {
	log.Info().Str("route", route).Msg("redirecting")
}
