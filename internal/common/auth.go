package common

import (
	"context"
	"errors"
	"net/http"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil && id.UserID != ""
}

// ChainAuthenticator tries each authenticator in order; the first success wins.
type ChainAuthenticator []Authenticator

func (c ChainAuthenticator) Authenticate(r *http.Request) (*Identity, error) {
	var errs []error
	for _, a := range c {
		if a == nil {
			continue
		}
		id, err := a.Authenticate(r)
		if err == nil && id != nil && id.UserID != "" {
			return id, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, ErrUnauthenticated
	}
	return nil, errors.Join(append([]error{ErrUnauthenticated}, errs...)...)
}
