package httputil

import (
	"context"
	"net/http"

	"notable/internal/domain/services"
)

// Context key type to avoid collisions
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity adds the authenticated identity to the request context
func WithIdentity(r *http.Request, id services.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, id)
	return r.WithContext(ctx)
}

// GetIdentity retrieves the identity from context; the zero value means
// no authenticated caller.
func GetIdentity(r *http.Request) services.Identity {
	id, _ := r.Context().Value(identityKey).(services.Identity)
	return id
}
