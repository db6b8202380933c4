package contexthelpers

import (
	"context"
	"net/http"
)

func SetPlayerID(r *http.Request, playerID string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, playerIDContextKey, playerID)
	return r.WithContext(ctx)
}

func SetSessionID(r *http.Request, sessionID string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)
	return r.WithContext(ctx)
}

func SetCSRFToken(r *http.Request, csrfToken string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, csrfTokenContextKey, csrfToken)
	return r.WithContext(ctx)
}
