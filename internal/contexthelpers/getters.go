package contexthelpers

import (
	"context"
)

// PlayerID returns the id of the player making the request.
func PlayerID(ctx context.Context) string {
	playerID, ok := ctx.Value(playerIDContextKey).(string)
	if !ok {
		return ""
	}

	return playerID
}

// SessionID returns the game session the request addresses.
func SessionID(ctx context.Context) string {
	sessionID, ok := ctx.Value(sessionIDContextKey).(string)
	if !ok {
		return ""
	}

	return sessionID
}

func CSRFToken(ctx context.Context) string {
	csrfToken, ok := ctx.Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}

	return csrfToken
}
