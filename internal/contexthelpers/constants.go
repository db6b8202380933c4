package contexthelpers

type contextKey string

const playerIDContextKey = contextKey("playerID")
const sessionIDContextKey = contextKey("sessionID")
const csrfTokenContextKey = contextKey("csrfToken")
