package main

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/casebook/internal/e2etest"
	"github.com/stretchr/testify/require"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "CASEBOOK_ADDR":
		return "localhost:0", true
	case "CASEBOOK_SQLITE_URL":
		return ":memory:", true
	case "CASEBOOK_DAILY_CASE":
		return "rue-morgue", true
	case "CASEBOOK_WEEKLY_CASE":
		return "purloined-letter", true
	default:
		return "", false
	}
}

// startTestServer starts the server with an in-memory database and stops it when the test ends.
func startTestServer(t *testing.T) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, testLookupEnv, run)
	require.NoError(t, err)
	return server
}

// newPlayer returns a client with its own cookies that has loaded the landing page of the game session.
func newPlayer(t *testing.T, server *e2etest.Server, sessionID string) *e2etest.Client {
	t.Helper()
	client, err := e2etest.NewClient(server.URL())
	require.NoError(t, err)
	_, err = client.LandingPage(context.Background(), sessionID)
	require.NoError(t, err)
	return client
}
