package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/myrjola/casebook/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := logging.WithPlayer(context.Background(), "post-1", "player-1")
	ctx = logging.WithAttrs(ctx, slog.String("clue_id", "hair"))
	logger.With(slog.String("source", "test")).InfoContext(ctx, "clue found")

	out := buf.String()
	require.Contains(t, out, "session_id=post-1")
	require.Contains(t, out, "player_id=player-1")
	require.Contains(t, out, "clue_id=hair")
	require.Contains(t, out, "source=test")
}

func TestWithAttrs_siblingsDoNotLeak(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	parent := logging.WithAttrs(context.Background(), slog.String("a", "1"))
	first := logging.WithAttrs(parent, slog.String("b", "2"))
	_ = logging.WithAttrs(parent, slog.String("c", "3"))

	logger.InfoContext(first, "msg")
	require.Contains(t, buf.String(), "b=2")
	require.NotContains(t, buf.String(), "c=3")
}
