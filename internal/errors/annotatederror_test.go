package errors

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := NewSentinel("test error")
	require.NotErrorIs(t, err, NewSentinel("test error"))
	wrapped := Wrap(sentinel, "wrapping", slog.String("case_id", "rue-morgue"))
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "wrapping: test error", wrapped.Error())

	// Ensure log values are coming through.
	var annotated *AnnotatedError
	require.True(t, As(err, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.NotEqual(t, -1, sourceIdx)
	require.Contains(t, group[sourceIdx].Value.String(), "annotatederror_test.go")
}

func TestSlogError(t *testing.T) {
	inner := New("inner", slog.String("clue_id", "hair"))
	outer := Wrap(inner, "outer", slog.String("player_id", "p1"))

	attr := SlogError(outer)
	require.Equal(t, "error", attr.Key)
	group := attr.Value.Group()
	require.Contains(t, group, slog.String("msg", "outer: inner"))
	require.Contains(t, group, slog.String("clue_id", "hair"))
	require.Contains(t, group, slog.String("player_id", "p1"))
}
