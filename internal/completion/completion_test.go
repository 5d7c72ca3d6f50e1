package completion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/eydough/awc-code-updater/internal/challenge"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleMap() challenge.CompletionMap {
	finish := "2023-02-01"
	return challenge.CompletionMap{
		"anime-23273": {Title: "Your Lie in April", MediaType: challenge.MediaAnime, FinishDate: &finish},
	}
}

// fakeSource counts calls and returns a fixed result.
type fakeSource struct {
	calls atomic.Int32
	media challenge.CompletionMap
	err   error
}

func (f *fakeSource) FetchAllCompleted(_ context.Context, _ string) (challenge.CompletionMap, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.media, nil
}

// failingStore errors on every operation.
type failingStore struct{}

var errStore = errors.New("store unavailable")

func (failingStore) Get(context.Context, string) (challenge.CompletionMap, bool, error) {
	return nil, false, errStore
}

func (failingStore) Set(context.Context, string, challenge.CompletionMap) error { return errStore }

func (failingStore) Delete(context.Context, string) error { return errStore }

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nea", "nea"},
		{"  Nea\t", "nea"},
		{"ＮＥＡ", "nea"}, // Fullwidth folds under NFKC
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeUsername(tt.in), "NormalizeUsername(%q)", tt.in)
	}
}
