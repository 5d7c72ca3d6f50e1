package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/eydough/awc-code-updater/internal/challenge"
)

// BadgerStore persists completion maps on disk so that repeated CLI runs
// within the TTL skip the network.
type BadgerStore struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// OpenBadgerStore opens (or creates) a Badger database at path.
func OpenBadgerStore(path string, ttl time.Duration, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerStore{
		db:     db,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	if s.logger != nil {
		s.logger.Debug("closing completion cache")
	}
	return s.db.Close()
}

// Get retrieves cached completion data.
// Returns nil, false, nil if not found or expired.
func (s *BadgerStore) Get(ctx context.Context, username string) (challenge.CompletionMap, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var cached CachedCompletion
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKey(username)))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cached)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached completion: %w", err)
	}

	// Badger drops expired keys lazily; the timestamp is authoritative.
	if time.Since(cached.FetchedAt) > s.ttl {
		return nil, false, nil
	}

	return cached.Media, true, nil
}

// Set stores completion data with the store's TTL.
func (s *BadgerStore) Set(ctx context.Context, username string, media challenge.CompletionMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(CachedCompletion{
		Username:  username,
		Media:     media,
		FetchedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal cached completion: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(cacheKey(username)), data).WithTTL(s.ttl))
	})
}

// Delete removes cached completion data.
func (s *BadgerStore) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(cacheKey(username)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Idempotent
		}
		return err
	})
}
