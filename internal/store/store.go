// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

// Package store is the BadgerDB-backed persistence layer: given
// recommendations, user options, last visited versions, activity timestamps,
// donator tiers and chat-handle links.
//
// Every failure surfaces as an apperr.ErrTransient (or apperr.ErrCancelled
// when the caller's context ended), never as a raw badger error.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/beatmaprec/internal/apperr"
)

// Config configures the database.
type Config struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory. Intended for tests.
	InMemory bool
}

// Store is the persistence collaborator.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens (or creates) the database described by cfg.
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", "store").Logger()

	path := cfg.Path
	if cfg.InMemory {
		path = ""
	}
	opts := badger.DefaultOptions(path).
		WithInMemory(cfg.InMemory).
		WithLogger(badgerLogger{logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperr.New("store.open", apperr.ErrTransient, fmt.Errorf("open badger at %q: %w", path, err))
	}

	logger.Info().Str("path", path).Bool("in_memory", cfg.InMemory).Msg("store opened")
	return &Store{db: db, logger: logger}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}

// getJSON decodes the value at key into dst. It reports false when the key
// does not exist.
func (s *Store) getJSON(ctx context.Context, op string, key []byte, dst any) (bool, error) {
	if err := apperr.CheckContext(ctx, op); err != nil {
		return false, err
	}

	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
	if err != nil {
		return false, apperr.FromIO(op, err)
	}
	return found, nil
}

// setJSON encodes value and stores it at key.
func (s *Store) setJSON(ctx context.Context, op string, key []byte, value any) error {
	if err := apperr.CheckContext(ctx, op); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return apperr.New(op, apperr.ErrTransient, fmt.Errorf("marshal: %w", err))
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	}); err != nil {
		return apperr.FromIO(op, err)
	}
	return nil
}

// badgerLogger routes badger's internal logging through zerolog.
type badgerLogger struct {
	l zerolog.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error().Msgf(format, args...)
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn().Msgf(format, args...)
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug().Msgf(format, args...)
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Trace().Msgf(format, args...)
}
