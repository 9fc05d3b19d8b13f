// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/beatmaprec/internal/apperr"
	"github.com/tomtom215/beatmaprec/internal/models"
)

// Given-recommendation rows are keyed so that a forward prefix scan yields a
// user's rows newest first:
//
//	given:<user>:<MaxInt64 - unix nanos>:<beatmap>:<mods>
const givenKeyPrefix = "given:"

func givenUserPrefix(user models.UserID) []byte {
	return []byte(fmt.Sprintf("%s%010d:", givenKeyPrefix, user))
}

func givenKey(rec models.GivenRecommendation) []byte {
	inverted := math.MaxInt64 - rec.GivenAt.UnixNano()
	return []byte(fmt.Sprintf("%s%010d:%019d:%010d:%d", givenKeyPrefix, rec.UserID, inverted, rec.BeatmapID, uint64(rec.Mods)))
}

// AppendGiven persists a given recommendation.
func (s *Store) AppendGiven(ctx context.Context, rec models.GivenRecommendation) error {
	return s.setJSON(ctx, "store.append_given", givenKey(rec), rec)
}

// GivenSince returns the user's given recommendations at or after since,
// newest first. A zero since returns the full history.
func (s *Store) GivenSince(ctx context.Context, user models.UserID, since time.Time) ([]models.GivenRecommendation, error) {
	const op = "store.given_since"
	if err := apperr.CheckContext(ctx, op); err != nil {
		return nil, err
	}

	var out []models.GivenRecommendation
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := givenUserPrefix(user)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec models.GivenRecommendation
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %q: %w", it.Item().Key(), err)
			}
			if rec.GivenAt.Before(since) {
				break
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromIO(op, err)
	}
	return out, nil
}

// DeleteGiven removes every given recommendation of user and returns how
// many rows were deleted. The scan and the batch delete are separate
// transactions, so a row appended for user in between survives; a user's
// requests are assumed to arrive sequentially.
func (s *Store) DeleteGiven(ctx context.Context, user models.UserID) (int, error) {
	const op = "store.delete_given"
	if err := apperr.CheckContext(ctx, op); err != nil {
		return 0, err
	}

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := givenUserPrefix(user)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, apperr.FromIO(op, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return 0, apperr.FromIO(op, fmt.Errorf("delete %q: %w", key, err))
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, apperr.FromIO(op, fmt.Errorf("flush deletes: %w", err))
	}

	s.logger.Info().Int("user_id", int(user)).Int("deleted", len(keys)).Msg("deleted given recommendations")
	return len(keys), nil
}
