// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

/*
Package services provides suture.Service wrappers for the recommender's
background work.

Each service implements suture.Service and fmt.Stringer, runs until its
context is canceled, and returns an error when the supervisor should restart
it.

Cache Janitor (CacheJanitorService):
  - Sweeps expired metadata cache entries on a fixed interval
  - Entries past their TTL are already invisible to readers; sweeping frees memory

Ledger Event Log (EventLogService):
  - Subscribes to recommendation.given and recommendation.forgotten
  - Logs each event with its payload and acks it
*/
package services
