// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

/*
Package supervisor runs the recommender's background services under suture v4.

The tree is organized into two layers:

	RootSupervisor ("beatmaprec")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── CacheJanitorService
	└── EventsSupervisor ("events-layer")
	    └── EventLogService (if LEDGER_EVENTS_ENABLED)

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog using the slog bridge from the logging package.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMaintenanceService(services.NewCacheJanitorService(interval, logger, metaCache))
	tree.AddEventService(services.NewEventLogService(bus, logger))
	errCh := tree.ServeBackground(ctx)

Services live in the services subpackage.
*/
package supervisor
