// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field ranges and cross-field rules.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return translate(verrs)
		}
		return fmt.Errorf("validate config: %w", err)
	}

	if !c.Store.InMemory && strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path is required unless store.in_memory is set")
	}
	if c.Cache.TTL > 0 && c.Cache.NegativeTTL > c.Cache.TTL {
		return fmt.Errorf("cache.negative_ttl (%v) must not exceed cache.ttl (%v)", c.Cache.NegativeTTL, c.Cache.TTL)
	}
	if c.Ledger.EventsEnabled && c.Ledger.EventBuffer < 1 {
		return errors.New("ledger.event_buffer must be positive when ledger events are enabled")
	}
	return nil
}

// translate turns validator errors into one readable error naming every
// failing field by its config path.
func translate(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", path, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s (got %v)", path, fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
