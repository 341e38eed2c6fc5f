/*
Copyright 2026 Altaira Labs.

SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cosmos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/sony/gobreaker/v2"
)

// DefaultBreakerCooldown is how long an open breaker rejects page reads
// before letting a probe through.
const DefaultBreakerCooldown = 30 * time.Second

// BreakerStore fails page reads fast while the account keeps failing.
// Enumeration and query calls that only build a pager pass straight through.
type BreakerStore struct {
	Store
	cb *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps store with a circuit breaker that opens after
// failures consecutive upstream failures and stays open for cooldown.
// Caller mistakes such as a missing container or a bad query never trip it.
// A failures value of zero returns store unchanged.
func NewBreakerStore(store Store, failures uint32, cooldown time.Duration, log logr.Logger) Store {
	if failures == 0 {
		return store
	}
	if cooldown <= 0 {
		cooldown = DefaultBreakerCooldown
	}
	log = log.WithName("breaker")

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "cosmos",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerStore{Store: store, cb: cb}
}

// countsAsSuccess reports whether err says nothing about account health.
func countsAsSuccess(err error) bool {
	switch Classify(err) {
	case "", ClassNotFound, ClassBadRequest, ClassCanceled:
		return true
	}
	return false
}

// Databases enumerates database ids behind the breaker.
func (s *BreakerStore) Databases() Pager[string] {
	return &breakerPager[string]{Pager: s.Store.Databases(), cb: s.cb}
}

// Containers enumerates container ids behind the breaker.
func (s *BreakerStore) Containers(database string) (Pager[string], error) {
	p, err := s.Store.Containers(database)
	if err != nil {
		return nil, err
	}
	return &breakerPager[string]{Pager: p, cb: s.cb}, nil
}

// Query runs a query whose pages are read behind the breaker.
func (s *BreakerStore) Query(database, container, query string) (Pager[json.RawMessage], error) {
	p, err := s.Store.Query(database, container, query)
	if err != nil {
		return nil, err
	}
	return &breakerPager[json.RawMessage]{Pager: p, cb: s.cb}, nil
}

type breakerPager[T any] struct {
	Pager[T]
	cb *gobreaker.CircuitBreaker[any]
}

func (p *breakerPager[T]) NextPage(ctx context.Context) ([]T, error) {
	out, err := p.cb.Execute(func() (any, error) {
		page, err := p.Pager.NextPage(ctx)
		return page, err
	})
	if err != nil {
		if isBreakerRejection(err) {
			return nil, fmt.Errorf("cosmos account unavailable: %w", err)
		}
		return nil, err
	}
	page, _ := out.([]T)
	return page, nil
}
