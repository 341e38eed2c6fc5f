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

	"golang.org/x/time/rate"
)

const errMsgAcquirePageToken = "acquire page rate limit token"

// RateLimitedStore caps the rate of page reads against the wrapped store.
// Every NextPage call waits for a token; enumeration and query calls that
// only build a pager are not limited.
type RateLimitedStore struct {
	Store
	limiter *rate.Limiter
}

// NewRateLimitedStore wraps store with a token bucket allowing perSecond page
// reads with the given burst. A perSecond of zero or less returns store unchanged.
func NewRateLimitedStore(store Store, perSecond float64, burst int) Store {
	if perSecond <= 0 {
		return store
	}
	if burst <= 0 {
		burst = max(1, int(perSecond))
	}
	return &RateLimitedStore{
		Store:   store,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Databases enumerates database ids at the limited rate.
func (s *RateLimitedStore) Databases() Pager[string] {
	return &limitedPager[string]{Pager: s.Store.Databases(), limiter: s.limiter}
}

// Containers enumerates container ids at the limited rate.
func (s *RateLimitedStore) Containers(database string) (Pager[string], error) {
	p, err := s.Store.Containers(database)
	if err != nil {
		return nil, err
	}
	return &limitedPager[string]{Pager: p, limiter: s.limiter}, nil
}

// Query runs a query whose pages are read at the limited rate.
func (s *RateLimitedStore) Query(database, container, query string) (Pager[json.RawMessage], error) {
	p, err := s.Store.Query(database, container, query)
	if err != nil {
		return nil, err
	}
	return &limitedPager[json.RawMessage]{Pager: p, limiter: s.limiter}, nil
}

type limitedPager[T any] struct {
	Pager[T]
	limiter *rate.Limiter
}

func (p *limitedPager[T]) NextPage(ctx context.Context) ([]T, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", errMsgAcquirePageToken, err)
	}
	return p.Pager.NextPage(ctx)
}
