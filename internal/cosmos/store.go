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

// Package cosmos defines the document store contract used by the tools and
// its implementations: Azure Cosmos DB, an in-memory fixture store, and a
// rate-limiting decorator.
package cosmos

import (
	"context"
	"encoding/json"
	"errors"
)

// Pager is a lazy sequence of result pages. More reports whether another
// page can be read; NextPage fetches it.
type Pager[T any] interface {
	More() bool
	NextPage(ctx context.Context) ([]T, error)
}

// Store is the subset of a document database account the tools need.
// Implementations must be safe for concurrent use.
type Store interface {
	// Databases enumerates database ids in the account.
	Databases() Pager[string]

	// Containers enumerates container ids in a database.
	Containers(database string) (Pager[string], error)

	// Query runs a SQL query against a container. Items are raw JSON documents.
	Query(database, container, query string) (Pager[json.RawMessage], error)

	// Close releases resources held by the store.
	Close() error
}

// ErrNotFound is returned when a database or container does not exist.
var ErrNotFound = errors.New("resource not found")

// StaticPager serves pre-built pages in order.
type StaticPager[T any] struct {
	pages [][]T
	next  int
}

// NewStaticPager returns a pager over the given pages.
func NewStaticPager[T any](pages ...[]T) *StaticPager[T] {
	return &StaticPager[T]{pages: pages}
}

// More reports whether pages remain.
func (p *StaticPager[T]) More() bool {
	return p.next < len(p.pages)
}

// NextPage returns the next page.
func (p *StaticPager[T]) NextPage(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.More() {
		return nil, errors.New("no more pages")
	}
	page := p.pages[p.next]
	p.next++
	return page, nil
}
