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
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultPageSize is the number of items per page served by MemoryStore.
const DefaultPageSize = 100

// Fixture is the YAML document loaded by MemoryStore.
//
//	pageSize: 2
//	databases:
//	  - id: catalog
//	    containers:
//	      - id: products
//	        documents:
//	          - {id: "1", name: widget, price: 9.5}
type Fixture struct {
	PageSize  int               `yaml:"pageSize"`
	Databases []FixtureDatabase `yaml:"databases"`
}

// FixtureDatabase is one database in a Fixture.
type FixtureDatabase struct {
	ID         string             `yaml:"id"`
	Containers []FixtureContainer `yaml:"containers"`
}

// FixtureContainer is one container in a FixtureDatabase.
type FixtureContainer struct {
	ID        string           `yaml:"id"`
	Documents []map[string]any `yaml:"documents"`
}

// MemoryStore serves databases, containers and documents from memory.
// It understands the query shapes the tools emit and nothing more.
type MemoryStore struct {
	mu        sync.RWMutex
	pageSize  int
	databases []memoryDatabase
}

type memoryDatabase struct {
	id         string
	containers []memoryContainer
}

type memoryContainer struct {
	id        string
	documents []map[string]any
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store from a fixture.
func NewMemoryStore(f Fixture) *MemoryStore {
	s := &MemoryStore{pageSize: f.PageSize}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	for _, db := range f.Databases {
		mdb := memoryDatabase{id: db.ID}
		for _, c := range db.Containers {
			mdb.containers = append(mdb.containers, memoryContainer{id: c.ID, documents: c.Documents})
		}
		s.databases = append(s.databases, mdb)
	}
	return s
}

// LoadMemoryStore reads a YAML fixture file and builds a store from it.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return ParseMemoryStore(data)
}

// ParseMemoryStore builds a store from YAML fixture data.
func ParseMemoryStore(data []byte) (*MemoryStore, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	for _, db := range f.Databases {
		if db.ID == "" {
			return nil, fmt.Errorf("fixture database without id")
		}
		for _, c := range db.Containers {
			if c.ID == "" {
				return nil, fmt.Errorf("fixture container without id in database %q", db.ID)
			}
		}
	}
	return NewMemoryStore(f), nil
}

// Databases enumerates database ids.
func (s *MemoryStore) Databases() Pager[string] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.databases))
	for _, db := range s.databases {
		ids = append(ids, db.id)
	}
	return paginate(ids, s.pageSize)
}

// Containers enumerates container ids of a database.
func (s *MemoryStore) Containers(database string) (Pager[string], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.database(database)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(db.containers))
	for _, c := range db.containers {
		ids = append(ids, c.id)
	}
	return paginate(ids, s.pageSize), nil
}

// Query evaluates a query against a container's documents.
func (s *MemoryStore) Query(database, container, query string) (Pager[json.RawMessage], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.database(database)
	if err != nil {
		return nil, err
	}
	var docs []map[string]any
	found := false
	for _, c := range db.containers {
		if c.id == container {
			docs, found = c.documents, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("container %q in database %q: %w", container, database, ErrNotFound)
	}

	q, err := parseQuery(query)
	if err != nil {
		return nil, err
	}
	items, err := q.evaluate(docs)
	if err != nil {
		return nil, err
	}
	return paginate(items, s.pageSize), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) database(id string) (*memoryDatabase, error) {
	for i := range s.databases {
		if s.databases[i].id == id {
			return &s.databases[i], nil
		}
	}
	return nil, fmt.Errorf("database %q: %w", id, ErrNotFound)
}

// paginate splits items into pages. An empty result is one empty page,
// which is how the service answers a query that matches nothing.
func paginate[T any](items []T, size int) *StaticPager[T] {
	if len(items) == 0 {
		return NewStaticPager([]T{})
	}
	var pages [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		pages = append(pages, items[start:end])
	}
	return NewStaticPager(pages...)
}

var queryPattern = regexp.MustCompile(
	`(?i)^\s*SELECT\s+(?:(VALUE\s+COUNT\(1\))|(?:TOP\s+(\d+)\s+)?(\*|[\w.,\s]+?))\s+FROM\s+c` +
		`(?:\s+WHERE\s+c\.(\w+)\s*=\s*'(.*)')?\s*$`)

// memoryQuery is the parsed form of a supported query.
type memoryQuery struct {
	count      bool
	top        int
	projection []string
	filterKey  string
	filterVal  string
	filtered   bool
}

func parseQuery(query string) (*memoryQuery, error) {
	m := queryPattern.FindStringSubmatch(query)
	if m == nil {
		return nil, fmt.Errorf("unsupported query: %s", query)
	}

	q := &memoryQuery{count: m[1] != "", top: -1}
	if m[2] != "" {
		top, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("invalid TOP value %q: %w", m[2], err)
		}
		q.top = top
	}
	if sel := strings.TrimSpace(m[3]); sel != "" && sel != "*" {
		for _, field := range strings.Split(sel, ",") {
			field = strings.TrimSpace(field)
			name, ok := strings.CutPrefix(field, "c.")
			if !ok || name == "" {
				return nil, fmt.Errorf("unsupported projection %q in query: %s", field, query)
			}
			q.projection = append(q.projection, name)
		}
	}
	if m[4] != "" {
		q.filtered = true
		q.filterKey, q.filterVal = m[4], m[5]
	}
	return q, nil
}

func (q *memoryQuery) evaluate(docs []map[string]any) ([]json.RawMessage, error) {
	var matched []map[string]any
	for _, doc := range docs {
		if q.filtered {
			v, ok := doc[q.filterKey].(string)
			if !ok || v != q.filterVal {
				continue
			}
		}
		matched = append(matched, doc)
		if q.top >= 0 && len(matched) >= q.top {
			break
		}
	}
	if q.top == 0 {
		matched = nil
	}

	if q.count {
		return []json.RawMessage{json.RawMessage(strconv.Itoa(len(matched)))}, nil
	}

	items := make([]json.RawMessage, 0, len(matched))
	for _, doc := range matched {
		out := doc
		if len(q.projection) > 0 {
			out = make(map[string]any, len(q.projection))
			for _, name := range q.projection {
				if v, ok := doc[name]; ok {
					out[name] = v
				}
			}
		}
		raw, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("failed to encode document: %w", err)
		}
		items = append(items, raw)
	}
	return items, nil
}
