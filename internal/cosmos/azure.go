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
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/go-logr/logr"
)

// Enumeration queries for the account and database feeds.
const (
	queryAllDatabases  = "SELECT * FROM dbs d"
	queryAllContainers = "SELECT * FROM colls c"
)

// ErrMissingEndpoint is returned when no account endpoint is configured.
var ErrMissingEndpoint = errors.New("cosmos account endpoint is not set")

// AzureConfig contains configuration for the Azure Cosmos DB store.
type AzureConfig struct {
	// Endpoint is the account endpoint URL, e.g. https://<account>.documents.azure.com:443/.
	Endpoint string
	// AccountKey is the account key (optional).
	// If not provided, uses DefaultAzureCredential (workload identity, managed identity, etc.).
	AccountKey string
	// ClientOptions are passed through to the Cosmos client.
	ClientOptions *azcosmos.ClientOptions
}

// AzureStore implements Store using the Azure Cosmos DB SDK.
// The client is created once and shared by every tool invocation.
type AzureStore struct {
	client     *azcosmos.Client
	credential azcore.TokenCredential
	log        logr.Logger
}

// Compile-time check that AzureStore implements Store.
var _ Store = (*AzureStore)(nil)

// NewAzureStore creates a new Cosmos DB backed store.
func NewAzureStore(cfg AzureConfig, log logr.Logger) (*AzureStore, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	store := &AzureStore{log: log.WithName("cosmos")}

	var err error
	if cfg.AccountKey != "" {
		var keyCred azcosmos.KeyCredential
		keyCred, err = azcosmos.NewKeyCredential(cfg.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create key credential: %w", err)
		}

		store.client, err = azcosmos.NewClientWithKey(cfg.Endpoint, keyCred, cfg.ClientOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to create Cosmos client with key: %w", err)
		}
		store.log.Info("using account key credential", "endpoint", cfg.Endpoint)
	} else {
		store.credential, err = azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", err)
		}

		store.client, err = azcosmos.NewClient(cfg.Endpoint, store.credential, cfg.ClientOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to create Cosmos client: %w", err)
		}
		store.log.Info("using default Azure credential", "endpoint", cfg.Endpoint)
	}

	return store, nil
}

// Databases enumerates database ids in the account.
func (s *AzureStore) Databases() Pager[string] {
	return &sdkPager[azcosmos.QueryDatabasesResponse, string]{
		pager: s.client.NewQueryDatabasesPager(queryAllDatabases, nil),
		extract: func(resp azcosmos.QueryDatabasesResponse) []string {
			ids := make([]string, 0, len(resp.Databases))
			for _, db := range resp.Databases {
				ids = append(ids, db.ID)
			}
			return ids
		},
	}
}

// Containers enumerates container ids in a database.
// A missing database surfaces as a 404 response error on the first page.
func (s *AzureStore) Containers(database string) (Pager[string], error) {
	db, err := s.client.NewDatabase(database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", database, err)
	}

	return &sdkPager[azcosmos.QueryContainersResponse, string]{
		pager: db.NewQueryContainersPager(queryAllContainers, nil),
		extract: func(resp azcosmos.QueryContainersResponse) []string {
			ids := make([]string, 0, len(resp.Containers))
			for _, c := range resp.Containers {
				ids = append(ids, c.ID)
			}
			return ids
		},
	}, nil
}

// Query runs a cross-partition query against a container.
func (s *AzureStore) Query(database, container, query string) (Pager[json.RawMessage], error) {
	db, err := s.client.NewDatabase(database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", database, err)
	}
	c, err := db.NewContainer(container)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %q: %w", container, err)
	}

	s.log.V(1).Info("running query", "database", database, "container", container, "query", query)

	return &sdkPager[azcosmos.QueryItemsResponse, json.RawMessage]{
		pager: c.NewQueryItemsPager(query, azcosmos.NewPartitionKey(), nil),
		extract: func(resp azcosmos.QueryItemsResponse) []json.RawMessage {
			items := make([]json.RawMessage, 0, len(resp.Items))
			for _, item := range resp.Items {
				items = append(items, json.RawMessage(item))
			}
			return items
		},
	}, nil
}

// Close releases the store. The Cosmos client holds no resources that need
// explicit release; the HTTP pipeline is reclaimed with the process.
func (s *AzureStore) Close() error {
	s.log.Info("closing Cosmos client")
	return nil
}

// sdkPager adapts an azcore runtime.Pager to Pager.
type sdkPager[R any, T any] struct {
	pager   *runtime.Pager[R]
	extract func(R) []T
}

func (p *sdkPager[R, T]) More() bool {
	return p.pager.More()
}

func (p *sdkPager[R, T]) NextPage(ctx context.Context) ([]T, error) {
	resp, err := p.pager.NextPage(ctx)
	if err != nil {
		return nil, err
	}
	return p.extract(resp), nil
}
