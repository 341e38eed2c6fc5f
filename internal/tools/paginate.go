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

package tools

import (
	"context"

	"github.com/altairalabs/cosmosdb-mcp/internal/cosmos"
)

// pageStats counts what a pagination loop read.
type pageStats struct {
	pages int
	items int
}

// collect reads every page of p in order and concatenates the items.
// A failed page read aborts the loop; nothing read so far is returned.
// observe, if set, is called after each page with its item count.
func collect[T any](ctx context.Context, p cosmos.Pager[T], observe func(items int)) ([]T, pageStats, error) {
	var (
		out   []T
		stats pageStats
	)
	for p.More() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, stats, err
		}
		stats.pages++
		stats.items += len(page)
		if observe != nil {
			observe(len(page))
		}
		out = append(out, page...)
	}
	return out, stats, nil
}
