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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSchema(t *testing.T) {
	doc := json.RawMessage(`{
		"id": "1",
		"price": 9.5,
		"stock": 12,
		"big": 12345678901234567890,
		"active": false,
		"tags": ["a"],
		"dims": {"w": 1},
		"note": null
	}`)

	schema, err := InferSchema(doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"id":     TypeString,
		"price":  TypeFloat,
		"stock":  TypeInteger,
		"big":    TypeFloat,
		"active": TypeBoolean,
		"tags":   TypeArray,
		"dims":   TypeObject,
		"note":   TypeNull,
	}, schema)
}

func TestInferSchema_ExcludesInternalFields(t *testing.T) {
	doc := json.RawMessage(`{
		"id": "1",
		"_rid": "abc==",
		"_self": "dbs/abc/colls/def/docs/1/",
		"_etag": "\"0000\"",
		"_attachments": "attachments/",
		"_ts": 1700000000,
		"_custom": "kept"
	}`)

	schema, err := InferSchema(doc)
	require.NoError(t, err)
	for _, name := range []string{"_rid", "_self", "_etag", "_attachments", "_ts"} {
		assert.NotContains(t, schema, name)
		assert.True(t, IsInternalField(name))
	}
	assert.Equal(t, map[string]string{"id": TypeString, "_custom": TypeString}, schema)
}

func TestInferSchema_NotAnObject(t *testing.T) {
	for _, doc := range []string{`[1, 2]`, `"text"`, `42`, `null`} {
		_, err := InferSchema(json.RawMessage(doc))
		assert.ErrorIs(t, err, ErrNotAnObject, "doc %s", doc)
	}
}

func TestInferSchema_InvalidJSON(t *testing.T) {
	_, err := InferSchema(json.RawMessage(`{"id":`))
	assert.ErrorContains(t, err, "failed to decode sample document")
}
