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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Type names reported by schema inference. They follow JSON token kinds.
const (
	TypeString  = "String"
	TypeInteger = "Integer"
	TypeFloat   = "Float"
	TypeBoolean = "Boolean"
	TypeObject  = "Object"
	TypeArray   = "Array"
	TypeNull    = "Null"
)

// internalFields are system properties Cosmos DB adds to every document.
var internalFields = map[string]struct{}{
	"_rid":         {},
	"_self":        {},
	"_etag":        {},
	"_attachments": {},
	"_ts":          {},
}

// IsInternalField reports whether name is a system property excluded from schemas.
func IsInternalField(name string) bool {
	_, ok := internalFields[name]
	return ok
}

// ErrNotAnObject is returned when a schema sample is not a JSON object.
var ErrNotAnObject = errors.New("sample document is not a JSON object")

// InferSchema maps every top-level field of one sample document to the name
// of its value's type. System properties are left out. Only the given
// document is inspected.
func InferSchema(doc json.RawMessage) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotAnObject
		}
		return nil, fmt.Errorf("failed to decode sample document: %w", err)
	}
	if fields == nil {
		return nil, ErrNotAnObject
	}

	schema := make(map[string]string, len(fields))
	for name, value := range fields {
		if IsInternalField(name) {
			continue
		}
		schema[name] = typeName(value)
	}
	return schema, nil
}

func typeName(v any) string {
	switch n := v.(type) {
	case nil:
		return TypeNull
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return TypeInteger
		}
		return TypeFloat
	case map[string]any:
		return TypeObject
	case []any:
		return TypeArray
	}
	return fmt.Sprintf("%T", v)
}
