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

package server

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/altairalabs/cosmosdb-mcp/internal/tools"
)

// inputSchema builds the JSON schema advertised for a tool's arguments.
// Every tool takes an object; the schema is never nil.
func inputSchema(def tools.Definition) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(def.Params)),
	}
	for _, p := range def.Params {
		prop := &jsonschema.Schema{
			Type:        jsonType(p.Type),
			Description: p.Description,
		}
		if p.Default != nil {
			if raw, err := json.Marshal(p.Default); err == nil {
				prop.Default = raw
			}
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

func jsonType(t tools.ParamType) string {
	if t == tools.ParamInteger {
		return "integer"
	}
	return "string"
}
