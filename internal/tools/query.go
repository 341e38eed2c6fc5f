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
	"fmt"
	"strings"
)

// Query text issued by the tools.
const (
	// AllFields selects every document field.
	AllFields = "*"

	// CountQuery counts every document in a container.
	CountQuery = "SELECT VALUE COUNT(1) FROM c"

	// SchemaSampleQuery fetches the single document used for schema inference.
	SchemaSampleQuery = "SELECT TOP 1 * FROM c"

	// DefaultSampleCount is the number of documents returned by get_sample_documents
	// when no count is given.
	DefaultSampleCount = 5
)

// DocumentsByFieldQuery builds the equality filter query for get_document_by_field.
// fields is "*" or a comma-separated list of field names, each projected as c.<name>.
//
// The value is placed between single quotes as-is. A value containing a quote
// breaks out of the literal; callers that need safety must not rely on this
// query for untrusted input.
func DocumentsByFieldQuery(field, value, fields string) string {
	return fmt.Sprintf("SELECT %s FROM c WHERE c.%s = '%s'", projection(fields), field, value)
}

// SampleQuery builds the query for get_sample_documents.
func SampleQuery(count int) string {
	return fmt.Sprintf("SELECT TOP %d * FROM c", count)
}

func projection(fields string) string {
	if fields == AllFields {
		return AllFields
	}
	names := strings.Split(fields, ",")
	for i, name := range names {
		names[i] = "c." + name
	}
	return strings.Join(names, ",")
}
