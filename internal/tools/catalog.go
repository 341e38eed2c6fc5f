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

import "context"

// Tool names.
const (
	ToolGetDatabases        = "get_databases"
	ToolGetContainers       = "get_containers"
	ToolGetDocumentByField  = "get_document_by_field"
	ToolGetCountOfDocuments = "get_count_of_documents"
	ToolGetCollectionSchema = "get_collection_schema"
	ToolGetSampleDocuments  = "get_sample_documents"
)

// Argument names.
const (
	ArgDatabase  = "database"
	ArgContainer = "container"
	ArgField     = "field"
	ArgValue     = "value"
	ArgFields    = "fields"
	ArgCount     = "count"
)

var (
	databaseParam = Param{
		Name:        ArgDatabase,
		Type:        ParamString,
		Description: "The name of the Cosmos DB database.",
		Required:    true,
	}
	containerParam = Param{
		Name:        ArgContainer,
		Type:        ParamString,
		Description: "The name of the Cosmos DB container.",
		Required:    true,
	}
)

// registerQueryTools registers the six Cosmos DB tools backed by a.
func (r *Registry) registerQueryTools(a *Adapter) {
	r.mustRegister(Definition{
		Name:           ToolGetDatabases,
		Description:    "Gets all databases in the Cosmos DB account.",
		FailureMessage: "Error retrieving databases",
	}, func(ctx context.Context, _ Args) (string, error) {
		return a.ListDatabases(ctx)
	})

	r.mustRegister(Definition{
		Name:           ToolGetContainers,
		Description:    "Gets all containers in the specified database.",
		Params:         []Param{databaseParam},
		FailureMessage: "Error retrieving containers",
	}, func(ctx context.Context, args Args) (string, error) {
		database, err := args.String(ArgDatabase)
		if err != nil {
			return "", err
		}
		return a.ListContainers(ctx, database)
	})

	r.mustRegister(Definition{
		Name:        ToolGetDocumentByField,
		Description: "Gets a document from the specified database and collection by field filter.",
		Params: []Param{
			databaseParam,
			containerParam,
			{Name: ArgField, Type: ParamString, Description: "The field to be used in the query.", Required: true},
			{Name: ArgValue, Type: ParamString, Description: "The value to be used in the query.", Required: true},
			{Name: ArgFields, Type: ParamString, Description: "Comma-separated fields to be used in the query.", Default: AllFields},
		},
		FailureMessage: "Error retrieving documents",
	}, func(ctx context.Context, args Args) (string, error) {
		database, container, err := location(args)
		if err != nil {
			return "", err
		}
		field, err := args.String(ArgField)
		if err != nil {
			return "", err
		}
		value, err := args.String(ArgValue)
		if err != nil {
			return "", err
		}
		fields, err := args.OptionalString(ArgFields, AllFields)
		if err != nil {
			return "", err
		}
		return a.GetDocumentsByField(ctx, database, container, field, value, fields)
	})

	r.mustRegister(Definition{
		Name:           ToolGetCountOfDocuments,
		Description:    "Gets the count of documents in the specified database and collection.",
		Params:         []Param{databaseParam, containerParam},
		FailureMessage: "Error retrieving document count",
	}, func(ctx context.Context, args Args) (string, error) {
		database, container, err := location(args)
		if err != nil {
			return "", err
		}
		return a.CountDocuments(ctx, database, container)
	})

	r.mustRegister(Definition{
		Name:           ToolGetCollectionSchema,
		Description:    "Gets the schema of the specified collection.",
		Params:         []Param{databaseParam, containerParam},
		FailureMessage: "Error retrieving collection schema",
	}, func(ctx context.Context, args Args) (string, error) {
		database, container, err := location(args)
		if err != nil {
			return "", err
		}
		return a.GetCollectionSchema(ctx, database, container)
	})

	r.mustRegister(Definition{
		Name:        ToolGetSampleDocuments,
		Description: "Gets sample documents from the specified database and collection.",
		Params: []Param{
			databaseParam,
			containerParam,
			{Name: ArgCount, Type: ParamInteger, Description: "The number of sample documents to retrieve.", Default: DefaultSampleCount},
		},
		FailureMessage: "Error retrieving sample documents",
	}, func(ctx context.Context, args Args) (string, error) {
		database, container, err := location(args)
		if err != nil {
			return "", err
		}
		count, err := args.Int(ArgCount, DefaultSampleCount)
		if err != nil {
			return "", err
		}
		return a.GetSampleDocuments(ctx, database, container, count)
	})
}

func location(args Args) (database, container string, err error) {
	if database, err = args.String(ArgDatabase); err != nil {
		return "", "", err
	}
	if container, err = args.String(ArgContainer); err != nil {
		return "", "", err
	}
	return database, container, nil
}
