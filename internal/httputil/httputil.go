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

// Package httputil provides shared HTTP constants and response writers.
package httputil

import (
	"encoding/json"
	"net/http"
)

// Common HTTP header names and content types.
const (
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
	ContentTypeText   = "text/plain; charset=utf-8"
)

// WriteJSON writes v as JSON with the given status code.
// HTML characters are left unescaped so query text reads as written.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteText writes a plain-text body with the given status code.
func WriteText(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set(HeaderContentType, ContentTypeText)
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}
