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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Request is a single named tool invocation.
type Request struct {
	// Name is the tool identifier, e.g. "get_databases".
	Name string
	// Args are the named arguments supplied by the caller.
	Args Args
}

// Result is what a tool invocation returns to the caller.
type Result struct {
	// Payload is the response text: a joined list, a JSON object, or the
	// message of the failure that aborted the invocation.
	Payload string
	// Failed is set when Payload carries a failure message.
	Failed bool
}

// Args holds named tool arguments as decoded from JSON.
type Args map[string]any

// DecodeArgs decodes a JSON object of arguments. Numbers are kept as
// json.Number so integer arguments survive without float rounding.
// Empty input and JSON null decode to empty Args.
func DecodeArgs(data []byte) (Args, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Args{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var args Args
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	if args == nil {
		args = Args{}
	}
	return args, nil
}

// String returns a required string argument.
func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", name, v)
	}
	return s, nil
}

// OptionalString returns a string argument, or def when it is absent or empty.
func (a Args) OptionalString(name, def string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", name, v)
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// Int returns an integer argument, or def when it is absent.
// JSON numbers with no fractional part and numeric strings are accepted.
func (a Args) Int(name string, def int) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("argument %q must be an integer, got %v", name, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("argument %q must be an integer, got %s", name, n)
		}
		return int(i), nil
	case string:
		if n == "" {
			return def, nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("argument %q must be an integer, got %q", name, n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("argument %q must be an integer, got %T", name, v)
}
