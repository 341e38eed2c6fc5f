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
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/sony/gobreaker/v2"
)

// Error classes used as a log and metric dimension. They follow the failure
// taxonomy of the tool server: resolution failures (not found) and execution
// failures (bad query, auth, throttling, transport).
const (
	ClassNotFound     = "not_found"
	ClassBadRequest   = "bad_request"
	ClassUnauthorized = "unauthorized"
	ClassThrottled    = "throttled"
	ClassUnavailable  = "unavailable"
	ClassCanceled     = "canceled"
	ClassUnknown      = "unknown"
)

// Classify maps an upstream error onto one of the error classes.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotFound) {
		return ClassNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassCanceled
	}
	if isBreakerRejection(err) {
		return ClassUnavailable
	}

	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return ClassUnknown
	}
	switch respErr.StatusCode {
	case http.StatusNotFound:
		return ClassNotFound
	case http.StatusBadRequest:
		return ClassBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return ClassUnauthorized
	case http.StatusTooManyRequests:
		return ClassThrottled
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ClassUnavailable
	}
	return ClassUnknown
}

// isBreakerRejection reports whether err comes from an open or probing breaker.
func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
