/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package server

// contextKey scopes request context values to this package.
type contextKey string

const contextKeyRequestID contextKey = "requestID"
