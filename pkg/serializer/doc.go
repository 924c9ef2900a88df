/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer writes engine documents as YAML, JSON, or aligned
// text tables.
package serializer
