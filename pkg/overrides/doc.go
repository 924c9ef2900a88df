/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package overrides turns command-line "slot=value" pairs into forced
// contributions against declared option slots.
package overrides
