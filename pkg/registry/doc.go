/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package registry implements the option registry: the set of declared
// configuration slots each with a path, a value type, a default, and
// documentation.
//
// The registry is populated during an initialization phase (from built-in
// declarations and profile option blocks) and frozen before contributions
// are collected. After Freeze it is immutable.
package registry
