/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"

	"github.com/hostplan/hostplan/pkg/cli"
)

func main() {
	os.Exit(cli.Run())
}
