// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project
//
// Shadowband - AOK Remote Protocol Toolkit
//
// A CLI tool for transmitting, capturing, and analyzing AOK-family
// 433 MHz OOK shade-remote traffic through a pulse bridge.

package main

import (
	"os"

	"github.com/openshade/shadowband/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
