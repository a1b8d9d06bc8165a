// Package main provides the entry point for the mcpsync CLI tool.
package main

import "github.com/chatbox-community/mcpsync/cmd/mcpsync/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
