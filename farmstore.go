//go:build !cli
// +build !cli

package main

import (
	"farmstore.GO/cmd"
	"farmstore.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Serve()
}
