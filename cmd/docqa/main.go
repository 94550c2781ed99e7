// Package main is the docqa CLI entry point.
package main

import (
	"github.com/hyperjump/docqa/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal; the environment may already carry OPENAI_API_KEY.
	_ = godotenv.Load()
	cli.Execute()
}
