package main

import (
	"github.com/joho/godotenv"

	"github.com/devicelab-dev/uiresolve/pkg/cli"
	"github.com/devicelab-dev/uiresolve/pkg/logger"
)

func main() {
	// A missing .env is fine; flags and real env still apply.
	_ = godotenv.Load()

	defer logger.Close()
	cli.Execute()
}
