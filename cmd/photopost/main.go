package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"photopost/internal/cli"
	"photopost/internal/config"
	"photopost/internal/logging"
)

func main() {
	// Credentials may live in a .env file next to the binary, like the
	// directories do. Absence is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot set up logging: %v\n", err)
		os.Exit(1)
	}

	root := cli.NewRoot(cfg, log)
	rootCmd := cli.NewRootCmd(root)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}
