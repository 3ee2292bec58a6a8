package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/secondmind/internal/admin/cli"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCommand(cli.DefaultDeps()).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
