package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pinboard/internal/buildinfo"
	"github.com/dmitrijs2005/pinboard/internal/client/cli"
	"github.com/dmitrijs2005/pinboard/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	if len(cfg.Args) == 1 && cfg.Args[0] == "version" {
		buildinfo.PrintBuildData(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cfg, os.Stdout)
	if err := app.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
