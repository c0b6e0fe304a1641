package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/client/cli"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx))
}

func run(ctx context.Context) int {
	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	c, err := cli.Dial(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer c.Close()

	err = cli.NewApp(c, cfg.Timeout, os.Stdin, os.Stdout).Run(ctx, args)
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, err)

	var se *common.StatusError
	if errors.As(err, &se) || errors.Is(err, cli.ErrUsage) {
		return 2
	}
	return 1
}
