package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/franckludovic/travelbuddy/internal/client/cli"
	"github.com/franckludovic/travelbuddy/internal/client/config"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	v := viper.GetViper()
	config.ApplyDefaults(v)

	if err := cli.NewRootCommand(v).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
