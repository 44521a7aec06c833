package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/five82/onair/internal/app"
	"github.com/five82/onair/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config path (optional, defaults to ~/.config/onair/config.toml)")
	area := flag.String("area", "", "NHK area code (optional, defaults to 400)")
	flag.StringVar(area, "a", "", "shorthand for -area")
	key := flag.String("key", "", "NHK API key (optional, overrides "+config.APIKeyEnv+")")
	flag.StringVar(key, "k", "", "shorthand for -key")
	refreshSeconds := flag.Int("refresh", 0, "guide refresh interval in seconds (optional, defaults to 60)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		Overrides: config.Overrides{
			Area:   *area,
			APIKey: *key,
		},
	}
	if secs := *refreshSeconds; secs > 0 {
		opts.Overrides.Refresh = time.Duration(secs) * time.Second
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "onair: %v\n", err)
		return 1
	}
	return 0
}
