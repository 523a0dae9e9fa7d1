package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/mogaika/skelanim/config"
	"github.com/mogaika/skelanim/fixture"
	"github.com/mogaika/skelanim/utils"
	"github.com/mogaika/skelanim/web"
)

func main() {
	var addr, fixturePath, configPath string
	var watch bool
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&fixturePath, "fixture", "", "Path to animation fixture (yaml)")
	flag.StringVar(&configPath, "config", "", "Path to exporter config (yaml or toml)")
	flag.BoolVar(&watch, "watch", true, "Reload fixture when it changes on disk")
	flag.Parse()

	if fixturePath == "" {
		flag.PrintDefaults()
		return
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			log.Fatal("Config", "err", err)
		}
	}
	l, err := utils.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal("Logger", "err", err)
	}

	f, err := fixture.Load(fixturePath)
	if err != nil {
		l.Fatal("Fixture", "err", err)
	}
	state, err := web.NewState(f, cfg, l)
	if err != nil {
		l.Fatal("Fixture", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	if watch {
		g.Go(func() error { return fixture.Watch(gctx, fixturePath, l, state.Reload) })
	}
	g.Go(func() error {
		defer stop()
		return web.StartServer(gctx, addr, state)
	})
	if err := g.Wait(); err != nil {
		l.Fatal("Server stopped", "err", err)
	}
}
