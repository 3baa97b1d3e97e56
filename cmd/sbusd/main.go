// Copyright (c) 2026 The sbus-go Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Command sbusd is the process bootstrap: it loads configuration, wires up
// structured logging and tracing, dials the bus, and brings up the
// registry, dispatcher, and connection binding with the Users interface
// attached.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/uber/jaeger-client-go"
	"go.uber.org/net/metrics"
	"go.uber.org/zap"

	"github.com/sssd-project/sbus-go/busconn"
	"github.com/sssd-project/sbus-go/busdispatch"
	"github.com/sssd-project/sbus-go/bustransport"
	"github.com/sssd-project/sbus-go/domain"
	"github.com/sssd-project/sbus-go/identitystore"
	"github.com/sssd-project/sbus-go/sbusconfig"
	"github.com/sssd-project/sbus-go/users"
)

func main() {
	configPath := flag.String("config", "/etc/sbusd/sbusd.yaml", "path to the sbusd configuration file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("sbusd exited with error", zap.Error(err))
	}
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := sbusconfig.Load(configPath)
	if err != nil {
		return err
	}

	tracer, closer := jaeger.NewTracer("sbusd", jaeger.NewConstSampler(true), jaeger.NewNullReporter())
	defer closer.Close() //nolint:errcheck

	scope := metrics.New().Scope()

	transport, err := bustransport.NewDBusTransport(cfg.BusAddress)
	if err != nil {
		return err
	}
	defer transport.Close() //nolint:errcheck

	if err := transport.RequestName(cfg.BusName); err != nil {
		return err
	}

	registry := busdispatch.NewRegistry()
	dispatcher := busdispatch.NewDispatcher(registry, transport, logger, tracer, scope)
	binding := busconn.New(registry, transport, dispatcher, logger)

	facade := users.NewFacade(users.Config{
		Domains:        domain.NewList(cfg.Domains...),
		Store:          newIdentityStore(cfg),
		AllowedAttrs:   cfg.Users.AllowedAttrsSet(),
		ExtraAttrNames: cfg.Users.ExtraAttrs,
		Logger:         logger,
	})

	// The collection interface answers on the base path itself; the
	// per-user interface answers on every object underneath it.
	if err := binding.RegisterInterface(users.BasePath, facade.CollectionInterface()); err != nil {
		return err
	}
	if err := binding.RegisterInterface(users.BasePath+"/*", facade.UserInterface()); err != nil {
		return err
	}

	logger.Info("sbusd started",
		zap.String("bus_address", cfg.BusAddress),
		zap.String("bus_name", cfg.BusName),
		zap.Strings("domains", cfg.Domains))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("sbusd shutting down")
	return binding.Close()
}

// newIdentityStore is the seam where a concrete identitystore.Store gets
// wired in. The store's internals (the identity cache and its backing
// storage) are a separate component a packager supplies; until then sbusd
// answers every identity query with a clean failure rather than refusing
// to start.
func newIdentityStore(cfg sbusconfig.Config) identitystore.Store {
	return identitystore.Unavailable("no identity cache is configured in this build")
}
