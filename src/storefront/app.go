package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/cart"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/cartstore"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/catalog"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/checkout"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/config"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/notify"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/presenter"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/services"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/shell"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/telemetry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// deps holds what both front ends share.
type deps struct {
	cfg     config.Config
	log     *logrus.Logger
	store   *cartstore.Store
	catalog *catalog.Memory
	orders  checkout.OrderClient
	closers []func() error
}

func (rt *deps) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.log.WithError(err).Warn("shutdown")
		}
	}
}

func setup(ctx context.Context, c *cli.Context, logOut io.Writer) (*deps, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	log := config.NewLogger(cfg.LogLevel, logOut)
	rt := &deps{cfg: cfg, log: log}

	shutdown, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName:  "storefront",
		OTLPEndpoint: cfg.OTLPEndpoint,
		Stdout:       cfg.TracesStdout,
		StdoutWriter: logOut,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init telemetry")
	}
	rt.closers = append(rt.closers, func() error {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return shutdown(sctx)
	})

	slot, err := newSlot(cfg, log)
	if err != nil {
		rt.close()
		return nil, err
	}
	if err := slot.Initialize(ctx); err != nil {
		rt.close()
		return nil, errors.Wrapf(err, "initialize %s cart store", cfg.CartStore)
	}
	if closer, ok := slot.(io.Closer); ok {
		rt.closers = append(rt.closers, closer.Close)
	}
	rt.store = cartstore.NewStore(slot, log)
	log.WithFields(logrus.Fields{"backend": cfg.CartStore, "slot": cfg.CartSlotKey}).Info("cart store ready")

	httpClient := &http.Client{Timeout: cfg.APITimeout}
	rt.catalog, err = catalog.Load(ctx, catalog.NewClient(cfg.APIBaseURL, httpClient), log)
	if err != nil {
		rt.close()
		return nil, errors.Wrap(err, "load catalog")
	}
	rt.orders = checkout.NewHTTPOrderClient(cfg.APIBaseURL, httpClient)
	return rt, nil
}

func newSlot(cfg config.Config, log logrus.FieldLogger) (cartstore.Slot, error) {
	switch cfg.CartStore {
	case config.StoreMemory:
		return cartstore.NewLocalSlot(), nil
	case config.StoreFile:
		return cartstore.NewFileSlot(cfg.CartStoreDir, cfg.CartSlotKey), nil
	case config.StoreRedis:
		log.WithField("addr", cfg.RedisAddr).Info("using redis cart store")
		return cartstore.NewRedisSlot(cfg.RedisAddr, cfg.CartSlotKey, log), nil
	}
	return nil, errors.Errorf("unknown cart store %q", cfg.CartStore)
}

func runShell(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx, c, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.close()

	out := os.Stdout
	view := presenter.NewView(out, rt.log)
	notifier := notify.NewWriterNotifier(out, rt.log)
	engine := cart.NewEngine(ctx, rt.store, rt.catalog, view, notifier)
	flow := checkout.NewFlow(engine, view, rt.orders, notifier, rt.log)

	return shell.New(os.Stdin, out, engine, rt.catalog, view, flow, rt.log).Run(ctx)
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx, c, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.close()
	log := rt.log

	view := presenter.NewView(nil, log)
	feed := notify.NewFeed(50)
	notifier := notify.Fanout{feed, notify.NewWriterNotifier(nil, log)}
	engine := cart.NewEngine(ctx, rt.store, rt.catalog, view, notifier)
	flow := checkout.NewFlow(engine, view, rt.orders, notifier, log)

	api := services.NewCartService(engine, view, rt.catalog, flow, feed, rt.store, log)
	httpSrv := &http.Server{
		Addr:              net.JoinHostPort("", rt.cfg.Port),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcSrv := services.NewGRPCServer(services.NewHealthCheckService(rt.store, log))
	healthAddr := net.JoinHostPort("", rt.cfg.HealthPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("kiosk cart API listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", healthAddr)
		if err != nil {
			return errors.Wrapf(err, "listen on %s", healthAddr)
		}
		log.Infof("health service listening on %s", healthAddr)
		return errors.Wrap(grpcSrv.Serve(lis), "grpc server")
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(sctx)
	})
	return g.Wait()
}
