package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/rbset/lib/infra"
	"github.com/benz9527/rbset/lib/tree"
	"github.com/benz9527/rbset/observability"
	"github.com/benz9527/rbset/xlog"
)

type appConfig struct {
	values          []int
	logLevel        string
	metrics         string
	metricsAddr     string
	metricsInterval time.Duration
	serve           bool
	verify          bool
	// Log output, stdout if nil.
	out io.Writer
}

func newLogger(cfg *appConfig) xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerName("rbset"),
		xlog.WithXLoggerEncoder(xlog.JSON),
		lo.Ternary(len(cfg.logLevel) > 0, xlog.WithXLoggerLevelName(cfg.logLevel), nil),
		lo.Ternary(cfg.out != nil, xlog.WithXLoggerWriter(cfg.out), nil),
	)
}

func newMetrics(lc fx.Lifecycle, cfg *appConfig, logger xlog.XLogger) (*observability.Metrics, error) {
	kind, err := observability.ParseMetricsExporter(cfg.metrics)
	if err != nil {
		return nil, err
	}
	m, err := observability.InitMetricsExporter(kind, cfg.metricsInterval)
	if err != nil {
		return nil, err
	}
	if kind != observability.NoopMetricsExporter {
		observability.InitAppStats(context.Background(), "rbset", nil)
	}

	var srv *http.Server
	if m.Handler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler)
		srv = &http.Server{
			Addr:              cfg.metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if srv == nil {
				return nil
			}
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return infra.WrapErrorStackWithMessage(err, "[rbset] metrics listen")
			}
			logger.Info("metrics serving", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.ErrorStack(infra.WrapErrorStack(err), "metrics serve failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var err error
			if srv != nil {
				err = srv.Shutdown(ctx)
			}
			return multierr.Append(err, m.Shutdown(ctx))
		},
	})
	return m, nil
}

// The metrics parameter orders the meter provider before the tree instruments.
func newTree(lc fx.Lifecycle, cfg *appConfig, logger xlog.XLogger, _ *observability.Metrics) (tree.RBTree[int], error) {
	meter := observability.Meter("tree")
	opts := []tree.RBTreeOpt[int]{
		tree.WithRBTreeObserver[int](tree.Observers[int](
			xlog.NewTreeObserver[int](logger),
			observability.NewTreeStatsObserver[int](meter),
		)),
		lo.Ternary(cfg.verify, tree.WithRBTreeVerify[int](), nil),
	}

	var rbt tree.RBTree[int]
	if len(cfg.values) > 0 {
		rbt = tree.NewRBTreeFromValues[int](cfg.values, opts...)
	} else {
		rbt = tree.NewRBTree[int](opts...)
	}
	reg, err := observability.ObserveTreeSize[int](meter, rbt)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() error {
		err := reg.Unregister()
		rbt.Release()
		return err
	}))
	return rbt, nil
}

func registerScenario(lc fx.Lifecycle, cfg *appConfig, logger xlog.XLogger, rbt tree.RBTree[int]) {
	lc.Append(fx.StartHook(func(ctx context.Context) error {
		if len(cfg.values) > 0 {
			_, err := runBulk(logger, rbt)
			return err
		}
		_, err := runClassic(logger, rbt)
		return err
	}))
}

func newApp(cfg *appConfig, opts ...fx.Option) *fx.App {
	return fx.New(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newMetrics,
			newTree,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(registerScenario),
		fx.Options(opts...),
	)
}

func run(ctx context.Context, cfg *appConfig) (err error) {
	var logger xlog.XLogger
	app := newApp(cfg, fx.Populate(&logger))
	if err = app.Err(); err != nil {
		return err
	}
	defer func() {
		// Stdout may refuse the fsync, the buffer is flushed anyway.
		_ = logger.Sync()
	}()

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		return err
	}

	if cfg.serve {
		select {
		case <-ctx.Done():
		case <-app.Done():
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return app.Stop(stopCtx)
}
