// Command server runs the dedupe engine behind an HTTP transport: one
// streaming run endpoint, a cancel endpoint, and standard health checks.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	otelecho "go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/config"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/engine"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/routes/dedupe"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/routes/health"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/tracing"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := ectologger.NewEctoLogger(zapSink(cfg.LogLevel, cfg.PrettyLogs))

	tp := trace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.OtelServiceName))

	driver := engine.NewDriver(logger)

	e := echo.New()
	e.Use(otelecho.Middleware(cfg.OtelServiceName))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = ectoinject.AddSingleton[*engine.Driver](ctx, driver)
			ctx = ectoinject.AddSingleton[ectologger.Logger](ctx, logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	checker := health.NewChecker(cfg.AppName)
	checker.RegisterRoutes(e)

	dedupe.Register(e.Group("/api/v1/dedupe"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           e,
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		logger.WithFields(map[string]any{"port": cfg.Port}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server exited")
			os.Exit(1)
		}
	}()

	checker.SetReady(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	checker.SetReady(false)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

// zapSink adapts ectologger's callback-based construction to a zap
// logger, matching the teacher's logging stack (ectologger facade over
// go.uber.org/zap).
func zapSink(level string, pretty bool) func(ectologger.EctoLogMessage) {
	cfg := zap.NewProductionConfig()
	if pretty {
		cfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}

	return func(msg ectologger.EctoLogMessage) {
		zl.Sugar().Infof("%+v", msg)
	}
}
