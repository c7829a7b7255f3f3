package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/auth-flow/internal/config"
	"github.com/pribylovaa/auth-flow/internal/form"
	"github.com/pribylovaa/auth-flow/internal/metrics"
	"github.com/pribylovaa/auth-flow/internal/models"
	"github.com/pribylovaa/auth-flow/internal/service"
	"github.com/pribylovaa/auth-flow/internal/storage"
	"github.com/pribylovaa/auth-flow/internal/storage/memory"
	"github.com/pribylovaa/auth-flow/internal/storage/redis"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Режим социального входа для флага -mode.
const modeSocial = "social"

type flags struct {
	config      string
	mode        string
	email       string
	password    string
	name        string
	provider    string
	account     string
	metricsAddr string
	wait        bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.config, "config", "", "path to config file")
	flag.StringVar(&f.mode, "mode", string(form.ModeLogin), "login|signup|social")
	flag.StringVar(&f.email, "email", "", "e-mail for login/signup")
	flag.StringVar(&f.password, "password", "", "password for login/signup")
	flag.StringVar(&f.name, "name", "", "display name for signup")
	flag.StringVar(&f.provider, "provider", string(models.ProviderGoogle), "social provider: google|facebook|github|apple")
	flag.StringVar(&f.account, "account", "", "account id in the picker (first account if empty)")
	flag.StringVar(&f.metricsAddr, "metrics-addr", "", "serve /metrics on this address while waiting")
	flag.BoolVar(&f.wait, "wait", false, "keep running the janitor until interrupted")
	flag.Parse()

	return f
}

func main() {
	// .env не обязателен.
	_ = godotenv.Load()

	f := parseFlags()
	cfg := config.MustLoad(f.config)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// Реестр сессий c таймаутом на подключение.
	regCtx, regCancel := context.WithTimeout(rootCtx, 10*time.Second)
	reg, err := openRegistry(regCtx, cfg.Registry)
	regCancel()
	if err != nil {
		log.Error("registry_open_failed",
			slog.String("backend", cfg.Registry.Backend),
			slog.String("err", err.Error()),
		)
		os.Exit(1)
	}
	defer reg.Close()
	log.Info("registry_opened", slog.String("backend", cfg.Registry.Backend))

	m := metrics.New(prometheus.DefaultRegisterer)

	svcOpts := []service.Option{service.WithMetrics(m)}
	if !cfg.Latency.Disabled {
		svcOpts = append(svcOpts, service.WithLatency(service.SimulatedLatency{
			Min: cfg.Latency.Min,
			Max: cfg.Latency.Max,
		}))
	}
	svc := service.New(reg, cfg.Auth, svcOpts...)
	log.Info("service_initialized")

	code := run(rootCtx, log, svc, m, cfg.Form, f)

	if f.wait && code == 0 {
		var httpSrv *http.Server
		if f.metricsAddr != "" {
			httpSrv = startMetricsServer(log, f.metricsAddr)
		}

		startJanitor(rootCtx, svc, log, cfg.Registry.JanitorPeriod)
		<-rootCtx.Done()
		log.Info("shutdown_requested")

		if httpSrv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = httpSrv.Shutdown(shutdownCtx)
			shutdownCancel()
		}
	}

	log.Info("application_stopped")
	if code != 0 {
		rootCancel()
		_ = reg.Close()
		os.Exit(code)
	}
}

// run выполняет один сценарий формы и возвращает код выхода.
func run(ctx context.Context, log *slog.Logger, svc *service.Service, m *metrics.Metrics, fc config.FormConfig, f flags) int {
	mode := form.ModeLogin
	switch f.mode {
	case string(form.ModeLogin), modeSocial:
	case string(form.ModeSignup):
		mode = form.ModeSignup
	default:
		log.Error("unknown_mode", slog.String("mode", f.mode))
		return 2
	}

	nav := form.NavigatorFunc(func(path string) {
		log.Info("navigate", slog.String("path", path))
	})

	c := form.New(mode, svc, nav,
		form.WithDestination(fc.Destination),
		form.WithTimeout(fc.SubmitTimeout),
		form.WithMetrics(m),
		form.WithLogger(log),
	)
	defer c.Close()

	unsubscribe := c.Subscribe(func(s form.Snapshot) {
		log.Debug("form_state", slog.String("state", string(s.State)), slog.Bool("loading", s.Loading()))
	})
	defer unsubscribe()

	var err error
	if f.mode == modeSocial {
		err = runSocial(ctx, c, f)
	} else {
		err = runCredentials(ctx, c, f)
	}

	if err != nil {
		msg := form.MessageFor(err)
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			for field, text := range verr.Fields {
				log.Warn("field_invalid", slog.String("field", string(field)), slog.String("message", text))
			}
		}
		log.Error("submit_failed", slog.String("code", msg.Code), slog.String("message", msg.Text))
		return 1
	}

	snap := c.Snapshot()
	log.Info("submit_succeeded",
		slog.Time("expires_at", snap.Token.ExpiresAt),
		slog.Int64("expires_at_ms", snap.Token.ExpiresAtMillis()),
	)

	return 0
}

func runCredentials(ctx context.Context, c *form.Controller, f flags) error {
	values := map[form.Field]string{
		form.FieldEmail:    f.email,
		form.FieldPassword: f.password,
	}
	if c.Mode() == form.ModeSignup {
		values[form.FieldName] = f.name
		values[form.FieldConfirmPassword] = f.password
	}

	for field, v := range values {
		if err := c.SetField(field, v); err != nil {
			return err
		}
	}

	return c.Submit(ctx)
}

func runSocial(ctx context.Context, c *form.Controller, f flags) error {
	p, err := models.ParseProvider(f.provider)
	if err != nil {
		return fmt.Errorf("%w: %w", service.ErrUnknownProvider, err)
	}

	accs, err := c.ChooseProvider(ctx, p)
	if err != nil || len(accs) == 0 {
		return err
	}

	id := f.account
	if id == "" {
		id = accs[0].ID
	}

	return c.SelectAccount(ctx, id)
}

func openRegistry(ctx context.Context, cfg config.RegistryConfig) (storage.Registry, error) {
	switch cfg.Backend {
	case config.RegistryRedis:
		return redis.Connect(ctx, cfg.RedisURL, cfg.Prefix)
	default:
		return memory.New(), nil
	}
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}

func startMetricsServer(log *slog.Logger, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http_listen_start", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}()

	return srv
}

// startJanitor периодически удаляет просроченные сессии из реестра.
func startJanitor(ctx context.Context, svc *service.Service, log *slog.Logger, period time.Duration) {
	if period <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := svc.PurgeExpired(ctx); err != nil {
					log.Error("session_janitor_failed", slog.String("err", err.Error()))
				}
			}
		}
	}()
}
