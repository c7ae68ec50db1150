package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"giftfinder/internal/apiclient"
	"giftfinder/internal/config"
	"giftfinder/internal/events"
	"giftfinder/internal/http/handlers"
	"giftfinder/internal/i18n"
	applog "giftfinder/internal/log"
	"giftfinder/internal/repos"
	"giftfinder/internal/secure"
)

func main() {
	cfg := config.Load()
	logger := applog.Logger()

	// Optional file logging
	var out []io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logger.WithError(err).WithField("path", cfg.LogFile).Warn("log.file.open")
		} else {
			defer f.Close()
			out = append(out, os.Stdout, f)
		}
	}
	if err := applog.Setup(cfg.LogLevel, out...); err != nil {
		logger.WithError(err).Warn("log.level")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("db.open")
	}
	defer db.Close()

	if cfg.SessionSecret == "" {
		logger.Warn("session.secret.unset")
	}
	sessions := repos.NewSessionRepo(db, secure.NewSealer(cfg.SessionSecret))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	client := apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithMetrics(apiclient.NewMetrics(reg)),
		apiclient.WithLogger(logger),
	)

	dict := i18n.MustLoad()
	provider := i18n.NewProvider(dict, i18n.ParseLang(cfg.DefaultLang))
	provider.Subscribe(func(l i18n.Lang) {
		applog.Info(nil, "locale.default.changed", map[string]any{"lang": string(l)})
	})
	config.Watch(config.Path(), func(c config.Config) {
		provider.Set(i18n.ParseLang(c.DefaultLang))
	})

	var pub events.Publisher = events.NewLogPublisher(logger)
	if len(cfg.Kafka.Brokers) > 0 {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		cl, err := events.NewKafkaClient(pingCtx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		cancel()
		if err != nil {
			applog.Error(nil, "events.kafka", err, map[string]any{"brokers": cfg.Kafka.Brokers})
		} else {
			pub = events.NewKafkaPublisher(cl, cfg.Kafka.Topic, logger)
		}
	}
	defer pub.Close()

	app := handlers.NewApp(handlers.AppOptions{
		Deps:      handlers.NewDeps(client, sessions, provider, pub, logger),
		Dict:      dict,
		Templates: cfg.TemplatesDir,
		StaticDir: cfg.StaticDir,
		BodyLimit: cfg.BodyLimit,
		Reload:    cfg.DevMode,
		AccessLog: true,
		Gatherer:  reg,
	})

	go purgeSessions(ctx, sessions, cfg.SessionTTL)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			applog.Error(nil, "server.shutdown", err, nil)
		}
	}()

	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port})
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Error(nil, "server.listen", err, nil)
	}
	applog.Info(nil, "server.stop", nil)
}

// purgeSessions drops idle session rows once an hour.
func purgeSessions(ctx context.Context, sessions *repos.SessionRepo, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		n, err := sessions.PurgeIdle(ctx, ttl)
		if err != nil {
			applog.Error(nil, "session.purge", err, nil)
		} else if n > 0 {
			applog.Info(nil, "session.purge", map[string]any{"removed": n})
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
