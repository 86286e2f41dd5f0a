package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"bilingual-lms/pkg/config"
	"bilingual-lms/pkg/email"
	"bilingual-lms/pkg/initial"
	"bilingual-lms/pkg/kfka"
	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/routes"
	"bilingual-lms/pkg/search"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("configuration loaded", "env_file", cfg.EnvFile)

	if err := run(cfg, log); err != nil {
		log.Error("worker stopped", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := openInfra(cfg, log)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := initial.Migrate(in.DB); err != nil {
		return err
	}

	if in.ES != nil {
		if _, err := search.NewIndex(in.ES, cfg.ESIndex, log).Reindex(ctx, in.DB); err != nil {
			log.Warn("course reindex failed", "error", err)
		}
	}

	var wg sync.WaitGroup
	sender := email.NewSender(cfg, log)
	if len(cfg.KafkaBrokers) > 0 && sender.Enabled() {
		reader := kfka.NewReader(cfg.KafkaBrokers, cfg.NotificationsTopic, cfg.NotificationsGroup)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reader.Close()
			if err := kfka.Consume(ctx, reader, log, sender.Deliver); err != nil {
				log.Error("notification consumer stopped", "error", err)
			}
		}()
	} else {
		log.Warn("notification email delivery disabled", "brokers", len(cfg.KafkaBrokers), "smtp", sender.Enabled())
	}

	srv := &http.Server{
		Addr:              cfg.OpsAddr,
		Handler:           routes.NewOpsRouter(checks(in)...),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("ops server listening", "addr", cfg.OpsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Warn("ops server shutdown", "error", serr)
	}
	wg.Wait()
	log.Info("worker stopped")
	return err
}

// openInfra connects only what the worker reads: the database and, when
// configured, Elasticsearch. Kafka is consumed through its own reader.
func openInfra(cfg *config.Config, log *logger.Logger) (*initial.Infra, error) {
	db, err := initial.ConnectDB(cfg, log)
	if err != nil {
		return nil, err
	}
	in := &initial.Infra{DB: db}
	if in.ES, err = initial.NewES(cfg); err != nil {
		in.Close()
		return nil, err
	}
	return in, nil
}

func checks(in *initial.Infra) []routes.Check {
	out := []routes.Check{{
		Name: "database",
		Probe: func(ctx context.Context) error {
			sqlDB, err := in.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if in.ES != nil {
		out = append(out, routes.Check{
			Name: "search",
			Probe: func(ctx context.Context) error {
				res, err := in.ES.Ping(in.ES.Ping.WithContext(ctx))
				if err != nil {
					return err
				}
				defer res.Body.Close()
				if res.IsError() {
					return fmt.Errorf("elasticsearch: %s", res.Status())
				}
				return nil
			},
		})
	}
	return out
}
