package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"bilingual-lms/pkg/config"
	"bilingual-lms/pkg/goauth"
	"bilingual-lms/pkg/initial"
	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/search"
	"bilingual-lms/pkg/seed"
)

func main() {
	only := flag.String("only", "", "comma separated steps to run (default all)")
	dataPath := flag.String("data", "", "dataset JSON file (default built-in)")
	migrate := flag.Bool("migrate", true, "migrate the schema before seeding")
	notify := flag.Bool("notify", false, "publish notification events for new recipients to Kafka")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("configuration loaded", "env_file", cfg.EnvFile)

	if err := run(cfg, log, *only, *dataPath, *migrate, *notify); err != nil {
		log.Error("seeding failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger, only, dataPath string, migrate, notify bool) error {
	steps, err := seed.ParseOnly(only)
	if err != nil {
		return err
	}
	data, err := seed.Load(dataPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := initial.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.Close()

	if migrate {
		if err := initial.Migrate(in.DB); err != nil {
			return err
		}
	}

	deps := seed.Deps{
		DB:        in.DB,
		Log:       log,
		Hasher:    goauth.NewHasher(cfg.BcryptCost),
		Password:  cfg.SeedPassword,
		Media:     in.Media,
		AssetsDir: cfg.SeedAssetsDir,
		Cache:     in.SettingsCache(),
		CacheTTL:  cfg.SettingsTTL,
	}
	if notify {
		if in.Events == nil {
			log.Warn("-notify given but KAFKA_BROKERS is empty, notifications are stored only")
		}
		deps.Events = in.EventWriter()
	}
	if in.ES != nil && cfg.SeedIndexCourses {
		deps.Index = search.NewIndex(in.ES, cfg.ESIndex, log)
	}

	reports, err := seed.NewRunner(deps, data).Run(ctx, steps)
	var created, existing int
	for _, r := range reports {
		created += r.Created
		existing += r.Existing
	}
	log.Info("seed summary", "steps", len(reports), "created", created, "existing", existing)
	return err
}
