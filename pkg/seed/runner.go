// Package seed populates a database from a Dataset. Every step is idempotent:
// rows are keyed on their natural unique constraint and rows that already
// exist are reported and left alone, so a run can be repeated safely,
// including after a failed one.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"bilingual-lms/pkg/commerce"
	"bilingual-lms/pkg/courses"
	"bilingual-lms/pkg/exams"
	"bilingual-lms/pkg/goauth"
	"bilingual-lms/pkg/kfka"
	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/media"
	"bilingual-lms/pkg/notifications"
	"bilingual-lms/pkg/progress"
	"bilingual-lms/pkg/ratings"
	"bilingual-lms/pkg/search"
	"bilingual-lms/pkg/settings"
	"bilingual-lms/pkg/store"
	"bilingual-lms/pkg/support"
)

var ErrUnknownStep = errors.New("seed: unknown step")

// Steps lists every step in execution order.
var Steps = []string{
	"settings", "users", "categories", "courses", "chapters", "contents",
	"exams", "quizzes", "purchases", "progress", "ratings", "carts",
	"wishlists", "notifications", "tickets", "banners", "search",
}

type Deps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Hasher *goauth.Hasher
	// Password is used for users without their own.
	Password string
	// Media and AssetsDir enable banner uploads; Index enables the search step.
	Media     *media.Store
	AssetsDir string
	Index     *search.Index
	// Cache is the settings cache invalidated when settings are written.
	Cache    settings.Cache
	CacheTTL time.Duration
	// Events, when set, receives notification events for recipients the run
	// adds. Nil stores notifications without publishing.
	Events kfka.Writer
}

type Counts struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
}

func (c *Counts) add(out store.Outcome) {
	switch out {
	case store.Created:
		c.Created++
	case store.AlreadyExists:
		c.Existing++
	}
}

type StepReport struct {
	Step string
	Counts
}

type Runner struct {
	deps Deps
	data *Dataset
	log  *logger.Logger
	refs *refs

	courses       *courses.Service
	commerce      *commerce.Service
	exams         *exams.Service
	progress      *progress.Service
	ratings       *ratings.Service
	notifications *notifications.Service
	support       *support.Service
	settings      *settings.Service
}

// NewRunner wires the services the steps write through.
func NewRunner(deps Deps, data *Dataset) *Runner {
	log := deps.Log.With("component", "seed")
	notes := notifications.NewService(deps.DB, deps.Log, deps.Events)
	shop := commerce.NewService(deps.DB, deps.Log, notes)
	assess := exams.NewService(deps.DB, deps.Log, shop)

	var index courses.Indexer
	if deps.Index != nil {
		index = deps.Index
	}
	return &Runner{
		deps:          deps,
		data:          data,
		log:           log,
		refs:          newRefs(deps.DB),
		courses:       courses.NewService(deps.DB, deps.Log, index, notes),
		commerce:      shop,
		exams:         assess,
		progress:      progress.NewService(deps.DB, deps.Log, shop, assess),
		ratings:       ratings.NewService(deps.DB, deps.Log, shop),
		notifications: notes,
		support:       support.NewService(deps.DB, deps.Log),
		settings:      settings.NewService(deps.DB, deps.Log, deps.Cache, deps.CacheTTL),
	}
}

func (r *Runner) step(name string) func(context.Context, *Counts) error {
	switch name {
	case "settings":
		return r.seedSettings
	case "users":
		return r.seedUsers
	case "categories":
		return r.seedCategories
	case "courses":
		return r.seedCourses
	case "chapters":
		return r.seedChapters
	case "contents":
		return r.seedContents
	case "exams":
		return r.seedExams
	case "quizzes":
		return r.seedQuizzes
	case "purchases":
		return r.seedPurchases
	case "progress":
		return r.seedProgress
	case "ratings":
		return r.seedRatings
	case "carts":
		return r.seedCarts
	case "wishlists":
		return r.seedWishlists
	case "notifications":
		return r.seedNotifications
	case "tickets":
		return r.seedTickets
	case "banners":
		return r.seedBanners
	case "search":
		return r.seedSearch
	}
	return nil
}

// ParseOnly splits a comma separated step list. Empty means every step.
func ParseOnly(s string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if !isStep(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, name)
		}
		out = append(out, name)
	}
	return out, nil
}

func isStep(name string) bool {
	for _, s := range Steps {
		if s == name {
			return true
		}
	}
	return false
}

// Run executes the selected steps (all when only is empty) in order and stops
// at the first error. Reports for completed steps are returned either way.
func (r *Runner) Run(ctx context.Context, only []string) ([]StepReport, error) {
	selected := make(map[string]bool, len(only))
	for _, name := range only {
		if !isStep(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, name)
		}
		selected[name] = true
	}

	var reports []StepReport
	for _, name := range Steps {
		if len(selected) > 0 && !selected[name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		r.log.Info("seeding", "step", name)
		var c Counts
		if err := r.step(name)(ctx, &c); err != nil {
			r.log.Error("seed step failed", "step", name, "created", c.Created, "existing", c.Existing, "error", err)
			return reports, fmt.Errorf("seed %s: %w", name, err)
		}
		r.log.Info("seed step done", "step", name, "created", c.Created, "existing", c.Existing)
		reports = append(reports, StepReport{Step: name, Counts: c})
	}
	return reports, nil
}

// record logs one entity line and counts it.
func (r *Runner) record(c *Counts, entity, key string, out store.Outcome) {
	r.log.Info(entity+" "+out.String(), "key", key)
	c.add(out)
}
