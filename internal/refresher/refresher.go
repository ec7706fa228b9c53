// Package refresher recalcule périodiquement la vue d'ensemble administrateur et la conserve
// dans Redis, pour que le tableau de bord ne relance pas les agrégations à chaque requête.
package refresher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gsm-perf/performance/backend/internal/config"
	"github.com/gsm-perf/performance/backend/internal/report"
	"github.com/robfig/cron/v3"
)

type Computer interface {
	AdminOverview(ctx context.Context, now time.Time) (*report.Overview, error)
}

type Snapshots interface {
	Load(ctx context.Context) (*report.Overview, error)
	Save(ctx context.Context, overview *report.Overview) (bool, error)
}

type Refresher struct {
	cron      *cron.Cron
	spec      string
	timeout   time.Duration
	compute   Computer
	snapshots Snapshots
	logger    *slog.Logger
	now       func() time.Time
}

func New(cfg *config.Config, compute Computer, snapshots Snapshots, logger *slog.Logger) *Refresher {
	return &Refresher{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:      cfg.Dashboard.OverviewRefreshSpec,
		timeout:   time.Duration(cfg.Database.QueryTimeout) * time.Second,
		compute:   compute,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Start calcule un premier instantané puis planifie les suivants.
func (r *Refresher) Start() error {
	if _, err := r.cron.AddFunc(r.spec, r.run); err != nil {
		return err
	}
	r.run()
	r.cron.Start()
	return nil
}

// Stop attend la fin du calcul en cours, dans la limite de ctx.
func (r *Refresher) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.Refresh(ctx); err != nil {
		r.logger.Error("échec du rafraîchissement de la vue d'ensemble", "error", err)
	}
}

// Refresh calcule un instantané horodaté à son lancement. En cas d'erreur l'instantané
// précédent reste en place.
func (r *Refresher) Refresh(ctx context.Context) (*report.Overview, error) {
	issuedAt := r.now()

	overview, err := r.compute.AdminOverview(ctx, issuedAt)
	if err != nil {
		return nil, err
	}
	overview.ComputedAt = issuedAt

	stored, err := r.snapshots.Save(ctx, overview)
	if err != nil {
		// le calcul reste valable même si le cache est indisponible
		r.logger.Warn("impossible d'enregistrer la vue d'ensemble", "error", err)
		return overview, nil
	}
	if !stored {
		r.logger.Debug("instantané plus récent déjà présent", "computedAt", issuedAt)
	}
	return overview, nil
}

// Overview sert l'instantané en cache, ou le calcule s'il est absent.
func (r *Refresher) Overview(ctx context.Context) (*report.Overview, error) {
	overview, err := r.snapshots.Load(ctx)
	if err == nil {
		return overview, nil
	}
	if !errors.Is(err, ErrNoSnapshot) {
		r.logger.Warn("lecture du cache de la vue d'ensemble impossible", "error", err)
	}
	return r.Refresh(ctx)
}
