package services

import (
	"context"
	"github.com/maxaizer/club-portal/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type expiredCycleCloser interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// CycleSweeper periodically closes cycles whose portal window is over.
type CycleSweeper struct {
	cycles  expiredCycleCloser
	cron    *cron.Cron
	timeout time.Duration
}

func NewCycleSweeper(cycles expiredCycleCloser, spec string) (*CycleSweeper, error) {

	if spec == "" {
		return nil, errors.New("sweep schedule must not be empty")
	}

	cs := &CycleSweeper{
		cycles:  cycles,
		cron:    cron.New(),
		timeout: time.Minute,
	}

	_, err := cs.cron.AddFunc(spec, cs.Sweep)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid sweep schedule %q", spec)
	}

	return cs, nil
}

func (cs *CycleSweeper) Start() {
	cs.cron.Start()
	log.Info("cycle sweeper started")
}

func (cs *CycleSweeper) Stop() {
	<-cs.cron.Stop().Done()
}

func (cs *CycleSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), cs.timeout)
	defer cancel()

	rowsAffected, err := cs.cycles.SweepExpired(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeScheduler).Errorf("Failed to close expired cycles: %v", err)
		return
	}
	if rowsAffected > 0 {
		log.Infof("Expired cycles were closed at %v, affected rows: %v", time.Now(), rowsAffected)
	}
}
