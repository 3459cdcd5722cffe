package services

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/logger"
	log "github.com/sirupsen/logrus"
)

type settingGetter interface {
	Get(ctx context.Context, key string) (*entities.Setting, error)
}

// MaintenanceGate reads the maintenance flag. The flag is advisory, so any read failure means "not enabled".
type MaintenanceGate struct {
	settings settingGetter
}

func NewMaintenanceGate(settings settingGetter) *MaintenanceGate {
	return &MaintenanceGate{settings: settings}
}

func (g *MaintenanceGate) Enabled(ctx context.Context) bool {
	setting, err := g.settings.Get(ctx, entities.MaintenanceModeKey)
	if err != nil {
		if !apperr.Is(err, apperr.CodeNotFound) {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Warnf("maintenance flag unavailable, serving traffic: %v", err)
		}
		return false
	}
	return setting.Bool()
}
