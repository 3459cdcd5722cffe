package repositories

import (
	"context"
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/club-portal/internal/config"
	"github.com/maxaizer/club-portal/internal/entities"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(cfg config.DBConfig) (*DbContext, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.ConnectionString)
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.ConnectionString)
	case config.DriverSQLite, "":
		dialector = sqlite.Open(cfg.ConnectionString)
	default:
		return nil, fmt.Errorf("unsupported db driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	models := []any{
		&entities.Cycle{},
		&entities.QuestionSet{},
		&entities.Application{},
		&entities.PhaseConfig{},
		&entities.PhaseScore{},
		&entities.PhaseRanking{},
		&entities.DecisionRecord{},
		&entities.Slot{},
		&entities.SlotBooking{},
		&entities.Setting{},
		&entities.ContentBlock{},
		&entities.Event{},
		&entities.Attendance{},
		&entities.AuditEntry{},
	}

	for _, model := range models {
		if err := c.DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T entity: %w", model, err)
		}
	}

	return nil
}

func (c *DbContext) Ping(ctx context.Context) error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
