package services

import (
	"context"
	"fmt"

	"warehouse-backend/config"
	"warehouse-backend/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var layoutTables = []interface{}{
	&models.RackRecord{},
	&models.ItemRecord{},
	&models.ZoneRecord{},
	&models.RouteRecord{},
	&models.WaypointRecord{},
}

// InitDatabase - MySQL 연결 및 레이아웃 테이블 마이그레이션
func InitDatabase(cfg config.MySQLConfig) (*gorm.DB, error) {
	db, err := OpenDatabase(mysql.Open(cfg.DSN()))
	if err != nil {
		return nil, err
	}

	Logger().Info("✅ MySQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database))
	return db, nil
}

// OpenDatabase opens any gorm dialector and migrates the layout tables.
func OpenDatabase(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("DB 연결 실패: %w", err)
	}

	if err := db.AutoMigrate(layoutTables...); err != nil {
		return nil, fmt.Errorf("마이그레이션 실패: %w", err)
	}
	return db, nil
}

// DBSource loads the layout from the layout tables.
type DBSource struct {
	DB *gorm.DB
}

func (s *DBSource) Name() string { return "mysql" }

func (s *DBSource) Load(ctx context.Context) (*models.WarehouseData, error) {
	db := s.DB.WithContext(ctx)

	var racks []models.RackRecord
	if err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	}).Order("id ASC").Find(&racks).Error; err != nil {
		return nil, fmt.Errorf("loading racks: %w", err)
	}

	var zones []models.ZoneRecord
	if err := db.Order("id ASC").Find(&zones).Error; err != nil {
		return nil, fmt.Errorf("loading zones: %w", err)
	}

	var routes []models.RouteRecord
	if err := db.Preload("Waypoints", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("seq ASC")
	}).Order("id ASC").Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("loading routes: %w", err)
	}

	data := &models.WarehouseData{
		Racks:  make([]models.Rack, 0, len(racks)),
		Zones:  make([]models.Zone, 0, len(zones)),
		Routes: make([]models.Route, 0, len(routes)),
	}
	for _, r := range racks {
		data.Racks = append(data.Racks, r.Rack())
	}
	for _, z := range zones {
		data.Zones = append(data.Zones, z.Zone())
	}
	for _, r := range routes {
		data.Routes = append(data.Routes, r.Route())
	}

	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid warehouse data: %w", err)
	}
	return data, nil
}

// ImportLayout replaces the stored layout with data in one transaction.
func ImportLayout(ctx context.Context, db *gorm.DB, data *models.WarehouseData) error {
	if err := data.Validate(); err != nil {
		return fmt.Errorf("invalid warehouse data: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// children first; sqlite does not enforce the cascade without a pragma
		for _, table := range []interface{}{
			&models.ItemRecord{}, &models.WaypointRecord{},
			&models.RackRecord{}, &models.ZoneRecord{}, &models.RouteRecord{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return fmt.Errorf("clearing layout: %w", err)
			}
		}

		for _, rack := range data.Racks {
			rec := models.NewRackRecord(rack)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("saving rack %q: %w", rack.Name, err)
			}
		}
		for _, zone := range data.Zones {
			rec := models.NewZoneRecord(zone)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("saving zone %q: %w", zone.Name, err)
			}
		}
		for _, route := range data.Routes {
			rec := models.NewRouteRecord(route)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("saving route %q: %w", route.Name, err)
			}
		}

		Logger().Info("💾 layout imported",
			zap.Int("racks", len(data.Racks)),
			zap.Int("zones", len(data.Zones)),
			zap.Int("routes", len(data.Routes)))
		return nil
	})
}

// SeedIfEmpty imports the layout from src when the rack table is empty.
// It reports whether an import happened.
func SeedIfEmpty(ctx context.Context, db *gorm.DB, src LayoutSource) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.RackRecord{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("counting racks: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	data, err := src.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("loading seed layout from %s: %w", src.Name(), err)
	}
	if err := ImportLayout(ctx, db, data); err != nil {
		return false, err
	}
	return true, nil
}
