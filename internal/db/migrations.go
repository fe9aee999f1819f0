package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Constraints and indexes gorm tags cannot express. Each statement is idempotent.
var migrationStatements = []string{
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_offers_margin_range') THEN
			ALTER TABLE offers ADD CONSTRAINT chk_offers_margin_range CHECK (margin_percentage BETWEEN 0 AND 100);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_offers_status') THEN
			ALTER TABLE offers ADD CONSTRAINT chk_offers_status CHECK (status IN ('DRAFT', 'FINALIZED'));
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_routes_status') THEN
			ALTER TABLE routes ADD CONSTRAINT chk_routes_status
				CHECK (status IN ('draft', 'planned', 'in_progress', 'completed', 'cancelled'));
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_cargos_status') THEN
			ALTER TABLE cargos ADD CONSTRAINT chk_cargos_status
				CHECK (status IN ('pending', 'in_transit', 'delivered', 'cancelled'));
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_segments_order') THEN
			ALTER TABLE country_segments ADD CONSTRAINT chk_segments_order CHECK (segment_order >= 0);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_toll_overrides_multiplier') THEN
			ALTER TABLE toll_rate_overrides ADD CONSTRAINT chk_toll_overrides_multiplier CHECK (rate_multiplier > 0);
		END IF;
	END
	$$;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_toll_overrides_key
		ON toll_rate_overrides (business_entity_id, country_code, vehicle_class, COALESCE(route_type, ''));`,
	`CREATE INDEX IF NOT EXISTS idx_status_history_recorded
		ON status_history (entity_kind, entity_id, recorded_at);`,
	`CREATE INDEX IF NOT EXISTS idx_cost_breakdowns_route_created
		ON cost_breakdowns (route_id, created_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
