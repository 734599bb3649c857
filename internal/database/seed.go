// ABOUTME: Seed data loading for the demo database
// ABOUTME: Inserts the fixed customers and orders rows, optionally only once
package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SeedOptions controls Seed
type SeedOptions struct {
	// SkipIfPresent makes Seed a no-op when customers already has rows.
	// Without it every call inserts the seed rows again.
	SkipIfPresent bool
}

// Seed inserts the fixed seed rows. It reports whether rows were inserted.
func (db *DB) Seed(ctx context.Context, opts SeedOptions) (bool, error) {
	if opts.SkipIfPresent {
		var count int
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&count); err != nil {
			return false, fmt.Errorf("failed to count customers: %w", err)
		}
		if count > 0 {
			db.logger.Debug("seed skipped, customers already present", zap.Int("customers", count))
			return false, nil
		}
	}

	if _, err := db.conn.ExecContext(ctx, insertCustomers); err != nil {
		return false, fmt.Errorf("failed to insert customers: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, insertOrders); err != nil {
		return false, fmt.Errorf("failed to insert orders: %w", err)
	}

	db.logger.Info("loaded seed data",
		zap.Int("customers", SeedCustomerCount),
		zap.Int("orders", SeedOrderCount))
	return true, nil
}
