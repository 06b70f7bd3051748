package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Cascade delete proposal -> orders -> items is enforced here by foreign
// keys, so the delete workflow issues a single proposal delete.
var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		first_name VARCHAR(100) NOT NULL DEFAULT '',
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL DEFAULT 'USER',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users (email);`,
	`CREATE TABLE IF NOT EXISTS proposals (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		customer_name VARCHAR(50) NOT NULL,
		proposal_date DATE NOT NULL,
		total_value NUMERIC(18,2) NOT NULL,
		payment_condition TEXT NOT NULL,
		project_type VARCHAR(120) NOT NULL,
		doc_revision VARCHAR(16) NOT NULL,
		execution_time TEXT NOT NULL,
		tag VARCHAR(20),
		city VARCHAR(60),
		doc_link TEXT,
		created_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_created_at ON proposals (created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_created_by ON proposals (created_by) WHERE created_by IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		order_number VARCHAR(64) NOT NULL,
		description TEXT NOT NULL,
		value NUMERIC(18,2) NOT NULL,
		service_description TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_orders_proposal_number ON orders (proposal_id, order_number);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		quantity VARCHAR(32) NOT NULL,
		value NUMERIC(18,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
