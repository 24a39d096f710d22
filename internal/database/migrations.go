package database

import (
	"context"
	"fmt"
)

// RunMigrations creates the database schema. Every statement is idempotent.
func RunMigrations(ctx context.Context, db PGXDB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

		`CREATE TABLE IF NOT EXISTS clients (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			email TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			description TEXT,
			category TEXT,
			price DECIMAL(12, 2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS budgets (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title TEXT NOT NULL,
			client_id UUID REFERENCES clients(id) ON DELETE SET NULL,
			client_name TEXT NOT NULL,
			date DATE NOT NULL DEFAULT CURRENT_DATE,
			delivery_date DATE,
			status TEXT NOT NULL DEFAULT 'Aguardando',
			total DECIMAL(12, 2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS budget_items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			budget_id UUID NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
			product_name TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			price DECIMAL(12, 2) NOT NULL,
			subtotal DECIMAL(12, 2),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS invoices (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title TEXT NOT NULL,
			client_id UUID REFERENCES clients(id) ON DELETE SET NULL,
			client_name TEXT NOT NULL,
			value DECIMAL(12, 2),
			date DATE NOT NULL,
			budget_id UUID REFERENCES budgets(id) ON DELETE SET NULL,
			status TEXT NOT NULL DEFAULT 'Pendente',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title TEXT NOT NULL,
			category TEXT,
			description TEXT,
			value DECIMAL(12, 2),
			date DATE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS activity_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			entity_name TEXT,
			description TEXT,
			user_name TEXT,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS monthly_archives (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
			year INTEGER NOT NULL,
			total_revenue DECIMAL(14, 2) NOT NULL,
			total_expenses DECIMAL(14, 2) NOT NULL,
			net_profit DECIMAL(14, 2) NOT NULL,
			expenses JSONB NOT NULL DEFAULT '[]',
			invoices JSONB NOT NULL DEFAULT '[]',
			archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT monthly_archives_period_key UNIQUE (month, year)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices(date)`,
		`CREATE INDEX IF NOT EXISTS idx_budgets_delivery_date ON budgets(delivery_date)`,
		`CREATE INDEX IF NOT EXISTS idx_budget_items_budget_id ON budget_items(budget_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_timestamp ON activity_logs(timestamp DESC)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
