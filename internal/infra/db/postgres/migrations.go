// File: internal/infra/db/postgres/migrations.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Migrate applies the schema idempotently at startup. The unique indexes on
// provider_reference, registration_number, receipt_number and
// receipts.payment_id are load-bearing: the number generators and the
// one-receipt-per-payment rule rely on the database rejecting duplicates.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trainees (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS programs (
			id                      TEXT PRIMARY KEY,
			name                    TEXT NOT NULL,
			description             TEXT NOT NULL DEFAULT '',
			application_fee_amount  BIGINT NOT NULL DEFAULT 0,
			registration_fee_amount BIGINT NOT NULL DEFAULT 0,
			capacity                INT NOT NULL DEFAULT 0,
			enrolled_count          INT NOT NULL DEFAULT 0,
			created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS applications (
			id                    TEXT PRIMARY KEY,
			trainee_id            TEXT NOT NULL REFERENCES trainees(id),
			program_id            TEXT NOT NULL REFERENCES programs(id),
			status                TEXT NOT NULL DEFAULT 'pending',
			application_fee_paid  BOOLEAN NOT NULL DEFAULT FALSE,
			registration_fee_paid BOOLEAN NOT NULL DEFAULT FALSE,
			registration_number   TEXT,
			admin_notes           TEXT NOT NULL DEFAULT '',
			created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS applications_registration_number_key
			ON applications (registration_number) WHERE registration_number IS NOT NULL;`,
		`CREATE TABLE IF NOT EXISTS payments (
			id                 TEXT PRIMARY KEY,
			application_id     TEXT NOT NULL REFERENCES applications(id),
			trainee_id         TEXT NOT NULL REFERENCES trainees(id),
			provider           TEXT NOT NULL,
			payment_type       TEXT NOT NULL,
			amount             BIGINT NOT NULL,
			currency           TEXT NOT NULL,
			reference          TEXT NOT NULL UNIQUE,
			provider_reference TEXT,
			status             TEXT NOT NULL DEFAULT 'pending',
			raw                JSONB,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			paid_at            TIMESTAMPTZ
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS payments_provider_reference_key
			ON payments (provider_reference) WHERE provider_reference IS NOT NULL AND provider_reference <> '';`,
		`CREATE INDEX IF NOT EXISTS payments_status_created_at_idx
			ON payments (status, created_at);`,
		`CREATE TABLE IF NOT EXISTS receipts (
			id             TEXT PRIMARY KEY,
			payment_id     TEXT NOT NULL UNIQUE REFERENCES payments(id),
			trainee_id     TEXT NOT NULL REFERENCES trainees(id),
			receipt_number TEXT NOT NULL UNIQUE,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES trainees(id),
			kind       TEXT NOT NULL,
			title      TEXT NOT NULL,
			message    TEXT NOT NULL,
			meta       JSONB,
			read       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS notifications_user_id_idx
			ON notifications (user_id, read);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
