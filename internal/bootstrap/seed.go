// Package bootstrap seeds the demo tenant so a fresh deployment is
// usable immediately: one storage account, one container and two
// accounts in the first-login state.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datadrop/datadrop/internal/app"
	"github.com/datadrop/datadrop/internal/auth"
	"github.com/datadrop/datadrop/internal/platform/db"
)

const (
	demoAccountID   = "sa1"
	demoContainerID = "c1"
)

// Seed inserts the demo records if they do not exist. All writes happen
// in one transaction, so a restart can never observe a half-seeded
// tenant.
func Seed(ctx context.Context, logger *slog.Logger, pool *pgxpool.Pool, cfg *app.Config) error {
	adminHash, err := auth.HashPassword(cfg.DemoAdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap: hash admin password: %w", err)
	}
	userHash, err := auth.HashPassword(cfg.DemoUserPassword)
	if err != nil {
		return fmt.Errorf("bootstrap: hash user password: %w", err)
	}

	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO storage_accounts (id, name, connection_string, location)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			demoAccountID, cfg.DemoStorageAccount,
			fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=***", cfg.DemoStorageAccount),
			cfg.DemoStorageRegion); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO containers (id, name, account_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING`,
			demoContainerID, cfg.DemoContainer, demoAccountID); err != nil {
			return err
		}

		seedUsers := []struct {
			email, name, role, hash string
		}{
			{cfg.DemoUserEmail, cfg.DemoUserName, auth.RoleUser, userHash},
			{cfg.DemoAdminEmail, cfg.DemoAdminName, auth.RoleAdmin, adminHash},
		}
		for _, u := range seedUsers {
			if _, err := tx.Exec(ctx, `
				INSERT INTO users (email, name, password_hash, role, is_active, is_first_login, storage_account, container)
				VALUES ($1, $2, $3, $4, TRUE, TRUE, $5, $6)
				ON CONFLICT (email) DO NOTHING`,
				u.email, u.name, u.hash, u.role, cfg.DemoStorageAccount, cfg.DemoContainer); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bootstrap: seed demo data: %w", err)
	}

	logger.Info("demo data seeded",
		slog.String("admin", cfg.DemoAdminEmail),
		slog.String("user", cfg.DemoUserEmail))
	return nil
}
