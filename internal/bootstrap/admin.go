package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/config"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// EnsureDefaultAdmin creates the configured administrator, or restores its
// role and status when the account already exists. The stored password of an
// existing account is left alone. An empty seed password disables seeding.
func EnsureDefaultAdmin(db *gorm.DB, seed config.AdminSeedConfig, logger *slog.Logger) (user.User, error) {
	if strings.TrimSpace(seed.Password) == "" {
		logger.Info("default admin seeding skipped", slog.String("env_var", "LMS_ADMIN_PASSWORD"))
		return user.User{}, nil
	}

	existing, err := user.GetByEmail(db, seed.Email)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		created, createErr := user.Create(db, user.CreateInput{
			FullName: seed.FullName,
			Email:    seed.Email,
			Password: seed.Password,
			Role:     types.RoleAdmin,
			Status:   types.UserStatusActive,
		})
		if createErr != nil {
			if isUndefinedTableError(createErr) {
				logger.Warn("default admin skipped - users table missing", slog.String("email", seed.Email))
				return user.User{}, nil
			}
			return user.User{}, fmt.Errorf("create admin: %w", createErr)
		}
		logger.Info("default admin created", slog.String("email", created.Email))
		return created, nil

	case err != nil:
		if isUndefinedTableError(err) {
			logger.Warn("default admin skipped - users table missing", slog.String("email", seed.Email))
			return user.User{}, nil
		}
		return user.User{}, fmt.Errorf("get admin: %w", err)
	}

	if existing.Role == types.RoleAdmin && existing.Status == types.UserStatusActive {
		logger.Info("default admin already up to date", slog.String("email", existing.Email))
		return existing, nil
	}

	role, status := types.RoleAdmin, types.UserStatusActive
	updated, err := user.Update(db, existing.ID, user.UpdateInput{Role: &role, Status: &status})
	if err != nil {
		return user.User{}, fmt.Errorf("update admin: %w", err)
	}
	logger.Info("default admin synchronized", slog.String("email", updated.Email))
	return updated, nil
}

func isUndefinedTableError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "relation \"users\" does not exist") ||
		strings.Contains(message, "no such table: users")
}
