package user

import (
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// RequestProvider moves a customer into pending_provider for admin review.
func RequestProvider(db *gorm.DB, actor User) (User, error) {
	current, err := Get(db, actor.ID)
	if err != nil {
		return User{}, err
	}

	switch {
	case current.Role == types.RoleProvider:
		return current, ErrAlreadyProvider
	case current.Role == types.RoleAdmin:
		return current, ErrAdminCannotRequest
	case current.Status == types.UserStatusPendingProvider:
		return current, ErrAlreadyPending
	}

	status := types.UserStatusPendingProvider
	return Update(db, current.ID, UpdateInput{Status: &status})
}

// DeactivateAccount soft-deletes the caller's account and revokes their refresh token.
func DeactivateAccount(db *gorm.DB, actor User) error {
	current, err := Get(db, actor.ID)
	if err != nil {
		return err
	}
	if current.IsAdmin() {
		return ErrAdminCannotDelete
	}

	return db.Model(&User{}).Where("id = ?", current.ID).Updates(map[string]interface{}{
		"status":        types.UserStatusInactive,
		"refresh_token": nil,
	}).Error
}
