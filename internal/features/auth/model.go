package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// maxOTPAttempts bounds guesses against a single code.
const maxOTPAttempts = 5

// PasswordResetOTP is a hashed one-time code mailed by forgot-password.
type PasswordResetOTP struct {
	types.BaseModel

	Email     string    `gorm:"type:varchar(255);not null;index"`
	OTPHash   string    `gorm:"type:varchar(255);not null;column:otp_hash"`
	ExpiresAt time.Time `gorm:"not null;column:expires_at;index"`
	Attempts  int       `gorm:"not null;default:0"`
	Consumed  bool      `gorm:"not null;default:false"`
}

// TableName overrides the default table name.
func (PasswordResetOTP) TableName() string { return "password_reset_otps" }

// replaceOTP stores a new code for email and retires any earlier ones.
func replaceOTP(db *gorm.DB, email, hash string, expiresAt time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&PasswordResetOTP{}).
			Where("email = ? AND consumed = ?", email, false).
			Update("consumed", true).Error; err != nil {
			return err
		}
		return tx.Create(&PasswordResetOTP{Email: email, OTPHash: hash, ExpiresAt: expiresAt}).Error
	})
}

// activeOTP returns the newest unconsumed, unexpired code for email.
func activeOTP(db *gorm.DB, email string, now time.Time) (PasswordResetOTP, error) {
	var otp PasswordResetOTP
	err := db.
		Where("email = ? AND consumed = ? AND expires_at > ?", strings.ToLower(email), false, now).
		Order("created_at DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return otp, ErrInvalidOTP
	}
	return otp, err
}

// recordAttempt counts a wrong guess and retires the code once attempts run out.
func recordAttempt(db *gorm.DB, otp PasswordResetOTP) error {
	return db.Model(&PasswordResetOTP{}).Where("id = ?", otp.ID).Updates(map[string]interface{}{
		"attempts": gorm.Expr("attempts + 1"),
		"consumed": otp.Attempts+1 >= maxOTPAttempts,
	}).Error
}

func consumeOTP(db *gorm.DB, id uuid.UUID) error {
	return db.Model(&PasswordResetOTP{}).Where("id = ?", id).Update("consumed", true).Error
}

// PruneOTPs deletes codes that expired before cutoff.
func PruneOTPs(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("expires_at < ?", cutoff).Delete(&PasswordResetOTP{})
	return result.RowsAffected, result.Error
}
