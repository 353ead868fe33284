package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/creatorpulse/creator-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no credential record exists for an account.
var ErrNotFound = errors.New("credential record not found")

// Store reads and writes credential records. It carries no business logic;
// token validity decisions belong to the token lifecycle manager.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the credential record for the account.
func (s *Store) Get(ctx context.Context, accountID string) (*models.CredentialRecord, error) {
	var record models.CredentialRecord
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credential record: %w", err)
	}
	return &record, nil
}

// Link creates or replaces the credential record for an account. Called when
// an account owner completes the OAuth consent flow.
func (s *Store) Link(ctx context.Context, record *models.CredentialRecord) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			UpdateAll: true,
		}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to link account: %w", err)
	}
	return nil
}

// UpdateAccessToken persists a freshly minted access token, its expiry and
// the scopes the provider reported (empty scopes leave the stored value
// untouched). The refresh token is deliberately never written here.
// Last writer wins; a stale overwrite costs at most one extra refresh.
func (s *Store) UpdateAccessToken(ctx context.Context, accountID, accessToken string, expiry time.Time, scopes string) error {
	updates := map[string]any{
		"access_token": accessToken,
		"token_expiry": expiry,
	}
	if scopes != "" {
		updates["granted_scopes"] = scopes
	}

	result := s.db.WithContext(ctx).
		Model(&models.CredentialRecord{}).
		Where("account_id = ?", accountID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to persist access token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Unlink destroys the credential record. This is the only code path that
// removes a refresh token, and it is driven exclusively by external account
// disconnection events.
func (s *Store) Unlink(ctx context.Context, accountID string) error {
	result := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&models.CredentialRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to unlink account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
