package models

import "time"

// CredentialRecord is the durable representation of a delegated account
// connection. One row exists per connected external account.
//
// The refresh token, once present, is never cleared by the analytics
// subsystem; only account disconnection (handled by the webhook layer)
// destroys the record. The access-token triple is mutated exclusively by the
// token lifecycle manager after a successful refresh exchange, last writer
// wins.
type CredentialRecord struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AccountID     string     `gorm:"not null;uniqueIndex;size:100" json:"account_id"`
	ChannelID     string     `gorm:"not null;size:100;index;default:''" json:"channel_id"`
	RefreshToken  string     `gorm:"not null;type:text" json:"-"`
	AccessToken   *string    `gorm:"type:text" json:"-"`
	TokenExpiry   *time.Time `json:"token_expiry,omitzero"`
	GrantedScopes *string    `gorm:"type:text" json:"granted_scopes,omitzero"`
	CreatedAt     time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (CredentialRecord) TableName() string {
	return "credential_records"
}

// HasValidAccessToken reports whether the cached access token is usable at
// least until now+margin. A nil token or expiry never validates.
func (c *CredentialRecord) HasValidAccessToken(now time.Time, margin time.Duration) bool {
	if c.AccessToken == nil || *c.AccessToken == "" || c.TokenExpiry == nil {
		return false
	}
	return c.TokenExpiry.After(now.Add(margin))
}
