package models

// AuthConfig selects how dashboard callers authenticate. Clerk validates
// hosted session tokens; the database provider verifies locally signed JWTs.
type AuthConfig struct {
	Provider       string              `json:"provider" yaml:"provider"`
	ClerkConfig    *ClerkAuthConfig    `json:"clerk,omitempty" yaml:"clerk,omitempty"`
	DatabaseConfig *DatabaseAuthConfig `json:"database,omitempty" yaml:"database,omitempty"`
}

type ClerkAuthConfig struct {
	SecretKey string `json:"secret_key" yaml:"secret_key"`
}

type DatabaseAuthConfig struct {
	JWTSecret string `json:"jwt_secret,omitempty" yaml:"jwt_secret,omitempty"`
}

// WebhookConfig holds the Svix signing secret used to verify account
// lifecycle events (the unlink event is the only path that destroys a
// credential record).
type WebhookConfig struct {
	SigningSecret string `json:"signing_secret" yaml:"signing_secret"`
}
