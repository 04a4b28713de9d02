package session

import (
	"fmt"
	"strings"
)

// Config holds session-side behavior: the storage keys the session persists
// under, whether a restored token is re-verified against the backend, and
// the routes navigation outcomes point at.
type Config struct {
	TokenKey        string `koanf:"token_key" mapstructure:"token_key"`
	UserKey         string `koanf:"user_key" mapstructure:"user_key"`
	VerifyOnRestore bool   `koanf:"verify_on_restore" mapstructure:"verify_on_restore"`
	EntryRoute      string `koanf:"entry_route" mapstructure:"entry_route"`
	LoginRoute      string `koanf:"login_route" mapstructure:"login_route"`
	ProtectedRoute  string `koanf:"protected_route" mapstructure:"protected_route"`
}

func DefaultConfig() Config {
	return Config{
		TokenKey:       "token",
		UserKey:        "user",
		EntryRoute:     "/",
		LoginRoute:     "/login",
		ProtectedRoute: "/dashboard",
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.TokenKey) == "" {
		return fmt.Errorf("session: token_key is required")
	}
	if strings.TrimSpace(c.UserKey) == "" {
		return fmt.Errorf("session: user_key is required")
	}
	if strings.TrimSpace(c.TokenKey) == strings.TrimSpace(c.UserKey) {
		return fmt.Errorf("session: token_key and user_key must differ")
	}
	return nil
}
