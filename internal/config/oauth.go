package config

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
	"go.uber.org/zap"
)

// InitOAuthProviders configure gothic (store de session + providers).
// Retourne le nombre de providers activés.
func InitOAuthProviders(cfg *Config, log *zap.Logger) int {
	secret := cfg.OAuth.SessionSecret
	if secret == "" {
		log.Warn("⚠️ SESSION_SECRET missing, social sign-in disabled")
		return 0
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   !cfg.App.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	// Le provider est passé en paramètre de route et recopié dans la query
	gothic.GetProviderName = func(req *http.Request) (string, error) {
		if provider := req.URL.Query().Get("provider"); provider != "" {
			return provider, nil
		}
		return "", errors.New("provider not found")
	}

	callback := func(provider string) string {
		return cfg.App.BaseURL + "/api/auth/" + provider + "/callback"
	}

	var providers []goth.Provider
	if cfg.OAuth.GoogleClientID != "" && cfg.OAuth.GoogleClientSecret != "" {
		providers = append(providers, google.New(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, callback("google"), "email", "profile"))
		log.Info("✅ Google OAuth enabled")
	}
	if cfg.OAuth.FacebookClientID != "" && cfg.OAuth.FacebookClientSecret != "" {
		providers = append(providers, facebook.New(cfg.OAuth.FacebookClientID, cfg.OAuth.FacebookClientSecret, callback("facebook"), "email"))
		log.Info("✅ Facebook OAuth enabled")
	}

	if len(providers) == 0 {
		log.Warn("⚠️ No OAuth provider configured")
		return 0
	}

	goth.UseProviders(providers...)
	return len(providers)
}
