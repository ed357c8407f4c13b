package config

import "os"

// APIKeySource represents where a provider credential comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of a provider credential.
type KeyStatus struct {
	Name     string       `json:"name"`
	Source   APIKeySource `json:"source"`
	IsSet    bool         `json:"is_set"`
	Masked   string       `json:"masked,omitempty"` // e.g., "A1b...xYz"
}

// CheckCredentials returns the status of the optional Yahoo session
// credentials. Neither is required; quoteSummary requests may be refused
// without them.
func CheckCredentials(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("Yahoo crumb", cfg.Provider.Crumb, "COGIQUANT_PROVIDER_CRUMB"),
		checkKey("Yahoo cookie", cfg.Provider.Cookie, "COGIQUANT_PROVIDER_COOKIE"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		// Check if it came from env
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
