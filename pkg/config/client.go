package config

import "time"

// DefaultAPIBaseURL is where the client looks for the API when nothing else is configured.
const DefaultAPIBaseURL = "http://localhost:5000"

// ClientConfig holds settings for the notes terminal client.
type ClientConfig struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	SessionPath    string
}

// LoadClientConfig reads client settings from the environment.
func LoadClientConfig() ClientConfig {
	return ClientConfig{
		APIBaseURL:     GetString("NOTES_API_URL", DefaultAPIBaseURL),
		RequestTimeout: GetDuration("NOTES_REQUEST_TIMEOUT", 15*time.Second),
		SessionPath:    GetString("NOTES_SESSION_FILE", ""),
	}
}
