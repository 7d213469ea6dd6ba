package env

import "os"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// InstanceID identifies the running process in logs. Heroku-style DYNO is
// honoured when the explicit variable is unset.
func InstanceID() string {
	if id := os.Getenv("WISHBOARD_INSTANCE_ID"); id != "" {
		return id
	}
	return Get("DYNO", "local")
}
