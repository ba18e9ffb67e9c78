package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrAuthFileNotFound = errors.New("auth file not found")
	ErrInvalidAuthFile  = errors.New("invalid auth file")
)

// AuthFileHint shows the expected shape of an auth file.
const AuthFileHint = `{
  "user": "your_email@example.com",
  "pass": "your_password"
}`

type Credentials struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

// String keeps the password out of logs and error messages.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{user: %s}", c.User)
}

// AuthFileEnv returns the environment variable overriding the auth file of a
// publisher, e.g. ZEIT_AUTH_FILE.
func AuthFileEnv(publisherID string) string {
	return strings.ToUpper(publisherID) + "_AUTH_FILE"
}

// ResolveAuthFile picks the auth file path: explicit flag, then the
// publisher's environment variable, then "<publisher>-auth.json".
func ResolveAuthFile(flagValue, publisherID string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(AuthFileEnv(publisherID)); v != "" {
		return v
	}
	return publisherID + "-auth.json"
}

// LoadCredentials reads a JSON object with required string fields user and
// pass.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("%w: %s", ErrAuthFileNotFound, path)
		}
		return Credentials{}, fmt.Errorf("failed to read auth file %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Credentials{}, fmt.Errorf("%w: could not parse JSON from %s: %v", ErrInvalidAuthFile, path, err)
	}

	var creds Credentials
	for key, dst := range map[string]*string{"user": &creds.User, "pass": &creds.Pass} {
		v, ok := raw[key].(string)
		if !ok || v == "" {
			return Credentials{}, fmt.Errorf("%w: %s must contain a non-empty string %q", ErrInvalidAuthFile, path, key)
		}
		*dst = v
	}

	return creds, nil
}
