package warehouse

import (
	"errors"
	"log"
	"os"
)

// ============================================================================
// WAREHOUSE CONFIG — project id + credential resolution
// ============================================================================
// Credential precedence follows the deployment layout: a mounted secret
// (container platforms with a secret manager) wins over the local-dev
// environment variable. Neither existing is fine — the client then runs on
// ambient credentials.
// ============================================================================

const mountedCredentialsPath = "/secrets/warehouse-credentials"

const (
	envProjectID       = "LUMEN_PROJECT_ID"
	envCredentialsPath = "LUMEN_CREDENTIALS_PATH"
)

// ErrMissingProjectID is returned when the required project id environment
// variable is unset. Configuration errors are fatal to the load cycle.
var ErrMissingProjectID = errors.New(envProjectID + " environment variable not set")

// Config holds what the warehouse client needs to connect.
type Config struct {
	ProjectID       string
	CredentialsPath string // empty means ambient credentials
	DSN             string // warehouse database source
}

// ResolveConfig builds a Config from the environment.
// The mounted secret path is preferred; the env var is the local fallback.
func ResolveConfig(dsn string) (Config, error) {
	projectID := os.Getenv(envProjectID)
	if projectID == "" {
		return Config{}, ErrMissingProjectID
	}

	credsPath := mountedCredentialsPath
	if _, err := os.Stat(credsPath); err != nil {
		credsPath = os.Getenv(envCredentialsPath)
	}

	if credsPath != "" {
		if _, err := os.Stat(credsPath); err == nil {
			log.Printf("warehouse: using credentials at %s", credsPath)
		} else {
			credsPath = ""
		}
	}
	if credsPath == "" {
		log.Printf("warehouse: using ambient credentials")
	}

	return Config{
		ProjectID:       projectID,
		CredentialsPath: credsPath,
		DSN:             dsn,
	}, nil
}
