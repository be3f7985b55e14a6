// Package testsupport holds helpers shared across package tests.
package testsupport

import (
	"os"
	"testing"
)

// IntegrationEnabled reports whether Docker-backed tests were requested.
func IntegrationEnabled() bool {
	return !testing.Short() && os.Getenv("STAY_INTEGRATION") == "1"
}
