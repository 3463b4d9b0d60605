package coordinator

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Timeout and retry constants for coordinator operations
var (
	// DefaultOperationTimeout bounds a single create/delete/rollback run
	DefaultOperationTimeout = getTimeoutOrDefault("OPERATION_TIMEOUT", 10*time.Minute, 5*time.Second)
	// MaxAttempts is the total number of tries for a retryable network call
	MaxAttempts = uint64(getCountOrDefault("RETRY_ATTEMPTS", 3, 2))
	// DefaultRetryDelay is the initial delay for exponential backoff
	DefaultRetryDelay = getTimeoutOrDefault("RETRY_DELAY", 1*time.Second, 10*time.Millisecond)
	// MaxRateLimitWait caps how long a server retry-after hint is honored
	MaxRateLimitWait = getTimeoutOrDefault("RATE_LIMIT_MAX_WAIT", 2*time.Minute, 50*time.Millisecond)
)

// isTestEnvironment detects if we're running in a test environment
func isTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, ".test") || strings.Contains(arg, "go test") {
			return true
		}
	}
	return os.Getenv("GO_TEST") == "true" || os.Getenv("TEST_MODE") == "true"
}

// getTimeoutOrDefault returns production timeout or test timeout based on environment
func getTimeoutOrDefault(envVar string, prodDefault, testDefault time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil {
			return duration
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}

// getCountOrDefault returns production count or test count based on environment
func getCountOrDefault(envVar string, prodDefault, testDefault int) int {
	if env := os.Getenv(envVar); env != "" {
		if count, err := strconv.Atoi(env); err == nil {
			return count
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}
