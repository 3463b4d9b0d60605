package service

import "time"

// Timeout constants for service operations
const (
	// DefaultFlyTimeout is the timeout for fly set-pipeline operations
	DefaultFlyTimeout = 60 * time.Second
)
