package types

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// GenerateRunID generates a unique run ID with prefix
func GenerateRunID() string {
	return fmt.Sprintf("run_%s", ksuid.New().String())
}

// GenerateID generates a generic unique ID
func GenerateID() string {
	return ksuid.New().String()
}
