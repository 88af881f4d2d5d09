package app

import (
	"os"
	"sync"
)

const testModeEnv = "PRAXIS_TEST_MODE"

var (
	testMode     bool
	testModeOnce sync.Once
)

// InTestMode reports whether the application should skip runtime side effects,
// such as opening listeners or connecting to backing stores. Used by the
// binaries to exit early under smoke checks.
func InTestMode() bool {
	testModeOnce.Do(func() {
		testMode = os.Getenv(testModeEnv) == "1"
	})
	return testMode
}
