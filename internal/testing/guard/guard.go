// Package guard switches the process into test mode when imported, so
// commands exercised from tests never dial Postgres, Redis or Gotenberg.
package guard

import (
	"os"
	"sync"
)

// Env is the variable read by app.InTestMode.
const Env = "BUDGETDESK_TEST_MODE"

var once sync.Once

func init() {
	Enable()
}

// Enable sets the test mode variable unless the caller already chose a value.
func Enable() {
	once.Do(func() {
		if os.Getenv(Env) == "" {
			_ = os.Setenv(Env, "1")
		}
	})
}
