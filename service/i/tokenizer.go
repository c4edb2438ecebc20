package i

import (
	"time"
)

// Tokenizer issues and checks the control tokens handed out for a
// simulation. The sim_id claim names the simulation the bearer may drive.
type Tokenizer interface {
	// Generate signs claims into a control token valid for ttl.
	Generate(claims map[string]interface{}, ttl time.Duration) (string, error)

	// Decode verifies a control token and returns its claims. Expired or
	// foreign tokens are rejected.
	Decode(token string) (map[string]interface{}, error)
}
