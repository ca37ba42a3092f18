package contentstore

import (
	"crypto/subtle"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/store_errors"
)

// Principal is the identity attached to an authorized request. The store
// never inspects token contents; it only consumes the verifier's verdict.
type Principal struct {
	Subject string
	Admin   bool
}

// Verifier is the authentication boundary.
type Verifier interface {
	Verify(token string) (Principal, error)
}

// StaticVerifier authorizes a single pre-shared admin token.
type StaticVerifier struct {
	AdminToken string
}

func (v StaticVerifier) Verify(token string) (Principal, error) {
	if v.AdminToken == "" || token == "" {
		return Principal{}, store_errors.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(v.AdminToken)) != 1 {
		return Principal{}, store_errors.ErrUnauthorized
	}
	return Principal{Subject: "admin", Admin: true}, nil
}
