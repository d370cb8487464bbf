package identity

import "errors"

var ErrInvalidCredential = errors.New("invalid identity credential")

// Identity is a verified external principal.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}
