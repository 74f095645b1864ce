// Package auth abstracts the admin identity check so handlers do not compare
// strings ad hoc. The only implementation today is a single static credential;
// swapping in tokens or sessions later only means another Authorizer.
package auth

import "errors"

// ErrUnauthorized is returned for any credential that does not match.
var ErrUnauthorized = errors.New("unauthorized")

type Authorizer interface {
	// Authorize returns ErrUnauthorized unless credential identifies the admin.
	Authorize(credential string) error
}

type StaticAdmin struct {
	adminID string
}

func NewStaticAdmin(adminID string) *StaticAdmin {
	return &StaticAdmin{adminID: adminID}
}

func (a *StaticAdmin) Authorize(credential string) error {
	if credential == "" || credential != a.adminID {
		return ErrUnauthorized
	}
	return nil
}
