package domain

import "errors"

var (
	ErrConnectionLost  = errors.New("connection lost: no activity within watchdog window")
	ErrForcedReconnect = errors.New("credentials changed: reconnect required")
	ErrAuthorisation   = errors.New("failed to authorise: broken token")
	ErrRegistration    = errors.New("failed to register: register error")
	ErrMalformedReply  = errors.New("received malformed data during handshake")
)

// IsFatal reports whether err must stop the client instead of restarting the session.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMalformedReply)
}
