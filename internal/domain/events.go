package domain

// StatusEvent is a connection or identity transition published to the display.
type StatusEvent interface {
	statusEvent()
}

type ReadStateChanged struct {
	State ConnectionState
}

type SendStateChanged struct {
	State ConnectionState
}

type NicknameReceived struct {
	Nickname string
}

type TokenReceived struct {
	Token string
}

func (ReadStateChanged) statusEvent() {}
func (SendStateChanged) statusEvent() {}
func (NicknameReceived) statusEvent() {}
func (TokenReceived) statusEvent()    {}

// CredentialEvent is a user edit of the identity used for the handshake.
type CredentialEvent interface {
	credentialEvent()
}

type NicknameChanged struct {
	Nickname string
}

type TokenChanged struct {
	Token string
}

func (NicknameChanged) credentialEvent() {}
func (TokenChanged) credentialEvent()    {}
