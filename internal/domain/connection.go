package domain

type ConnectionState string

const (
	StateInitiated   ConnectionState = "initiated"
	StateEstablished ConnectionState = "established"
	StateClosed      ConnectionState = "closed"
)

func (s ConnectionState) Label() string {
	switch s {
	case StateInitiated:
		return "connecting"
	case StateEstablished:
		return "connection established"
	case StateClosed:
		return "connection closed"
	default:
		return "no connection"
	}
}

type Heartbeat struct {
	Reason string
}
