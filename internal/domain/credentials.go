package domain

// Credentials identify the user to the chat server. An empty field is unset.
type Credentials struct {
	Token    string
	Nickname string
}

func (c Credentials) Available() bool {
	return c.Token != "" || c.Nickname != ""
}

// Identity is the account the server reports after a successful handshake.
type Identity struct {
	Nickname    string `json:"nickname"`
	AccountHash string `json:"account_hash"`
}
