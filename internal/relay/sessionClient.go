package relay

// sessionClient is a minimal interface to obtain a command session
type sessionClient interface {
	NewSession() (session, error)
}
