package relay

import "github.com/pkg/errors"

// NewSession opens a new exec channel on the underlying *ssh.Client.
func (w sshClientWrapper) NewSession() (session, error) {
	if w.c == nil {
		return nil, errors.New("nil ssh client")
	}
	s, err := w.c.NewSession()
	if err != nil {
		return nil, err
	}
	return sshSessionWrapper{s}, nil
}
