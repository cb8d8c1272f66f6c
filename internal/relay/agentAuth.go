package relay

import (
	"io"
	"net"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// agentAuth connects to the agent listening on sock. The returned closer owns
// the agent connection and must outlive every handshake that uses the method.
func agentAuth(sock string) (ssh.AuthMethod, io.Closer, error) {
	if sock == "" {
		return nil, nil, errors.New("use_agent is set but SSH_AUTH_SOCK is empty")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, errors.Wrap(err, "ssh agent")
	}
	ag := agent.NewClient(conn)
	return ssh.PublicKeysCallback(ag.Signers), conn, nil
}
