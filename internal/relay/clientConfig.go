package relay

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/zrax-x/apt-analysis-mcp/internal/config"
)

// clientConfig builds the SSH client settings for one hop. The hop's own key
// always comes first; the agent, when enabled, is only a fallback.
func clientConfig(ep config.Endpoint, hostKeys ssh.HostKeyCallback, extra ssh.AuthMethod, timeout time.Duration) (*ssh.ClientConfig, error) {
	signer, err := loadSigner(ep.Key, ep.Passphrase)
	if err != nil {
		return nil, errors.Wrapf(err, "load key for %s@%s", ep.User, ep.Addr())
	}
	auths := []ssh.AuthMethod{ssh.PublicKeys(signer)}
	if extra != nil {
		auths = append(auths, extra)
	}
	return &ssh.ClientConfig{
		User:            ep.User,
		Auth:            auths,
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}, nil
}
