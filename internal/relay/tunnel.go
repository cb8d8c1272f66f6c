package relay

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/zrax-x/apt-analysis-mcp/internal/config"
)

// Tunnel is an authenticated session on the target carried inside an
// authenticated session on the jumper.
type Tunnel struct {
	jumper *ssh.Client
	target *ssh.Client
	agent  io.Closer
}

// Target returns the client connected to the storage host.
func (t *Tunnel) Target() *ssh.Client { return t.target }

// Close releases the target session first, then the jumper session it rides
// on. It is safe on a partially opened tunnel and returns the first error.
func (t *Tunnel) Close() error {
	var first error
	if t.target != nil {
		first = t.target.Close()
		t.target = nil
	}
	if t.jumper != nil {
		if err := t.jumper.Close(); err != nil && first == nil {
			first = err
		}
		t.jumper = nil
	}
	if t.agent != nil {
		_ = t.agent.Close()
		t.agent = nil
	}
	return first
}

// openTunnel authenticates to the jumper and, through it, to the target. Keys
// and known_hosts are loaded before anything is dialled.
func openTunnel(ctx context.Context, cfg *config.Config) (_ *Tunnel, err error) {
	hostKeys, err := hostKeyCallback(cfg.KnownHosts, cfg.StrictHostKey)
	if err != nil {
		return nil, err
	}

	t := &Tunnel{}
	defer func() {
		if err != nil {
			_ = t.Close()
		}
	}()

	var extra ssh.AuthMethod
	if cfg.UseAgent {
		extra, t.agent, err = agentAuth(os.Getenv("SSH_AUTH_SOCK"))
		if err != nil {
			return nil, err
		}
	}

	jumperCfg, err := clientConfig(cfg.Jumper, hostKeys, extra, cfg.ConnTimeout)
	if err != nil {
		return nil, err
	}
	targetCfg, err := clientConfig(cfg.Target.Endpoint, hostKeys, extra, cfg.ConnTimeout)
	if err != nil {
		return nil, err
	}

	hopCtx, cancel := withTimeout(ctx, cfg.ConnTimeout)
	t.jumper, err = dialSSHFunc(hopCtx, cfg.Jumper.Addr(), jumperCfg, cfg.ConnTimeout)
	cancel()
	if err != nil {
		return nil, errors.Wrapf(ErrJumperConnect, "%s@%s: %v", cfg.Jumper.User, cfg.Jumper.Addr(), err)
	}

	hopCtx, cancel = withTimeout(ctx, cfg.ConnTimeout)
	t.target, err = dialThrough(hopCtx, t.jumper, cfg.Target.Addr(), targetCfg)
	cancel()
	if err != nil {
		return nil, errors.Wrapf(ErrTargetConnect, "%s@%s via %s: %v", cfg.Target.User, cfg.Target.Addr(), cfg.Jumper.Addr(), err)
	}
	return t, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
