package relay

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zrax-x/apt-analysis-mcp/internal/sshtest"
)

func TestAgentAuth_NoSocket(t *testing.T) {
	_, _, err := agentAuth("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "SSH_AUTH_SOCK")

	_, _, err = agentAuth(filepath.Join(t.TempDir(), "agent.sock"))
	require.Error(t, err)
}

func TestOpenTunnel_UseAgentWithoutSocket(t *testing.T) {
	env := newTestEnv(t, sshtest.Options{})
	env.cfg.UseAgent = true
	_, err := openTunnel(t.Context(), env.cfg)
	require.Error(t, err)
}
