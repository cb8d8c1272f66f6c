package relay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zrax-x/apt-analysis-mcp/internal/config"
	"github.com/zrax-x/apt-analysis-mcp/internal/sshtest"
)

const (
	hashA = "3123bbd5564f4381820fb8da5810bd4d9718b5c80a7e8f055961007c6f30daff"
	hashB = "aa7f1e2b8c9d0e1f2a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8091"
	hashC = "0000000000000000000000000000000000000000000000000000000000000001"
)

// testEnv is a jumper and a target on loopback with a config that reaches the
// target only through the jumper.
type testEnv struct {
	cfg    *config.Config
	jumper *sshtest.Server
	target *sshtest.Server
}

func newTestEnv(t *testing.T, targetOpts sshtest.Options) *testEnv {
	t.Helper()
	t.Setenv("SSH_AUTH_SOCK", "")

	keys := t.TempDir()
	jumperKey, jumperPub, err := sshtest.NewKeyPair(keys, "jumper_ed25519", "")
	require.NoError(t, err)
	targetKey, targetPub, err := sshtest.NewKeyPair(keys, "target_ed25519", "")
	require.NoError(t, err)

	targetOpts.AuthorizedKey = targetPub
	targetOpts.SFTP = true
	target, err := sshtest.Start("127.0.0.1:0", targetOpts)
	require.NoError(t, err)
	t.Cleanup(target.Close)

	jumper, err := sshtest.Start("127.0.0.1:0", sshtest.Options{AuthorizedKey: jumperPub, Forwarding: true})
	require.NoError(t, err)
	t.Cleanup(jumper.Close)

	cfg := &config.Config{
		Jumper: config.Endpoint{Host: jumper.Host(), Port: jumper.Port(), User: "analyst", Key: jumperKey},
		Target: config.Target{
			Endpoint:       config.Endpoint{Host: target.Host(), Port: target.Port(), User: "storage", Key: targetKey},
			Workdir:        t.TempDir(),
			HashListFile:   "hashList.txt",
			CollectTimeout: 10 * time.Second,
			Cleanup:        true,
		},
		LocalDownloadDir: filepath.Join(t.TempDir(), "samples"),
		ConnTimeout:      5 * time.Second,
	}
	return &testEnv{cfg: cfg, jumper: jumper, target: target}
}

// stage places a sample file in the target workdir.
func (e *testEnv) stage(t *testing.T, hash, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.cfg.Target.Workdir, hash), []byte(content), 0o644))
}

func readDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
