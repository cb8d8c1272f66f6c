// Command sshpair runs a local jumper and target for trying the CLI and the
// MCP server without real infrastructure. The target serves SFTP from the
// local filesystem, so the generated config's workdir is a local directory.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/zrax-x/apt-analysis-mcp/internal/sshtest"
)

func main() {
	dir := pflag.StringP("dir", "d", "./sshpair", "Directory for client keys, known_hosts, workdir and config.json")
	jumperAddr := pflag.String("jumper", "127.0.0.1:20222", "Jumper listen address")
	targetAddr := pflag.String("target", "127.0.0.1:20223", "Target listen address")
	pflag.Parse()

	if err := run(*dir, *jumperAddr, *targetAddr); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "sshpair:", err)
		os.Exit(1)
	}
}

func run(dir, jumperAddr, targetAddr string) error {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	workdir := filepath.Join(dir, "workdir")
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return err
	}

	jumperKey, jumperPub, err := sshtest.NewKeyPair(dir, "jumper_ed25519", "")
	if err != nil {
		return err
	}
	targetKey, targetPub, err := sshtest.NewKeyPair(dir, "target_ed25519", "")
	if err != nil {
		return err
	}

	target, err := sshtest.Start(targetAddr, sshtest.Options{
		AuthorizedKey: targetPub,
		SFTP:          true,
		OnExec: func(cmd string) ([]byte, uint32) {
			_, _ = fmt.Fprintf(os.Stderr, "target exec: %s\n", cmd)
			return nil, 0
		},
	})
	if err != nil {
		return fmt.Errorf("start target: %w", err)
	}
	defer target.Close()

	jumper, err := sshtest.Start(jumperAddr, sshtest.Options{AuthorizedKey: jumperPub, Forwarding: true})
	if err != nil {
		return fmt.Errorf("start jumper: %w", err)
	}
	defer jumper.Close()

	knownHosts := filepath.Join(dir, "known_hosts")
	if err := os.WriteFile(knownHosts, []byte(jumper.KnownHostsLine()+"\n"+target.KnownHostsLine()+"\n"), 0o600); err != nil {
		return err
	}

	cfg := map[string]any{
		"jumper": map[string]any{"host": jumper.Host(), "port": jumper.Port(), "user": "analyst", "key": jumperKey},
		"target": map[string]any{"host": target.Host(), "port": target.Port(), "user": "storage", "key": targetKey, "workdir": workdir},
		"local_download_dir": filepath.Join(dir, "downloads"),
		"known_hosts":        knownHosts,
		"strict_host_key":    true,
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	cfgPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(cfgPath, b, 0o600); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stderr, "jumper listening on %s, target on %s\n", jumper.Addr(), target.Addr())
	_, _ = fmt.Fprintf(os.Stderr, "drop samples named by SHA256 into %s\n", workdir)
	_, _ = fmt.Fprintf(os.Stderr, "try: apt-analysis --config %s verify --connect\n", cfgPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}
