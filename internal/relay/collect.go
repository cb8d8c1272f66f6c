package relay

import (
	"context"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/zrax-x/apt-analysis-mcp/internal/config"
)

// collect stages the requested samples in the target workdir by uploading the
// hash list and running the configured collector next to it.
func collect(ctx context.Context, target *ssh.Client, files *sftp.Client, t config.Target, hashes []string, logger *log.Logger) error {
	listPath := path.Join(t.Workdir, t.HashListFile)
	if err := writeRemote(files, listPath, strings.Join(hashes, "\n")+"\n"); err != nil {
		return errors.Wrapf(err, "upload %s", listPath)
	}
	if t.Cleanup {
		defer func() {
			if err := files.Remove(listPath); err != nil {
				logger.Warn("could not remove hash list", "path", listPath, "err", err)
			}
		}()
	}

	cmd := "cd " + shellQuote(t.Workdir) + " && " + t.CollectCommand
	logger.Debug("running collect command", "cmd", cmd)
	out, code, err := runRemoteCommandFunc(ctx, sshClientWrapper{target}, cmd, t.CollectTimeout)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return errors.Wrapf(ErrCollectFailed, "exit %d: %v", code, err)
		}
		return errors.Wrapf(ErrCollectFailed, "exit %d: %s", code, msg)
	}
	logger.Debug("collect command finished", "output_bytes", len(out))
	return nil
}

func writeRemote(files *sftp.Client, name, content string) error {
	f, err := files.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte(content)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
