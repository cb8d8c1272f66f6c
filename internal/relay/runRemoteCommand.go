package relay

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// runRemoteCommand executes a single command and returns output + exit code.
// A timeout of zero waits until ctx is done.
func runRemoteCommand(ctx context.Context, client sessionClient, cmd string, timeout time.Duration) ([]byte, int, error) {
	type result struct {
		out      []byte
		exitCode int
		err      error
	}

	run := func() result {
		sess, err := client.NewSession()
		if err != nil {
			return result{nil, -1, err}
		}
		// Close after CombinedOutput reports io.EOF once the remote side has
		// already torn the channel down.
		defer func() { _ = sess.Close() }()
		b, err := sess.CombinedOutput(cmd)
		if err == nil {
			return result{b, 0, nil}
		}
		exit := -1
		var ee *ssh.ExitError
		if errors.As(err, &ee) {
			exit = ee.ExitStatus()
		}
		return result{b, exit, err}
	}

	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	ch := make(chan result, 1)
	go func() { ch <- run() }()

	select {
	case r := <-ch:
		return r.out, r.exitCode, r.err
	case <-ctx.Done():
		// The session goroutine ends when the caller closes the connection.
		return nil, -1, ctx.Err()
	}
}
