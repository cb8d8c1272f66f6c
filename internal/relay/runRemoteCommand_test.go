package relay

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	out    []byte
	err    error
	delay  time.Duration
	cmd    string
	closed bool
}

func (f *fakeSession) CombinedOutput(cmd string) ([]byte, error) {
	f.cmd = cmd
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.out, f.err
}

func (f *fakeSession) Close() error { f.closed = true; return nil }

type fakeClient struct {
	sess   *fakeSession
	newErr error
}

func (c *fakeClient) NewSession() (session, error) {
	if c.newErr != nil {
		return nil, c.newErr
	}
	return c.sess, nil
}

var (
	_ session       = (*fakeSession)(nil)
	_ sessionClient = (*fakeClient)(nil)
)

func TestRunRemoteCommand_Success(t *testing.T) {
	s := &fakeSession{out: []byte("staged 2\n")}
	out, code, err := runRemoteCommand(context.Background(), &fakeClient{sess: s}, "python3 collect.py", 0)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "staged 2\n", string(out))
	require.Equal(t, "python3 collect.py", s.cmd)
	require.True(t, s.closed)
}

func TestRunRemoteCommand_Timeout(t *testing.T) {
	s := &fakeSession{out: []byte("slow\n"), delay: 200 * time.Millisecond}
	out, code, err := runRemoteCommand(context.Background(), &fakeClient{sess: s}, "sleep", 10*time.Millisecond)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Equal(t, -1, code)
	require.Nil(t, out)
}

func TestRunRemoteCommand_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &fakeSession{delay: 200 * time.Millisecond}
	_, code, err := runRemoteCommand(ctx, &fakeClient{sess: s}, "sleep", 0)
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, -1, code)
}

func TestRunRemoteCommand_NewSessionError(t *testing.T) {
	out, code, err := runRemoteCommand(context.Background(), &fakeClient{newErr: errors.New("no session")}, "cmd", 0)
	require.Error(t, err)
	require.Equal(t, -1, code)
	require.Nil(t, out)
}

func TestRunRemoteCommand_CommandErrorWithoutExitStatus(t *testing.T) {
	s := &fakeSession{out: []byte("oops\n"), err: errors.New("boom")}
	out, code, err := runRemoteCommand(context.Background(), &fakeClient{sess: s}, "cmd", 0)
	require.Error(t, err)
	require.Equal(t, -1, code)
	require.Equal(t, "oops\n", string(out))
}

func TestSSHClientWrapper_NilClient(t *testing.T) {
	_, err := sshClientWrapper{}.NewSession()
	require.Error(t, err)
}
