package relay

import (
	"context"
	"net"
	"time"

	"golang.org/x/crypto/ssh"
)

// dialSSH establishes an SSH client connection to addr over TCP.
func dialSSH(ctx context.Context, addr string, cfg *ssh.ClientConfig, dialTimeout time.Duration) (*ssh.Client, error) {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return handshake(ctx, conn, addr, cfg)
}

// dialThrough reaches addr from the jumper's side and runs the SSH handshake
// over the forwarded channel. Nothing is dialled from the local network.
func dialThrough(ctx context.Context, jumper *ssh.Client, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	conn, err := jumper.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return handshake(ctx, conn, addr, cfg)
}

// handshake runs the client handshake on conn and gives up when ctx is done.
// conn is closed on every failure path.
func handshake(ctx context.Context, conn net.Conn, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	type result struct {
		c     ssh.Conn
		chans <-chan ssh.NewChannel
		reqs  <-chan *ssh.Request
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
		ch <- result{c, chans, reqs, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			_ = conn.Close()
			return nil, r.err
		}
		return ssh.NewClient(r.c, r.chans, r.reqs), nil
	case <-ctx.Done():
		_ = conn.Close()
		if r := <-ch; r.err == nil {
			_ = r.c.Close()
		}
		return nil, ctx.Err()
	}
}
