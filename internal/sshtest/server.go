// Package sshtest runs throwaway SSH servers for exercising the relay
// end to end: a jumper that forwards direct-tcpip channels and a target that
// serves SFTP and answers exec requests.
package sshtest

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Options selects what a test server accepts.
type Options struct {
	// AuthorizedKey is the only client key accepted. Nil disables client auth.
	AuthorizedKey ssh.PublicKey
	// Forwarding allows direct-tcpip channels, which makes the server a jumper.
	Forwarding bool
	// SFTP serves the local filesystem on the sftp subsystem.
	SFTP bool
	// OnExec answers exec requests with output and an exit status. Without it
	// every command succeeds silently.
	OnExec func(cmd string) ([]byte, uint32)
}

// Server is a running test server.
type Server struct {
	ln      net.Listener
	hostKey ssh.Signer
	opts    Options

	stopCh chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	commands []string
}

// Start launches a server listening on listenAddr (e.g. 127.0.0.1:0).
func Start(listenAddr string, opts Options) (*Server, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		ln:      ln,
		hostKey: signer,
		opts:    opts,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
		conns:   make(map[net.Conn]struct{}),
	}
	go s.serve(s.config())
	return s, nil
}

func (s *Server) config() *ssh.ServerConfig {
	cfg := &ssh.ServerConfig{}
	if s.opts.AuthorizedKey == nil {
		cfg.NoClientAuth = true
	} else {
		want := s.opts.AuthorizedKey.Marshal()
		cfg.PublicKeyCallback = func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if bytes.Equal(key.Marshal(), want) {
				return nil, nil
			}
			return nil, errors.New("unknown public key")
		}
	}
	cfg.AddHostKey(s.hostKey)
	return cfg
}

func (s *Server) serve(cfg *ssh.ServerConfig) {
	defer close(s.done)
	for {
		_ = s.ln.(*net.TCPListener).SetDeadline(time.Now().Add(500 * time.Millisecond))
		conn, err := s.ln.Accept()
		select {
		case <-s.stopCh:
			if conn != nil {
				_ = conn.Close()
			}
			return
		default:
		}
		if err != nil {
			continue
		}
		if !s.track(conn) {
			return
		}
		go s.handleConn(conn, cfg)
	}
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		_ = c.Close()
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

// Addr returns the host:port the server listens on.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Host and Port split Addr for configs that keep them apart.
func (s *Server) Host() string {
	h, _, _ := net.SplitHostPort(s.Addr())
	return h
}

func (s *Server) Port() int {
	_, p, _ := net.SplitHostPort(s.Addr())
	n, _ := strconv.Atoi(p)
	return n
}

// HostKey returns the server's public host key.
func (s *Server) HostKey() ssh.PublicKey { return s.hostKey.PublicKey() }

// Commands returns the exec commands received so far.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// Close stops accepting, drops open connections and waits for the accept loop.
func (s *Server) Close() {
	close(s.stopCh)
	_ = s.ln.Close()
	<-s.done
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
	s.mu.Unlock()
}

func (s *Server) handleConn(raw net.Conn, cfg *ssh.ServerConfig) {
	defer s.untrack(raw)
	sc, chans, reqs, err := ssh.NewServerConn(raw, cfg)
	if err != nil {
		_ = raw.Close()
		return
	}
	defer sc.Close()
	go ssh.DiscardRequests(reqs)
	for nc := range chans {
		switch nc.ChannelType() {
		case "session":
			ch, in, err := nc.Accept()
			if err != nil {
				continue
			}
			go s.handleSession(ch, in)
		case "direct-tcpip":
			if !s.opts.Forwarding {
				_ = nc.Reject(ssh.Prohibited, "forwarding disabled")
				continue
			}
			go s.forward(nc)
		default:
			_ = nc.Reject(ssh.UnknownChannelType, "")
		}
	}
}

type directTCPIP struct {
	DestAddr string
	DestPort uint32
	OrigAddr string
	OrigPort uint32
}

func (s *Server) forward(nc ssh.NewChannel) {
	var p directTCPIP
	if err := ssh.Unmarshal(nc.ExtraData(), &p); err != nil {
		_ = nc.Reject(ssh.ConnectionFailed, "bad payload")
		return
	}
	dest := net.JoinHostPort(p.DestAddr, strconv.Itoa(int(p.DestPort)))
	conn, err := net.DialTimeout("tcp", dest, 5*time.Second)
	if err != nil {
		_ = nc.Reject(ssh.ConnectionFailed, err.Error())
		return
	}
	ch, in, err := nc.Accept()
	if err != nil {
		_ = conn.Close()
		return
	}
	go ssh.DiscardRequests(in)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(ch, conn)
		_ = ch.CloseWrite()
	}()
	go func() {
		defer wg.Done()
		_, _ = io.Copy(conn, ch)
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
	}()
	wg.Wait()
	_ = ch.Close()
	_ = conn.Close()
}

func (s *Server) handleSession(ch ssh.Channel, in <-chan *ssh.Request) {
	defer ch.Close()
	for req := range in {
		switch req.Type {
		case "exec":
			var p struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &p); err != nil {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			go ssh.DiscardRequests(in)
			s.exec(ch, p.Command)
			return
		case "subsystem":
			var p struct{ Name string }
			if err := ssh.Unmarshal(req.Payload, &p); err != nil || p.Name != "sftp" || !s.opts.SFTP {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			go ssh.DiscardRequests(in)
			srv, err := sftp.NewServer(ch)
			if err != nil {
				return
			}
			_ = srv.Serve()
			_ = srv.Close()
			return
		default:
			_ = req.Reply(false, nil)
		}
	}
}

func (s *Server) exec(ch ssh.Channel, cmd string) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()

	var (
		out  []byte
		code uint32
	)
	if s.opts.OnExec != nil {
		out, code = s.opts.OnExec(cmd)
	}
	_, _ = ch.Write(out)
	_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{code}))
}
