package sshclient

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

type Client struct {
	cfg    Config
	sshCfg ssh.ClientConfig
}

// New prepares a client. Credentials and known_hosts are read once here.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.User == "" {
		return nil, fmt.Errorf("ssh user is empty")
	}
	auth, err := cfg.authMethods(os.Getenv)
	if err != nil {
		return nil, err
	}
	hk, err := cfg.hostKeyCallback()
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg: cfg,
		sshCfg: ssh.ClientConfig{
			User:            cfg.User,
			Auth:            auth,
			HostKeyCallback: hk,
			Timeout:         cfg.Timeout,
		},
	}, nil
}

// Conn is one authenticated connection to a host.
type Conn struct {
	client *ssh.Client
}

// Dial connects to host. A host of the form name:port overrides the
// configured port.
func (c *Client) Dial(ctx context.Context, host string) (*Conn, error) {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, strconv.Itoa(c.cfg.Port))
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// the handshake ignores ctx, so bound it with a deadline
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(c.cfg.Timeout))
	}

	sshCfg := c.sshCfg
	cconn, chans, reqs, err := ssh.NewClientConn(conn, addr, &sshCfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Conn{client: ssh.NewClient(cconn, chans, reqs)}, nil
}

func (c *Conn) Close() error {
	return c.client.Close()
}

// Run executes cmd in a new session and returns its combined output.
func (c *Conn) Run(ctx context.Context, cmd AllowedCommand) (string, error) {
	line, err := cmd.Line()
	if err != nil {
		return "", err
	}

	sess, err := c.client.NewSession()
	if err != nil {
		return "", err
	}
	defer sess.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)

	go func() {
		out, err := sess.CombinedOutput(line)
		done <- result{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	case r := <-done:
		return string(r.out), r.err
	}
}
