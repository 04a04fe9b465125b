package sshclient

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Config describes how the prober logs into execution hosts.
type Config struct {
	User        string
	Port        int
	Timeout     time.Duration
	KeyPath     string
	PasswordEnv string
	// KnownHosts is a known_hosts file. Empty accepts any host key.
	KnownHosts string
}

func (c Config) withDefaults() Config {
	if c.Port <= 0 {
		c.Port = 22
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	return c
}

// authMethods collects the key and password methods that are configured.
func (c Config) authMethods(getenv func(string) string) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if c.KeyPath != "" {
		pem, err := os.ReadFile(c.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parse ssh key %s: %w", c.KeyPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if c.PasswordEnv != "" {
		password := getenv(c.PasswordEnv)
		if password == "" {
			return nil, fmt.Errorf("empty env var: %s", c.PasswordEnv)
		}
		methods = append(methods,
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no ssh auth configured: set a key path or a password env var")
	}
	return methods, nil
}

func (c Config) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.KnownHosts == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(c.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts: %w", err)
	}
	return cb, nil
}
