package configfile

import (
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const sshDialTimeout = 10 * time.Second

// sshShell runs commands and transfers files over SSH with password
// authentication. Connections are dialed per call and closed before the
// call returns; the shell holds no live session between operations.
type sshShell struct {
	user     string
	password string
}

func newSSHShell(user, password string) *sshShell {
	return &sshShell{user: user, password: password}
}

func (s *sshShell) dial(host string) (*ssh.Client, error) {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, "22")
	}

	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            s.user,
		Auth:            []ssh.AuthMethod{ssh.Password(s.password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sshDialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}

	return client, nil
}

func (s *sshShell) ReadFile(host, path string) ([]byte, error) {
	client, err := s.dial(host)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	ftp, err := sftp.NewClient(client)
	if err != nil {
		return nil, fmt.Errorf("opening sftp to %s: %w", host, err)
	}
	defer ftp.Close()

	f, err := ftp.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s on %s: %w", path, host, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("opening %s on %s: %w", path, host, err)
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (s *sshShell) PutFile(host, path string, contents []byte) error {
	client, err := s.dial(host)
	if err != nil {
		return err
	}
	defer client.Close()

	ftp, err := sftp.NewClient(client)
	if err != nil {
		return fmt.Errorf("opening sftp to %s: %w", host, err)
	}
	defer ftp.Close()

	f, err := ftp.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s on %s: %w", path, host, err)
	}

	if _, err := f.Write(contents); err != nil {
		f.Close()
		return fmt.Errorf("writing %s on %s: %w", path, host, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s on %s: %w", path, host, err)
	}

	return ftp.Chmod(path, 0o644)
}

// Sudo runs a single command under sudo, feeding the password on stdin.
func (s *sshShell) Sudo(host, command string) error {
	client, err := s.dial(host)
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("opening session on %s: %w", host, err)
	}
	defer session.Close()

	session.Stdin = strings.NewReader(s.password + "\n")

	if out, err := session.CombinedOutput("sudo -S -p '' " + command); err != nil {
		return fmt.Errorf("running %q on %s: %w (output: %s)",
			command, host, err, strings.TrimSpace(string(out)))
	}

	return nil
}
