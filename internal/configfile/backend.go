package configfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand"
	"path"
	"strings"

	"github.com/angeloszaimis/balancer-pools/config"
	"github.com/angeloszaimis/balancer-pools/internal/balancer"
)

const (
	defaultConfigDir  = "/etc/balancer/pools"
	defaultStagingDir = "/tmp"
	defaultReloadCmd  = "systemctl reload nginx"
)

// remoteShell is the transport the backend drives: file reads and writes on
// a remote host plus privileged command execution. The production
// implementation runs over SSH; tests substitute an in-memory fake.
// ReadFile reports a missing file with an error wrapping fs.ErrNotExist.
type remoteShell interface {
	ReadFile(host, path string) ([]byte, error)
	PutFile(host, path string, contents []byte) error
	Sudo(host, command string) error
}

// Backend maintains one membership file per pool on every configured host.
// All hosts are kept synchronized by fanning each mutation out to each of
// them in turn.
type Backend struct {
	hosts      []string
	configDir  string
	stagingDir string
	reloadCmd  string
	shell      remoteShell
	log        *slog.Logger
}

// FromConfig is the registry constructor for the configfile kind.
func FromConfig(cfg config.BackendConfig, log *slog.Logger) (balancer.Balancer, error) {
	return newBackend(cfg, newSSHShell(cfg.User, cfg.Password), log), nil
}

func newBackend(cfg config.BackendConfig, shell remoteShell, log *slog.Logger) *Backend {
	b := &Backend{
		hosts:      cfg.Hosts,
		configDir:  cfg.ConfigDir,
		stagingDir: cfg.StagingDir,
		reloadCmd:  cfg.ReloadCmd,
		shell:      shell,
		log:        log,
	}

	if b.configDir == "" {
		b.configDir = defaultConfigDir
	}
	if b.stagingDir == "" {
		b.stagingDir = defaultStagingDir
	}
	if b.reloadCmd == "" {
		b.reloadCmd = defaultReloadCmd
	}

	return b
}

// GetNodes reads the pool file from every host. When hosts disagree it logs
// a single warning for the call and returns the union of everything seen,
// so a partially updated fleet still reports all traffic targets.
func (b *Backend) GetNodes(pool string) ([]string, error) {
	var nodes balancer.NodeSet
	warned := false

	for _, host := range b.hosts {
		hostNodes, err := b.getHostNodes(host, pool)
		if err != nil {
			return nil, err
		}

		if nodes == nil {
			nodes = hostNodes
			continue
		}

		if !hostNodes.Equal(nodes) {
			if !warned {
				b.log.Warn("Hosts disagree about pool membership",
					slog.String("pool", pool),
					slog.String("host", host),
					slog.Any("host_nodes", hostNodes.Sorted()),
					slog.Any("other_nodes", nodes.Sorted()))
				warned = true
			}
			nodes = nodes.Union(hostNodes)
		}
	}

	if nodes == nil {
		nodes = balancer.NewNodeSet()
	}

	return nodes.Sorted(), nil
}

// AddNodes merges the given nodes into the cross-host view of the pool and
// rewrites the full membership on every host, reloading each one.
func (b *Backend) AddNodes(pool string, nodes []string) error {
	current, err := b.GetNodes(pool)
	if err != nil {
		return err
	}

	nodeSet := balancer.FromSlice(current).Union(balancer.FromSlice(nodes))

	b.log.Info("Adding nodes to pool",
		slog.String("pool", pool),
		slog.Any("nodes", nodes))

	for _, host := range b.hosts {
		if err := b.setHostNodes(host, pool, nodeSet); err != nil {
			return err
		}
		if err := b.reload(host); err != nil {
			return err
		}
	}

	return nil
}

// DeleteNodes removes the given nodes host by host, recomputing each host's
// membership from that host's own file rather than the cross-host union.
// Afterwards the pool is deleted if nothing is left in it.
func (b *Backend) DeleteNodes(pool string, nodes []string) error {
	toDelete := balancer.FromSlice(nodes)

	b.log.Info("Deleting nodes from pool",
		slog.String("pool", pool),
		slog.Any("nodes", nodes))

	for _, host := range b.hosts {
		current, err := b.getHostNodes(host, pool)
		if err != nil {
			return err
		}
		if err := b.setHostNodes(host, pool, current.Diff(toDelete)); err != nil {
			return err
		}
		if err := b.reload(host); err != nil {
			return err
		}
	}

	return balancer.DeletePoolIfEmpty(b, pool, b.log)
}

// DeletePool removes the pool file from every host and reloads. Removing a
// file that is already gone is fine, so the operation stays idempotent.
func (b *Backend) DeletePool(pool string) error {
	for _, host := range b.hosts {
		if err := b.shell.Sudo(host, "rm -f "+b.poolPath(pool)); err != nil {
			return fmt.Errorf("removing pool %s on %s: %w", pool, host, err)
		}
		if err := b.reload(host); err != nil {
			return err
		}
	}

	return nil
}

func (b *Backend) getHostNodes(host, pool string) (balancer.NodeSet, error) {
	contents, err := b.shell.ReadFile(host, b.poolPath(pool))
	if err != nil {
		// A host without the pool file simply has no members yet.
		if errors.Is(err, fs.ErrNotExist) {
			return balancer.NewNodeSet(), nil
		}
		return nil, fmt.Errorf("reading pool %s on %s: %w", pool, host, err)
	}

	return parseNodes(contents), nil
}

// setHostNodes writes the membership file through a staging path: the
// contents land under the staging dir first, then a privileged mv and chown
// put them into place. The pool file is always rewritten whole.
func (b *Backend) setHostNodes(host, pool string, nodes balancer.NodeSet) error {
	target := b.poolPath(pool)
	staging := path.Join(b.stagingDir, randomName(10))

	if err := b.shell.PutFile(host, staging, renderNodes(nodes)); err != nil {
		return fmt.Errorf("staging pool %s on %s: %w", pool, host, err)
	}
	if err := b.shell.Sudo(host, fmt.Sprintf("mv %s %s", staging, target)); err != nil {
		return fmt.Errorf("installing pool %s on %s: %w", pool, host, err)
	}
	if err := b.shell.Sudo(host, "chown root "+target); err != nil {
		return fmt.Errorf("chowning pool %s on %s: %w", pool, host, err)
	}

	return nil
}

func (b *Backend) reload(host string) error {
	if err := b.shell.Sudo(host, b.reloadCmd); err != nil {
		return fmt.Errorf("reloading config on %s: %w", host, err)
	}
	return nil
}

func (b *Backend) poolPath(pool string) string {
	return path.Join(b.configDir, pool+".conf")
}

// parseNodes reads one host:port per line, ignoring blanks and comments.
func parseNodes(contents []byte) balancer.NodeSet {
	nodes := balancer.NewNodeSet()

	for _, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		nodes.Add(line)
	}

	return nodes
}

func renderNodes(nodes balancer.NodeSet) []byte {
	var sb strings.Builder
	for _, node := range nodes.Sorted() {
		sb.WriteString(node)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func randomName(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"

	name := make([]byte, n)
	for i := range name {
		name[i] = letters[rand.Intn(len(letters))]
	}
	return string(name)
}
