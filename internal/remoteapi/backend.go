package remoteapi

import (
	"errors"
	"log/slog"
	"time"

	"github.com/angeloszaimis/balancer-pools/config"
	"github.com/angeloszaimis/balancer-pools/internal/balancer"
)

const defaultGracePeriod = 2 * time.Second

// poolAPI is the slice of the administrative API the backend drives. The
// node parameter of the mutating calls is a singleton array-of-arrays; that
// shape is required by the remote protocol and wrapped in one place, in
// callNodeFunc. Implementations report unknown pools with an error wrapping
// balancer.ErrPoolNotFound.
type poolAPI interface {
	AddNodes(pools []string, nodes [][]string) error
	AddPool(pools []string, nodes [][]string) error
	DisableNodes(pools []string, nodes [][]string) error
	RemoveNodes(pools []string, nodes [][]string) error
	GetNodes(pools []string) ([]string, error)
	DeletePool(pools []string) error
}

// Backend manages pools through one control-plane endpoint. Every pool name
// the caller passes in is prefixed with poolPrefix on the wire; the caller
// never sees prefixed names.
type Backend struct {
	api         poolAPI
	poolPrefix  string
	gracePeriod time.Duration
	sleep       func(time.Duration)
	log         *slog.Logger
}

// FromConfig is the registry constructor for the remoteapi kind.
func FromConfig(cfg config.BackendConfig, log *slog.Logger) (balancer.Balancer, error) {
	grace := defaultGracePeriod
	if cfg.GracePeriod != "" {
		parsed, err := time.ParseDuration(cfg.GracePeriod)
		if err != nil {
			return nil, err
		}
		grace = parsed
	}

	client := NewClient(cfg.Endpoint, cfg.User, cfg.Password)
	return newBackend(client, cfg.PoolPrefix, grace, log), nil
}

func newBackend(api poolAPI, poolPrefix string, gracePeriod time.Duration, log *slog.Logger) *Backend {
	return &Backend{
		api:         api,
		poolPrefix:  poolPrefix,
		gracePeriod: gracePeriod,
		sleep:       time.Sleep,
		log:         log,
	}
}

// AddNodes adds the nodes to the pool; the control plane ignores nodes that
// are already members. A pool unknown to the control plane is created
// lazily, carrying the same node set.
func (b *Backend) AddNodes(pool string, nodes []string) error {
	b.log.Info("Adding nodes to pool",
		slog.String("pool", pool),
		slog.Any("nodes", nodes))

	err := b.callNodeFunc(b.api.AddNodes, pool, nodes)
	if errors.Is(err, balancer.ErrPoolNotFound) {
		return b.addPool(pool, nodes)
	}

	return err
}

// DeleteNodes drains and removes the nodes that are actually members: the
// request is first intersected with current membership, and an empty
// intersection returns without any remote call. Draining disables the nodes,
// waits out the grace period so established connections can finish, then
// removes them. An unknown pool anywhere in the sequence counts as done.
func (b *Backend) DeleteNodes(pool string, nodes []string) error {
	current, err := b.GetNodes(pool)
	if err != nil {
		return err
	}

	targets := balancer.FromSlice(current).Intersect(balancer.FromSlice(nodes))
	if len(targets) == 0 {
		b.log.Info("No nodes to delete from pool", slog.String("pool", pool))
		return nil
	}

	b.log.Info("Deleting nodes from pool",
		slog.String("pool", pool),
		slog.Any("nodes", targets.Sorted()))

	if err := b.drain(pool, targets.Sorted()); err != nil {
		if !errors.Is(err, balancer.ErrPoolNotFound) {
			return err
		}
	}

	return balancer.DeletePoolIfEmpty(b, pool, b.log)
}

func (b *Backend) drain(pool string, nodes []string) error {
	if err := b.callNodeFunc(b.api.DisableNodes, pool, nodes); err != nil {
		return err
	}

	b.sleep(b.gracePeriod)

	return b.callNodeFunc(b.api.RemoveNodes, pool, nodes)
}

// GetNodes returns the pool's membership, sorted. An unknown pool reads as
// empty rather than an error.
func (b *Backend) GetNodes(pool string) ([]string, error) {
	nodes, err := b.api.GetNodes([]string{b.poolPrefix + pool})
	if err != nil {
		if errors.Is(err, balancer.ErrPoolNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	return balancer.FromSlice(nodes).Sorted(), nil
}

// DeletePool removes the pool; deleting one the control plane does not know
// is a no-op.
func (b *Backend) DeletePool(pool string) error {
	b.log.Info("Deleting pool", slog.String("pool", pool))

	err := b.api.DeletePool([]string{b.poolPrefix + pool})
	if errors.Is(err, balancer.ErrPoolNotFound) {
		return nil
	}

	return err
}

func (b *Backend) addPool(pool string, nodes []string) error {
	b.log.Info("Creating pool",
		slog.String("pool", pool),
		slog.Any("nodes", nodes))

	return b.callNodeFunc(b.api.AddPool, pool, nodes)
}

// callNodeFunc applies the wire shape shared by the node-mutating calls: a
// one-element array holding the prefixed pool name, and the node list
// wrapped as a singleton array-of-array-of-strings.
func (b *Backend) callNodeFunc(fn func([]string, [][]string) error, pool string, nodes []string) error {
	return fn([]string{b.poolPrefix + pool}, [][]string{nodes})
}
