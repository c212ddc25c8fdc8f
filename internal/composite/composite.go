package composite

import (
	"fmt"
	"log/slog"

	"github.com/angeloszaimis/balancer-pools/config"
	"github.com/angeloszaimis/balancer-pools/internal/balancer"
	"github.com/angeloszaimis/balancer-pools/pkg/logger"
)

// Composite fans operations out to several child backends so one logical
// pool can span heterogeneous control planes. Fan-out is sequential, in
// configuration order, and non-transactional: a failing child does not
// undo what earlier children already applied.
type Composite struct {
	children []balancer.Balancer
	log      *slog.Logger
}

// New builds a composite from the configured balancer list, resolving each
// entry's kind through the registry.
func New(cfgs []config.BackendConfig, registry *balancer.Registry, log *slog.Logger) (*Composite, error) {
	children := make([]balancer.Balancer, 0, len(cfgs))

	for i, cfg := range cfgs {
		child, err := registry.Build(cfg, logger.ForBackend(log, cfg.Kind))
		if err != nil {
			return nil, fmt.Errorf("building balancer %d: %w", i, err)
		}
		children = append(children, child)
	}

	return &Composite{children: children, log: log}, nil
}

// newComposite wraps already-built children, for tests and embedding.
func newComposite(children []balancer.Balancer, log *slog.Logger) *Composite {
	return &Composite{children: children, log: log}
}

func (c *Composite) AddNodes(pool string, nodes []string) error {
	return c.each("add nodes", func(child balancer.Balancer) error {
		return child.AddNodes(pool, nodes)
	})
}

func (c *Composite) DeleteNodes(pool string, nodes []string) error {
	return c.each("delete nodes", func(child balancer.Balancer) error {
		return child.DeleteNodes(pool, nodes)
	})
}

func (c *Composite) DeletePool(pool string) error {
	return c.each("delete pool", func(child balancer.Balancer) error {
		return child.DeletePool(pool)
	})
}

// GetNodes merges every child's membership into one sorted, deduplicated
// slice. Children that disagree are merged silently; per-host divergence
// warnings are a backend concern, not a fan-out one.
func (c *Composite) GetNodes(pool string) ([]string, error) {
	nodes := balancer.NewNodeSet()

	for _, child := range c.children {
		childNodes, err := child.GetNodes(pool)
		if err != nil {
			return nil, err
		}
		nodes = nodes.Union(balancer.FromSlice(childNodes))
	}

	return nodes.Sorted(), nil
}

// each applies op to every child in order. All children are attempted even
// after a failure, so the healthy ones still converge; the first error is
// what the caller sees.
func (c *Composite) each(op string, fn func(balancer.Balancer) error) error {
	var firstErr error

	for i, child := range c.children {
		if err := fn(child); err != nil {
			if firstErr == nil {
				firstErr = err
			} else {
				c.log.Debug("Additional balancer failure during fan-out",
					slog.String("operation", op),
					slog.Int("child", i),
					slog.Any("err", err))
			}
		}
	}

	return firstErr
}
