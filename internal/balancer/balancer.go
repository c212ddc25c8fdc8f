package balancer

import (
	"fmt"
	"log/slog"
)

// Balancer is the contract shared by every backend. All operations are
// idempotent: adding a node that is already a member, or deleting one that
// is not, must succeed without side effects. GetNodes returns a sorted,
// deduplicated slice and an empty slice for an unknown pool.
type Balancer interface {
	AddNodes(pool string, nodes []string) error
	DeleteNodes(pool string, nodes []string) error
	GetNodes(pool string) ([]string, error)
	DeletePool(pool string) error
}

// DeletePoolIfEmpty reads the pool's membership and deletes the pool when
// it has none. Backends call this to clean up after themselves; it is a free
// function rather than a method so every implementation shares the same
// read-then-conditionally-delete sequence.
func DeletePoolIfEmpty(b Balancer, pool string, log *slog.Logger) error {
	nodes, err := b.GetNodes(pool)
	if err != nil {
		return fmt.Errorf("checking pool %s: %w", pool, err)
	}

	if len(nodes) > 0 {
		return nil
	}

	log.Info("Deleting empty pool", slog.String("pool", pool))
	return b.DeletePool(pool)
}
