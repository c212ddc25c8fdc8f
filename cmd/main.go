package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/angeloszaimis/balancer-pools/config"
	"github.com/angeloszaimis/balancer-pools/internal/balancer"
	"github.com/angeloszaimis/balancer-pools/internal/composite"
	"github.com/angeloszaimis/balancer-pools/internal/configfile"
	"github.com/angeloszaimis/balancer-pools/internal/remoteapi"
	"github.com/angeloszaimis/balancer-pools/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, false, cfg.Environment)

	op, pool, nodes, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	bal, err := composite.New(cfg.Balancers, defaultRegistry(), log)
	if err != nil {
		log.Error("Failed to build balancers", slog.Any("err", err))
		os.Exit(1)
	}

	if err := run(bal, op, pool, nodes, log); err != nil {
		log.Error("Operation failed",
			slog.String("operation", op),
			slog.String("pool", pool),
			slog.Any("err", err))
		os.Exit(1)
	}
}

// defaultRegistry binds the built-in backend kinds. New kinds register here
// without touching the composite.
func defaultRegistry() *balancer.Registry {
	registry := balancer.NewRegistry()
	registry.Register(config.KindConfigFile, configfile.FromConfig)
	registry.Register(config.KindRemoteAPI, remoteapi.FromConfig)
	return registry
}

func parseArgs(args []string) (op, pool string, nodes []string, err error) {
	if len(args) < 2 {
		return "", "", nil, fmt.Errorf("expected an operation and a pool name")
	}

	op, pool, nodes = args[0], args[1], args[2:]

	switch op {
	case "add", "delete":
		if len(nodes) == 0 {
			return "", "", nil, fmt.Errorf("%s requires at least one host:port node", op)
		}
	case "get", "delete-pool", "cleanup":
		if len(nodes) > 0 {
			return "", "", nil, fmt.Errorf("%s takes no nodes", op)
		}
	default:
		return "", "", nil, fmt.Errorf("unknown operation %q", op)
	}

	return op, pool, nodes, nil
}

func run(bal balancer.Balancer, op, pool string, nodes []string, log *slog.Logger) error {
	switch op {
	case "add":
		return bal.AddNodes(pool, nodes)
	case "delete":
		return bal.DeleteNodes(pool, nodes)
	case "get":
		members, err := bal.GetNodes(pool)
		if err != nil {
			return err
		}
		for _, node := range members {
			fmt.Println(node)
		}
		return nil
	case "delete-pool":
		return bal.DeletePool(pool)
	case "cleanup":
		return balancer.DeletePoolIfEmpty(bal, pool, log)
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  balancer-pools add <pool> <host:port> [host:port...]
  balancer-pools delete <pool> <host:port> [host:port...]
  balancer-pools get <pool>
  balancer-pools delete-pool <pool>
  balancer-pools cleanup <pool>`)
}
