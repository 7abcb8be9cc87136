package config

import (
	"flag"
	"fmt"
	"strings"

	"distributed-kvstore/internal/transport"
)

// Config is a single node's startup configuration: its identity, listen
// address, and the fixed peer set for the lifetime of the process. There
// is no join/leave RPC; the peer set never changes after startup.
type Config struct {
	NodeID string
	Addr   string
	Peers  []transport.Peer // includes self
}

// NodeIDs returns the fixed, ordered set of every node identifier known to
// this process, self included — what internal/clock needs to build a
// dense clock.
func (c *Config) NodeIDs() []string {
	ids := make([]string, 0, len(c.Peers))
	seen := make(map[string]bool, len(c.Peers))
	for _, p := range c.Peers {
		if !seen[p.ID] {
			seen[p.ID] = true
			ids = append(ids, p.ID)
		}
	}
	if !seen[c.NodeID] {
		ids = append(ids, c.NodeID)
	}
	return ids
}

// Parse reads flags from args (typically os.Args[1:]): --id, --addr, and
// --peers (a comma-separated id=host:port list; when it has no entry for
// this node's id, one is appended from --id and --addr). The peer list is filtered by identity, never by
// address, so a deployment that reuses a host:port across peers still
// behaves correctly.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("kvnode", flag.ContinueOnError)
	nodeID := fs.String("id", "", "unique node identifier")
	addr := fs.String("addr", ":8080", "listen address (host:port)")
	peersFlag := fs.String("peers", "", "comma-separated id=host:port peer list, including self")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *nodeID == "" {
		return nil, fmt.Errorf("--id is required")
	}

	var peers []transport.Peer
	if *peersFlag != "" {
		for _, entry := range strings.Split(*peersFlag, ",") {
			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid peer entry %q: expected id=host:port", entry)
			}
			peers = append(peers, transport.Peer{ID: parts[0], Address: parts[1]})
		}
	}

	found := false
	for _, p := range peers {
		if p.ID == *nodeID {
			found = true
			break
		}
	}
	if !found {
		peers = append(peers, transport.Peer{ID: *nodeID, Address: *addr})
	}

	return &Config{NodeID: *nodeID, Addr: *addr, Peers: peers}, nil
}
