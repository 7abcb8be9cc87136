// cmd/demo drives a running cluster through the scenarios that motivate
// vector clocks and causal delivery: independent writes, a read-then-write
// causal dependency, a three-step causal chain, and concurrent writes that
// the clock should report as concurrent rather than ordered.
//
// It talks to an already-running cluster over HTTP; it starts nothing
// itself. Point it at the --servers used to start the nodes:
//
//	./demo --servers http://localhost:8080,http://localhost:8081,http://localhost:8082
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"distributed-kvstore/internal/client"
)

func main() {
	serversFlag := flag.String("servers", "http://localhost:8080,http://localhost:8081,http://localhost:8082",
		"comma-separated base URLs of the cluster's nodes")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	addrs := strings.Split(*serversFlag, ",")
	nodes := make([]*client.Client, len(addrs))
	for i, a := range addrs {
		nodes[i] = client.New(strings.TrimSpace(a), *timeout)
	}

	ctx := context.Background()

	fmt.Println("Checking that every node is reachable...")
	if !allHealthy(ctx, nodes, addrs) {
		fmt.Println("not all nodes are healthy; start the cluster first")
		os.Exit(1)
	}

	section("VECTOR CLOCKS: INDEPENDENT AND CAUSAL WRITES")
	vectorClockScenario(ctx, nodes)

	section("CAUSAL CONSISTENCY: A CHAIN OF DEPENDENT WRITES")
	causalChainScenario(ctx, nodes)

	section("CONCURRENT WRITES ACROSS NODES")
	concurrentScenario(ctx, nodes)

	section("DONE")
	fmt.Println("Every node should now report the same key set and converged values.")
	printStatus(ctx, nodes, addrs)
}

func allHealthy(ctx context.Context, nodes []*client.Client, addrs []string) bool {
	ok := true
	for i, n := range nodes {
		if _, err := n.Health(ctx); err != nil {
			fmt.Printf("  node %d (%s) unreachable: %v\n", i, addrs[i], err)
			ok = false
			continue
		}
		fmt.Printf("  node %d (%s) healthy\n", i, addrs[i])
	}
	return ok
}

func vectorClockScenario(ctx context.Context, nodes []*client.Client) {
	fmt.Println("Writing 'A' on node 0...")
	put(ctx, nodes[0], "demo", "A")

	time.Sleep(300 * time.Millisecond)
	fmt.Println("Writing 'B' on node 1, independently of node 0's write...")
	put(ctx, nodes[1%len(nodes)], "demo", "B")

	time.Sleep(300 * time.Millisecond)
	fmt.Println("Reading on node 2, then writing 'C' there (causally depends on what was read)...")
	get(ctx, nodes[2%len(nodes)], "demo")
	put(ctx, nodes[2%len(nodes)], "demo", "C")

	time.Sleep(500 * time.Millisecond)
	printStatus(ctx, nodes, nil)
}

func causalChainScenario(ctx context.Context, nodes []*client.Client) {
	fmt.Println("Step A: writing 'A' on node 0...")
	put(ctx, nodes[0], "causal_chain", "A")

	fmt.Println("Step B: reading on node 1, then writing 'B' (depends on A)...")
	get(ctx, nodes[1%len(nodes)], "causal_chain")
	put(ctx, nodes[1%len(nodes)], "causal_chain", "B")

	fmt.Println("Step C: reading on node 2, then writing 'C' (depends on B)...")
	get(ctx, nodes[2%len(nodes)], "causal_chain")
	put(ctx, nodes[2%len(nodes)], "causal_chain", "C")

	fmt.Println("Waiting for replication to settle...")
	time.Sleep(time.Second)
	printStatus(ctx, nodes, nil)

	fmt.Println("No node should observe 'C' without having first observed 'B', nor 'B' without 'A'.")
}

func concurrentScenario(ctx context.Context, nodes []*client.Client) {
	values := []string{"X", "Y", "Z"}
	for i, v := range values {
		n := nodes[i%len(nodes)]
		fmt.Printf("Writing concurrent_%s = %q on node %d...\n", v, v, i%len(nodes))
		put(ctx, n, fmt.Sprintf("concurrent_%s", v), v)
	}
	time.Sleep(time.Second)
	printStatus(ctx, nodes, nil)
	fmt.Println("These three writes share no causal order; their clocks should compare as concurrent.")
}

func put(ctx context.Context, c *client.Client, key, value string) {
	resp, err := c.Put(ctx, key, value)
	if err != nil {
		fmt.Printf("  put %s=%s failed: %v\n", key, value, err)
		return
	}
	fmt.Printf("  put %s=%s -> clock %v\n", key, value, resp.VectorClock)
}

func get(ctx context.Context, c *client.Client, key string) {
	resp, err := c.Get(ctx, key)
	if err == client.ErrNotFound {
		fmt.Printf("  get %s -> not found\n", key)
		return
	}
	if err != nil {
		fmt.Printf("  get %s failed: %v\n", key, err)
		return
	}
	fmt.Printf("  get %s -> %q (clock %v)\n", key, resp.Value, resp.VectorClock)
}

func printStatus(ctx context.Context, nodes []*client.Client, addrs []string) {
	for i, n := range nodes {
		resp, err := n.Status(ctx)
		if err != nil {
			fmt.Printf("  node %d: error - %v\n", i, err)
			continue
		}
		fmt.Printf("  node %d (%s): clock=%v buffer_size=%d keys=%d\n",
			i, resp.NodeID, resp.VectorClock, resp.BufferSize, len(resp.KVStore))
	}
}

func section(title string) {
	bar := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n %s\n%s\n", bar, title, bar)
}
