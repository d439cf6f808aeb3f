// Command ustrcache-loadgen drives concurrent Intern traffic against an
// in-process interner from a token dataset (see tools/dataset_gen),
// reporting throughput. It exists to make it easy to reproduce a specific
// hit/miss ratio and concurrency level when chasing a performance
// regression, without writing a one-off program each time.
//
// Usage:
//
//	go run ./tools/dataset_gen -n 2000000 -vocab 50000 -dist=zipf -out tokens.txt
//	go run ./cmd/ustrcache-loadgen -in tokens.txt -workers 16
//
// © 2025 arena-cache authors. MIT License.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	ustrcache "github.com/Voskan/ustrcache/pkg"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		inPath  = flag.String("in", "", "token dataset, one token per line (required)")
		workers = flag.Int("workers", 8, "number of concurrent goroutines interning tokens")
	)
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "missing -in")
		os.Exit(1)
	}

	tokens, err := readTokens(*inPath)
	if err != nil {
		log.Fatalf("reading tokens: %v", err)
	}
	if len(tokens) == 0 {
		log.Fatal("dataset is empty")
	}

	shares := partition(tokens, *workers)

	start := time.Now()
	var g errgroup.Group
	for _, share := range shares {
		share := share
		g.Go(func() error {
			for _, tok := range share {
				ustrcache.Intern(tok)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("worker error: %v", err)
	}
	elapsed := time.Since(start)

	log.Printf("interned %d tokens across %d workers in %s (%.0f ops/s)",
		len(tokens), *workers, elapsed, float64(len(tokens))/elapsed.Seconds())
	log.Printf("distinct entries: %d, bytes allocated: %d, bytes capacity: %d",
		ustrcache.NumEntries(), ustrcache.TotalAllocated(), ustrcache.TotalCapacity())
}

func readTokens(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tokens []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		tokens = append(tokens, sc.Text())
	}
	return tokens, sc.Err()
}

// partition splits tokens into n contiguous shares for the worker pool.
func partition(tokens []string, n int) [][]string {
	if n <= 0 {
		n = 1
	}
	shares := make([][]string, n)
	per := (len(tokens) + n - 1) / n
	for i := 0; i < n; i++ {
		lo := i * per
		if lo >= len(tokens) {
			break
		}
		hi := lo + per
		if hi > len(tokens) {
			hi = len(tokens)
		}
		shares[i] = tokens[lo:hi]
	}
	return shares
}
