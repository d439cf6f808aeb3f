package main

// dataset_gen.go is a tiny helper utility to generate deterministic token
// datasets for standalone load-testing of ustrcache (outside `go test`). It
// emits newline-separated string tokens drawn from a fixed-size vocabulary,
// which can later be piped into a load generator that calls Intern once per
// line to reproduce a given hit/miss ratio and skew.
//
// Usage:
//
//	go run ./tools/dataset_gen -n 1000000 -vocab 20000 -dist=zipf -seed=42 -out tokens.txt
//
// Flags:
//
//	-n       number of tokens to generate (default 1e6)
//	-vocab   size of the token vocabulary tokens are drawn from (default 20000)
//	-dist    distribution over the vocabulary: "uniform" or "zipf" (default uniform)
//	-zipfs   Zipf s parameter (>1)  (default 1.2)
//	-zipfv   Zipf v parameter (>=1) (default 1.0)
//	-seed    RNG seed (default current time)
//	-out     output file (default stdout)
//
// A Zipf-skewed run is the realistic case for an interner: most traffic
// hits a small head of popular tokens, exercising the hit path, while a
// long tail of distinct tokens trickles through the miss/admission path.
//
// © 2025 arena-cache authors. MIT License.

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"
)

func main() {
	var (
		n       = flag.Int("n", 1_000_000, "number of tokens to generate")
		vocab   = flag.Int("vocab", 20_000, "size of the token vocabulary")
		dist    = flag.String("dist", "uniform", "distribution: uniform or zipf")
		zipfS   = flag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
		zipfV   = flag.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
		seedVal = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outPath = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	if *vocab <= 0 {
		fmt.Fprintln(os.Stderr, "vocab must be > 0")
		os.Exit(1)
	}

	rnd := rand.New(rand.NewSource(*seedVal))

	var gen func() uint64
	switch *dist {
	case "uniform":
		gen = func() uint64 { return uint64(rnd.Intn(*vocab)) }
	case "zipf":
		if *zipfS <= 1.0 || *zipfV < 1.0 {
			fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >=1")
			os.Exit(1)
		}
		z := rand.NewZipf(rnd, *zipfS, *zipfV, uint64(*vocab-1))
		gen = z.Uint64
	default:
		fmt.Fprintln(os.Stderr, "unknown dist:", *dist)
		os.Exit(1)
	}

	var out *os.File
	var err error
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()

	for i := 0; i < *n; i++ {
		idx := gen()
		w.WriteString("token-")
		w.WriteString(strconv.FormatUint(idx, 10))
		w.WriteByte('\n')
	}
}
