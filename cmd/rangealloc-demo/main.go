// Command rangealloc-demo exercises a single Handle from the command line:
// it carves the requested region into fixed-size blocks, frees every other
// one, and prints the resulting free list.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cedrou/rangeallocator/pkg/rangealloc"
)

func main() {
	base := flag.Uint64("base", 0x10000, "base address of the managed range")
	length := flag.Uint64("length", 1<<20, "length in bytes of the managed range")
	granularity := flag.Uint64("granularity", 4096, "accounting unit in bytes")
	blockSize := flag.Uint64("block", 65536, "size in bytes of each demo block")
	bounded := flag.Bool("bounded", false, "use the bounded node-storage strategy instead of amortized")
	flag.Parse()

	var opts []rangealloc.Option
	if *bounded {
		opts = append(opts, rangealloc.WithStrategy(rangealloc.StrategyBounded))
	}

	h, err := rangealloc.Create(*base, *length, *granularity, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rangealloc-demo: %v\n", err)
		os.Exit(1)
	}
	defer h.Destroy()

	var blocks []uint64
	for {
		addr := h.Allocate(*blockSize, rangealloc.Any, 0)
		if addr == rangealloc.SentinelAddr {
			break
		}
		blocks = append(blocks, addr)
	}
	fmt.Printf("allocated %d block(s) of %d bytes\n", len(blocks), *blockSize)

	for i, addr := range blocks {
		if i%2 == 0 {
			h.Free(addr, *blockSize)
		}
	}
	fmt.Printf("freed every other block, %d still held\n", len(blocks)/2)

	for _, s := range h.Spans() {
		fmt.Printf("free: [0x%x, 0x%x) length=%d\n", s.Base, s.Base+s.Length, s.Length)
	}
}
