package arithm

import (
	"runtime"
	"sync"
)

// parallelFor partitions [0,n) into equal ranges and runs fn on each
// range in a fork-join worker pool, blocking until every range has
// completed. fn must be safe to call concurrently for disjoint ranges
// and must not depend on the order ranges are scheduled: the
// partitioning is a pure map, so it never affects the numerical
// outcome and running it sequentially (n<=1 or a single core) must
// yield the identical result.
func parallelFor(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
