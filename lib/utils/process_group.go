package utils

import (
	"runtime"
	"sync"
)

type ParallelOptions struct {
	Routines int
}

// ParallelForEach runs proc for every item on a fixed number of goroutines.
// A failing item does not stop the others. The returned slice holds the error
// of each item, in input order, or nil if all succeeded.
func ParallelForEach[T any](items []T, proc func(T) error, opts ...ParallelOptions) []error {
	o := ParallelOptions{
		Routines: max(min(runtime.GOMAXPROCS(-1), runtime.NumCPU()/2)-1, 1),
	}
	for _, oi := range opts {
		if oi.Routines > 0 {
			o.Routines = oi.Routines
		}
	}
	o.Routines = min(o.Routines, max(len(items), 1))

	errs := make([]error, len(items))
	failed := false

	input := make(chan int, 2*o.Routines)
	var mutex sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < o.Routines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range input {
				err := proc(items[idx])
				if err != nil {
					mutex.Lock()
					errs[idx] = err
					failed = true
					mutex.Unlock()
				}
			}
		}()
	}

	for i := range items {
		input <- i
	}
	close(input)

	wg.Wait()

	if !failed {
		return nil
	}
	return errs
}
