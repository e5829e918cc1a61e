package calculator

// Row-band task distribution for the sweep. The double buffer already
// guarantees reads see only pre-step values, so bands are independent and
// the only synchronization is waiting for every band of a dispatch.

type task struct {
	grid  int
	start int
	end   int
}

type executor struct {
	workers int
	tasks   chan task
	results chan sweepResult
}

func newExecutor(workers int) *executor {
	return &executor{
		workers: workers,
		tasks:   make(chan task, workers*2),
		results: make(chan sweepResult, workers*2),
	}
}

func (e *executor) run(s *Stepper) {
	for i := 0; i < e.workers; i++ {
		go func() {
			for t := range e.tasks {
				e.results <- s.sweepRows(t.grid, t.start, t.end)
			}
		}()
	}
}

func (e *executor) stop() {
	close(e.tasks)
}

// dispatch splits rows [0, rows) of one grid into bands, hands them to the
// workers and blocks until all bands report back.
func (e *executor) dispatch(gi, rows int) sweepResult {
	band := (rows + e.workers - 1) / e.workers
	if band < 1 {
		band = 1
	}
	n := 0
	for r := 0; r < rows; r += band {
		end := r + band
		if end > rows {
			end = rows
		}
		e.tasks <- task{grid: gi, start: r, end: end}
		n++
	}
	agg := sweepResult{finite: true}
	for i := 0; i < n; i++ {
		res := <-e.results
		if res.maxDelta > agg.maxDelta {
			agg.maxDelta = res.maxDelta
		}
		agg.finite = agg.finite && res.finite
	}
	return agg
}
