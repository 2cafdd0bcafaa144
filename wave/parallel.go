package wave

import "sync"

// rowSpan is a half-open range of rows handled by one worker.
type rowSpan struct{ y0, y1 int }

// splitRows divides [lo, hi) into at most workers contiguous spans.
func splitRows(lo, hi, workers int) []rowSpan {
	total := hi - lo
	if total <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}
	rowsPer := (total + workers - 1) / workers
	spans := make([]rowSpan, 0, workers)
	for y := lo; y < hi; y += rowsPer {
		end := y + rowsPer
		if end > hi {
			end = hi
		}
		spans = append(spans, rowSpan{y0: y, y1: end})
	}
	return spans
}

// forRows runs fn over the precomputed spans, concurrently when there is
// more than one. Every span writes disjoint rows of an output buffer, so the
// result does not depend on scheduling.
func forRows(spans []rowSpan, fn func(y0, y1 int)) {
	switch len(spans) {
	case 0:
		return
	case 1:
		fn(spans[0].y0, spans[0].y1)
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(spans))
	for _, sp := range spans {
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(sp.y0, sp.y1)
	}
	wg.Wait()
}
