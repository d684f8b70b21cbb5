package dispatch

import "sync"

// Task is one unit of a fan-out. It receives a release function and
// must call it once it has begun: the next task in line is held back
// until then. Release is idempotent, and is invoked on the task's
// behalf if it returns (or panics) without calling it.
type Task func(release func())

// RunOrdered starts every task concurrently in slice order and blocks
// until all of them have finished.
//
// Start order is strict: whatever a task does before calling release
// happens before the next task's body runs. Completion order is
// unspecified; callers must not depend on it.
func RunOrdered(tasks []Task) {
	if len(tasks) == 0 {
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))

	prev := make(chan struct{})
	close(prev)

	for _, task := range tasks {
		gate := make(chan struct{})
		go func(task Task, prev, gate chan struct{}) {
			var once sync.Once
			release := func() {
				once.Do(func() { close(gate) })
			}
			defer wg.Done()
			defer release()
			<-prev
			task(release)
		}(task, prev, gate)
		prev = gate
	}

	wg.Wait()
}
