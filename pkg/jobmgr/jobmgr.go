// Package jobmgr runs detached units of work: fire-and-forget tasks whose
// outcome is funneled into a single callback, and delayed tasks scheduled on
// timers.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(func(msg string) {
//	    log.Println("JOB:", msg)
//	})
//
//	jm.Go("cmd:ping", func() error {
//	    return doWork()
//	}, func(err error) {
//	    // err is nil, the returned error, or a *PanicError
//	})
//
//	jm.After("delete:123", 5*time.Second, func() { _ = deleteMessage() })
//
//	// on shutdown
//	jm.Stop()
//	jm.Wait()
//
// Tasks have no cancellation: once started they run to completion.
package jobmgr

import (
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"
)

// StatusReporter receives lifecycle events for tasks.
// Example messages:
//
//	running:cmd:ping
//	error:cmd:ping:boom
//	done:cmd:ping
//	scheduled:delete:123
type StatusReporter func(string)

// PanicError is handed to the completion callback when a task panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string { return fmt.Sprintf("panic: %v", p.Value) }

// Manager tracks running tasks and pending timers. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	seq      uint64
	running  map[uint64]string
	timers   map[uint64]*time.Timer
	Reporter StatusReporter
}

// NewManager creates a new Manager. The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		running:  make(map[uint64]string),
		timers:   make(map[uint64]*time.Timer),
		Reporter: reporter,
	}
}

// Go runs fn on its own goroutine and returns immediately. When fn finishes,
// done receives its error, or a *PanicError if it panicked. done may be nil.
func (m *Manager) Go(name string, fn func() error, done func(error)) {
	m.mu.Lock()
	m.seq++
	id := m.seq
	m.running[id] = name
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.report("running:" + name)

		err := m.call(fn)
		if err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		delete(m.running, id)
		m.mu.Unlock()

		if done != nil {
			done(err)
		}
	}()
}

// After runs fn once d has elapsed unless Stop is called first. A panic in fn
// is recovered and reported.
func (m *Manager) After(name string, d time.Duration, fn func()) {
	m.mu.Lock()
	m.seq++
	id := m.seq
	m.timers[id] = time.AfterFunc(d, func() {
		m.mu.Lock()
		_, pending := m.timers[id]
		delete(m.timers, id)
		m.mu.Unlock()
		if !pending {
			return
		}
		if err := m.call(func() error { fn(); return nil }); err != nil {
			m.report("error:" + name + ":" + err.Error())
			return
		}
		m.report("done:" + name)
	})
	m.mu.Unlock()
	m.report("scheduled:" + name)
}

// Wait blocks until every task started with Go has finished. Timers are not waited for.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Stop cancels all pending timers and returns how many were dropped.
func (m *Manager) Stop() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	stopped := 0
	for id, t := range m.timers {
		if t.Stop() {
			stopped++
		}
		delete(m.timers, id)
	}
	return stopped
}

// Pending returns the number of timers that have not fired yet.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// List returns the sorted names of running tasks.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.running))
	for _, name := range m.running {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of running tasks.
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

// report delivers lifecycle messages to the reporter if present.
func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
