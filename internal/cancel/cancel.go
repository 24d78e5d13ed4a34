// Package cancel maps caller-chosen string tokens to cancellable
// contexts, so a long-running job can be aborted by a later request
// carrying the same token.
package cancel

import (
	"context"
	"sync"
)

type job struct {
	cancel context.CancelFunc
}

// Registry tracks live jobs by token. Registering a token that is
// already live cancels the previous job first.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*job
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*job)}
}

// Register derives a cancellable context from parent and binds it to
// token. The returned release func must be called when the job ends; it
// unbinds the token unless a newer registration already took it over.
// An empty token returns the parent untouched with a no-op release.
func (r *Registry) Register(parent context.Context, token string) (context.Context, func()) {
	if token == "" {
		return parent, func() {}
	}

	ctx, cancel := context.WithCancel(parent)
	j := &job{cancel: cancel}

	r.mu.Lock()
	if prev, ok := r.jobs[token]; ok {
		prev.cancel()
	}
	r.jobs[token] = j
	r.mu.Unlock()

	release := func() {
		r.mu.Lock()
		if r.jobs[token] == j {
			delete(r.jobs, token)
		}
		r.mu.Unlock()
		cancel()
	}
	return ctx, release
}

// Cancel aborts the job bound to token, reporting whether one was live.
func (r *Registry) Cancel(token string) bool {
	r.mu.Lock()
	j, ok := r.jobs[token]
	if ok {
		delete(r.jobs, token)
	}
	r.mu.Unlock()
	if ok {
		j.cancel()
	}
	return ok
}

// Active returns the number of live tokens.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
