// Package store holds the client-side catalog state shared by every view: the two
// catalog listings, the current user's favorites, and their loading/error flags.
//
// Stores are explicit values created with their transport and torn down with Close;
// nothing here is a package-level singleton.
package store

import (
	"context"
	"net/http"
	"sync"

	"github.com/noah-isme/college-catalog/internal/service"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
)

var (
	// ErrStoreClosed is returned by write actions after Close.
	ErrStoreClosed = appErrors.New("STORE_CLOSED", http.StatusServiceUnavailable, "store is closed")
	// ErrTogglePending rejects a favorite change while any change for the same college
	// is still outstanding.
	ErrTogglePending = appErrors.New("TOGGLE_PENDING", http.StatusConflict, "a favorite change for this college is still in progress")
)

// lifetime ties every action to the owning store so Close aborts in-flight calls.
type lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newLifetime() lifetime {
	ctx, cancel := context.WithCancel(context.Background())
	return lifetime{ctx: ctx, cancel: cancel}
}

func (l lifetime) closed() bool {
	return l.ctx.Err() != nil
}

// bind derives a context cancelled by either the caller or the store's Close.
func (l lifetime) bind(parent context.Context) (context.Context, context.CancelFunc, error) {
	if l.closed() {
		return nil, nil, ErrStoreClosed
	}
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(l.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}, nil
}

// listeners fans state changes out to subscribed views.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

func (l *listeners[T]) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fns = nil
}

func outcome(err error) string {
	if err != nil {
		return service.OutcomeFailure
	}
	return service.OutcomeSuccess
}
