package repositories

import (
	"context"
	"sync"
)

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes a function within a transaction.
	// Hooks registered with AfterCommit run once it has committed.
	ExecTx(ctx context.Context, fn TxFn) error
}

type commitHooksKey struct{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

// WithCommitHooks prepares ctx to collect AfterCommit hooks for a new transaction.
// The returned function runs them; transaction managers call it after a successful commit.
func WithCommitHooks(ctx context.Context) (context.Context, func(context.Context)) {
	hooks := &commitHooks{}
	run := func(ctx context.Context) {
		hooks.mu.Lock()
		fns := hooks.fns
		hooks.fns = nil
		hooks.mu.Unlock()
		for _, fn := range fns {
			fn(ctx)
		}
	}
	return context.WithValue(ctx, commitHooksKey{}, hooks), run
}

// AfterCommit defers fn until the enclosing transaction commits.
// Outside a transaction fn runs immediately; on rollback it never runs.
func AfterCommit(ctx context.Context, fn func(context.Context)) {
	hooks, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok {
		fn(ctx)
		return
	}
	hooks.mu.Lock()
	hooks.fns = append(hooks.fns, fn)
	hooks.mu.Unlock()
}

// InTx reports whether ctx already belongs to a transaction started by ExecTx
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	return ok
}
