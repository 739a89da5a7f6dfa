package ext_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/fanout/ext"
	"github.com/xraph/fanout/id"
	"github.com/xraph/fanout/job"
)

// createdOnly implements only the job-created hook.
type createdOnly struct {
	calls int
	err   error
}

func (c *createdOnly) Name() string { return "test.created-only" }

func (c *createdOnly) OnJobCreated(context.Context, *job.Job) error {
	c.calls++
	return c.err
}

// allHooks tracks which hooks fire.
type allHooks struct {
	fired map[string]int
}

func newAllHooks() *allHooks { return &allHooks{fired: make(map[string]int)} }

func (a *allHooks) Name() string { return "test.all" }

func (a *allHooks) OnJobCreated(context.Context, *job.Job) error {
	a.fired["created"]++
	return nil
}

func (a *allHooks) OnJobStarted(context.Context, *job.Job) error {
	a.fired["started"]++
	return nil
}

func (a *allHooks) OnJobCompleted(context.Context, *job.Job, time.Duration) error {
	a.fired["completed"]++
	return nil
}

func (a *allHooks) OnJobFailed(context.Context, *job.Job, error) error {
	a.fired["failed"]++
	return nil
}

func (a *allHooks) OnJobCanceled(context.Context, *job.Job) error {
	a.fired["canceled"]++
	return nil
}

func (a *allHooks) OnJobSwept(context.Context, *job.Job) error {
	a.fired["swept"]++
	return nil
}

func (a *allHooks) OnItemCompleted(context.Context, *job.Job, string, time.Duration) error {
	a.fired["item_completed"]++
	return nil
}

func (a *allHooks) OnItemFailed(context.Context, *job.Job, string, error) error {
	a.fired["item_failed"]++
	return nil
}

func (a *allHooks) OnShutdown(context.Context) error {
	a.fired["shutdown"]++
	return nil
}

func testJob() *job.Job {
	return &job.Job{ID: id.NewJobID(), OwnerID: "7", Operation: "analyze"}
}

func newTestRegistry() *ext.Registry {
	return ext.NewRegistry(slog.New(slog.DiscardHandler))
}

func TestRegistry_EmitsOnlyImplementedHooks(t *testing.T) {
	reg := newTestRegistry()
	created := &createdOnly{}
	reg.Register(created)

	ctx := context.Background()
	j := testJob()

	reg.EmitJobCreated(ctx, j)
	reg.EmitJobStarted(ctx, j)
	reg.EmitJobCompleted(ctx, j, time.Second)
	reg.EmitJobFailed(ctx, j, errors.New("x"))
	reg.EmitJobCanceled(ctx, j)
	reg.EmitJobSwept(ctx, j)
	reg.EmitItemCompleted(ctx, j, "a", time.Second)
	reg.EmitItemFailed(ctx, j, "a", errors.New("x"))
	reg.EmitShutdown(ctx)

	if created.calls != 1 {
		t.Errorf("OnJobCreated fired %d times, want 1", created.calls)
	}
}

func TestRegistry_AllHooksDispatch(t *testing.T) {
	reg := newTestRegistry()
	all := newAllHooks()
	reg.Register(all)

	ctx := context.Background()
	j := testJob()

	reg.EmitJobCreated(ctx, j)
	reg.EmitJobStarted(ctx, j)
	reg.EmitJobCompleted(ctx, j, time.Second)
	reg.EmitJobFailed(ctx, j, errors.New("x"))
	reg.EmitJobCanceled(ctx, j)
	reg.EmitJobSwept(ctx, j)
	reg.EmitItemCompleted(ctx, j, "a", time.Second)
	reg.EmitItemFailed(ctx, j, "a", errors.New("x"))
	reg.EmitShutdown(ctx)

	for _, hook := range []string{
		"created", "started", "completed", "failed", "canceled",
		"swept", "item_completed", "item_failed", "shutdown",
	} {
		if all.fired[hook] != 1 {
			t.Errorf("hook %q fired %d times, want 1", hook, all.fired[hook])
		}
	}
}

func TestRegistry_HookErrorsDoNotPropagate(t *testing.T) {
	reg := newTestRegistry()
	failing := &createdOnly{err: errors.New("extension broke")}
	healthy := &createdOnly{}
	reg.Register(failing)
	reg.Register(healthy)

	// Must not panic, and the later extension still runs.
	reg.EmitJobCreated(context.Background(), testJob())

	if failing.calls != 1 || healthy.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1 — one extension's error must not block another",
			failing.calls, healthy.calls)
	}
}

func TestRegistry_Extensions(t *testing.T) {
	reg := newTestRegistry()
	a := &createdOnly{}
	b := newAllHooks()
	reg.Register(a)
	reg.Register(b)

	exts := reg.Extensions()
	if len(exts) != 2 {
		t.Fatalf("Extensions() has %d entries, want 2", len(exts))
	}
	if exts[0].Name() != "test.created-only" || exts[1].Name() != "test.all" {
		t.Error("extensions should be returned in registration order")
	}
}
