package biz

import (
	"context"
)

type preparedSink struct {
	name    string
	pending PendingEmit
}

// EmitAll hands c to every sink. All sinks are prepared before any of them
// commits; a failed Prepare aborts the sinks already prepared, so no sink
// publishes anything. A failed Commit aborts the sinks not yet committed.
func EmitAll(ctx context.Context, sinks []Sink, c *Curation) error {
	prepared := make([]preparedSink, 0, len(sinks))
	for _, sink := range sinks {
		pending, err := sink.Prepare(ctx, c)
		if err != nil {
			abortAll(ctx, prepared)
			return stageErr(StageEmit+" "+sink.Name(), err)
		}
		prepared = append(prepared, preparedSink{name: sink.Name(), pending: pending})
	}

	for i, p := range prepared {
		if err := p.pending.Commit(ctx); err != nil {
			abortAll(ctx, prepared[i+1:])
			return stageErr(StageEmit+" "+p.name, err)
		}
	}
	return nil
}

func abortAll(ctx context.Context, prepared []preparedSink) {
	// cleanup still runs when the run was canceled
	ctx = context.WithoutCancel(ctx)
	for _, p := range prepared {
		p.pending.Abort(ctx)
	}
}
