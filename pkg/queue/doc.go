// Package queue implements a delayed job queue with at-least-once
// delivery, per-job retry budgets and a capped archive of terminally
// failed jobs.
//
// Jobs are enqueued with an optional delay and become claimable once
// their scheduled time has passed. A polling worker claims jobs under a
// time-bounded lease and dispatches them to type-matched handlers; if a
// worker dies mid-job the lease expires and the job is claimable again.
//
// # Enqueueing
//
//	storage := queue.NewMemoryStorage()
//	enq, _ := queue.NewEnqueuer(storage)
//
//	jobID, err := enq.Enqueue(ctx, SendReminder{Email: "a@b.c"},
//		queue.WithDelay(24*time.Hour))
//
// The job name defaults to the payload's qualified type name, so the
// handler side needs no separate registration key.
//
// # Processing
//
//	worker, _ := queue.NewWorker(storage)
//	worker.RegisterHandler(queue.NewJobHandler(func(ctx context.Context, p SendReminder) error {
//		return send(ctx, p)
//	}))
//
//	g.Go(worker.Run(ctx))
//
// A failed handler re-schedules the job after a fixed backoff until the
// retry budget (default 3 attempts) is spent, at which point the job
// moves to a bounded failed archive for manual inspection.
//
// Two storage backends are provided: MemoryStorage for tests and local
// development, and RedisStorage for durable multi-process deployments.
// Claiming on Redis is a single Lua script, so concurrent workers never
// double-process a job.
package queue
