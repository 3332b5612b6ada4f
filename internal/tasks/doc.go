// Package tasks runs sheet jobs and publishes their progress for polling.
//
// # Sheet Job
//
// [SheetJob.Run] walks a table through four stages:
//
//  1. [Validating] : read column one; the first cell must be exactly "LINK"
//     - otherwise a log line explains why and the job ends without writing anything
//  2. [Processing] : resolve each link in row order
//     - a blank cell ends the list; rows below it are never touched
//     - a failed lookup queues four "ERROR" cells for its row
//     - lookups are spaced by a fixed delay enforced with a [rate.Limiter]
//  3. [Finalizing] : flush all queued rows with one batch write
//  4. [Idle] : status left with running=false and progress=100
//
// Errors are typed: [*ValidationError] for a bad header, [*StageError] for anything that cut the
// run short. A run cut short discards the rows it had already resolved.
//
// # Status
//
// [StatusCell] holds the live [models.JobStatus]. The job goroutine writes it; HTTP handlers and
// the scheduler read copies via [StatusCell.Snapshot]. Progress is monotonic within a run.
//
// # Manager
//
// [Manager] owns the single in-flight job. [Manager.Start] validates the target against the
// configured set, then admits the job with an atomic compare-and-swap; rejected starts leave the
// status untouched.
//
// # Scheduler
//
// [Scheduler] optionally triggers [Manager.Start] for every target on a cron schedule.
package tasks
