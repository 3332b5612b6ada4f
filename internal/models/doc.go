// Package models defines the values that flow through a sheet job.
//
//   - [Entry] : one link read from the identifier column, with its 1-based row
//   - [StatsResult] : the four engagement counters of an entry, or the unavailable marker
//   - [BatchWrite] : the ordered per-row results flushed to the table in one call
//   - [JobStatus] : the pollable snapshot of the current or last job
//
// Entries and results are immutable once produced; a JobStatus is always a copy.
package models
