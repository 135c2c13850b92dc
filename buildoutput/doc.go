// Package buildoutput turns the raw output of a build tool into structured events.
//
// # Overview
//
// A Reader accepts output as it is produced (it is an io.Writer, so it can be
// plugged into exec.Cmd.Stdout and exec.Cmd.Stderr directly), splits it into
// lines and hands those lines to an ordered list of parsers running on a
// background goroutine. Parsers turn the lines they recognize into Events,
// which are forwarded to a Listener.
//
//	┌──────────┐   ┌───────────┐   ┌─────────┐   ┌──────────┐   ┌──────────┐
//	│  Write   │──▶│ assembler │──▶│  queue  │──▶│ dispatch │──▶│ Listener │
//	│ (bytes)  │   │  (lines)  │   │ (FIFO)  │   │ (parsers)│   │ (events) │
//	└──────────┘   └───────────┘   └─────────┘   └──────────┘   └──────────┘
//	                                                  │
//	                                                  ▼
//	                                            ┌──────────┐
//	                                            │ history  │
//	                                            │ (window) │
//	                                            └──────────┘
//
// # Lookahead
//
// Parsers receive a LineReader scoped to a single invocation. They may read
// further lines (for multi-line diagnostics, stack traces and so on) and push
// lines back when they have read too far. Lines are kept in a bounded history
// window (DefaultHistorySize lines), so pushing back is cheap. A scoped reader
// never rewinds before the line its invocation started on.
//
// Pushing back further than the history window still holds is not supported:
// the cursor is clamped to the oldest retained line and an error is logged.
//
// # Lifecycle
//
// The dispatch goroutine starts with the first complete line. Close flushes
// any trailing partial line, signals end of stream and waits, bounded by the
// close timeout, for the remaining lines to be dispatched. Writes after Close
// are discarded with a warning.
package buildoutput
