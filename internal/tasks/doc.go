// Package tasks synchronizes assignment due dates into tracker tasks with real-time progress reporting.
//
// # Run
//
// [SyncEngine.Run] performs one strictly sequential pass:
//
//  1. Build the existing-task index ([SyncEngine.BuildIndex]): content -> task ID for the target project.
//     If the tracker cannot be listed the run stops here with [shared.ErrIndexUnavailable].
//  2. List active courses and, for every course outside the exclusion set, its assignments.
//  3. Drop assignments without a due date or already past due ([Filter]).
//  4. Compute the content key "[<course code>] - <assignment name>" ([CourseCode], [ContentKey]).
//  5. Update the indexed task, or create a new one in the target project, labelled with the course code.
//
// The index is read-only for the whole run. Tasks whose assignment disappears upstream are left alone.
//
// # Failure Policy
//
// [SyncOptions.OnError] selects what a failed create/update does: "abort" stops the iteration
// ([shared.ErrSyncAborted]), "continue" records it and moves on ([shared.ErrPartialSync] at the end).
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Sends block until the update is
// received or the context is done.
package tasks
