// Package runner applies git actions to registered repositories.
//
// [ProcessRepo] runs one action (sync, fetch, pull, push, status,
// untracked, ignored) in one repository and reports every step as an
// [Event]. A missing repository is cloned instead of processed.
//
// [Runner] fans a request out over many repositories with bounded
// parallelism, keeps each repository's events together, fires hooks and
// records the run in history. [ScanLocal] and [ScanRemote] probe status
// for the dashboard and [SmartSelect] picks what needs attention.
package runner
