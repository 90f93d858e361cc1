// Package git provides git operations via shell commands.
//
// All operations call the git CLI rather than a Go git library, so SSH keys,
// credential helpers and safe.directory settings behave exactly as they do
// in the user's shell.
//
// # Status Derivation
//
// Repository status is derived from exit codes and output of a few
// sequential git calls:
//
//   - [GetLocalStatus]: "diff-index --quiet HEAD --" (dirty), "rev-parse @{u}"
//     (upstream), "log @{u}.. --oneline" (unpushed)
//   - [GetRemoteStatus]: optional "fetch --quiet", then "log HEAD..@{u} --oneline"
//   - [GetSummary]: both directions in a single compact [Summary]
//
// # Sync Operations
//
// Building blocks used by the action runner:
//
//   - [Clone], [Fetch], [Pull], [Push]: stream output line by line via [LineFunc]
//   - [AddAll], [Commit], [HasUncommitted], [HasStaged]
//   - [ShortStatus], [Untracked], [Ignored]: read-only inspections
//
// Long-running commands return an [Output] carrying the exit code: a failed
// pull or push is a normal outcome to report, not a Go error. Go errors are
// reserved for git not starting, cancellation and timeouts
// ([WithCommandTimeout]).
package git
