// Package doctor diagnoses a syncdash setup and optionally repairs it.
//
// The checks cover:
//
//   - Tools: git (required), rclone and the FUSE unmount command (optional).
//
//   - Configuration: the config file parses and the workdir exists.
//
//   - Repositories: every registered repository is cloned, its origin
//     matches the registered URL and its branch tracks an upstream.
//
//   - Mounts: every mount recorded by syncdash is still mounted.
//
// # Usage
//
//	issues, stats := doctor.Diagnose(ctx, opts)
//	err := doctor.Run(ctx, opts) // prints the report, fixes with opts.Fix
//
// With Fix set, missing repositories are cloned, a missing workdir is
// created and stale mount entries are forgotten. Other issues are reported
// only.
package doctor
