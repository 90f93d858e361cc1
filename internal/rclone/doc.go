// Package rclone drives the rclone CLI for mounts and bidirectional syncs.
//
// It never talks to cloud storage itself: every operation shells out to
// rclone (or fusermount/umount) through a [Runner], which tests replace
// with a fake. [Manager] holds the rclone settings from the config file
// and the [Store] of mounts started by syncdash.
package rclone
