// Package drive is the interactive rclone manager.
//
// [Menu] shows the current state of the default mountpoint and returns the
// chosen [Item]. A [Session] loops over the menu and runs each item as a
// short question-and-answer flow on a [Prompter], printing rclone's output
// as it arrives.
package drive
