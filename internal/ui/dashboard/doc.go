// Package dashboard is the interactive git dashboard.
//
// The screen has five fields cycled with TAB: the working directory, the
// merge strategy, the action, the repository list and the RUN button.
// Status scans, filesystem watching and action runs happen on background
// goroutines that report to the model as messages, so the screen stays
// responsive while git works.
package dashboard
