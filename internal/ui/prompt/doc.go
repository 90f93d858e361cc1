// Package prompt provides simple interactive prompts.
//
// Every prompt takes a default that Enter accepts, shown in brackets the
// way the drive menu presents them:
//   - [Confirm]: yes/no, "[Y/n]" or "[y/N]"
//   - [TextInput]: single line, "[default]"
//   - [Select]: one option from a list, cursor on the default
package prompt
