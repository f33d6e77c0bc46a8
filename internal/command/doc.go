// Package command holds the cobra command tree of the fluidboard binary.
//
// The root command starts the interactive board. The subcommands work
// without it: list, get, apply, delete and create-dataset talk to the
// cluster once, and watch runs a synchronizer and prints what it sees.
package command
