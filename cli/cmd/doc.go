// Package cmd provides the build, clean, rebuild and query subcommands.
//
// Each command loads the Marefile named by the [Project] stored in its
// context. Arguments of the form key=value become command-line keys that
// mask both the built-in defaults and the Marefile. Other arguments name
// targets.
package cmd
