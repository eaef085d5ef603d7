// Package process isolates external tools in their own process group so a
// cancelled context terminates them together with any helpers they spawn.
package process
