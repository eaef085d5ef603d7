// Package desktop delivers results to the user's session: the clipboard,
// desktop notifications and the default image viewer. Each sink shells out
// to a platform tool through command.Runner.
package desktop
