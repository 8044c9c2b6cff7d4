//go:build windows

package main

// quietCtrlC is a no-op on windows.
func quietCtrlC() func() {
	return func() {}
}
