//go:build !windows

package main

// runService returns false, since only Windows has a service manager to run
// under.
func runService() (bool, error) {
	return false, nil
}
