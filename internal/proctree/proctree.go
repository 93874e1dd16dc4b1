package proctree

// Terminate forcefully kills pid and its descendants. It reports whether any
// kill was delivered. Non-positive pids are rejected without a syscall.
func Terminate(pid int) bool {
	if pid <= 0 {
		return false
	}
	if err := killTree(pid); err == nil {
		return true
	}
	return killProcess(pid) == nil
}
