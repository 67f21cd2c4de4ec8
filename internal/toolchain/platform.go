package toolchain

import "runtime"

// HostOS names the operating system cbuild runs on, as seen by build
// scripts through host_os().
func HostOS() string {
	return osName(runtime.GOOS)
}

func osName(goos string) string {
	if goos == "darwin" {
		return "macos"
	}
	return goos
}
