package docker

import "os"

// currentUID returns the running process's uid, used to populate
// MAP_USER_ID for sandboxed runs that need to write as the invoking
// user. Returns -1 on platforms without a meaningful uid (windows).
func currentUID() int {
	return os.Getuid()
}
