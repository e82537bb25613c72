//go:build !windows

package sink

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
)

func dial(addr string) (net.Conn, error) {
	ua := &net.UnixAddr{Name: addr, Net: "unix"}
	return net.DialUnix("unix", nil, ua)
}

func defaultAddress(pid int) string {
	paths, err := filepath.Glob(fmt.Sprintf("%s/ctrack-%d-*.sock", os.TempDir(), pid))
	if err != nil || len(paths) == 0 {
		return ""
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] > paths[j] })
	return paths[0]
}
