//go:build windows

package sink

import (
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
)

func dial(addr string) (net.Conn, error) {
	return winio.DialPipe(addr, nil)
}

func defaultAddress(pid int) string {
	return fmt.Sprintf(`\\.\pipe\ctrack-%d`, pid)
}
