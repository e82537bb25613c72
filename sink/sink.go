// Package sink streams a drain's raw event dump to a local diagnostics
// collector process over a platform-specific transport, mirroring the
// teacher's own CollectTracing client (client_unix.go's dial/
// DefaultServerAddress pair): ctrack has no session handshake to
// perform, so Send simply writes one dump.Dump payload per call.
package sink

import (
	"fmt"
	"net"

	"github.com/Compaile/ctrack/internal/callsite"
	"github.com/Compaile/ctrack/internal/dump"
	"github.com/Compaile/ctrack/internal/registry"
)

// Sink is an open connection to a local diagnostics collector.
type Sink struct {
	conn net.Conn
}

// Dial opens a connection to addr, a platform-specific local transport
// address: a Unix domain socket path on non-Windows platforms, or a
// named-pipe path dialed through github.com/Microsoft/go-winio on
// Windows (see sink_unix.go / sink_windows.go).
func Dial(addr string) (*Sink, error) {
	conn, err := dial(addr)
	if err != nil {
		return nil, fmt.Errorf("ctrack: sink: dial %q: %w", addr, err)
	}
	return &Sink{conn: conn}, nil
}

// Send writes one dump.Dump payload describing callSites and drained to
// the collector.
func (s *Sink) Send(callSites []*callsite.CallSite, drained []registry.DrainedBuffer) error {
	return dump.Dump(s.conn, callSites, drained)
}

// Close closes the underlying connection.
func (s *Sink) Close() error {
	return s.conn.Close()
}

// DefaultAddress returns the well-known local transport address a
// collector for pid is expected to be listening on, mirroring
// dotnetdiag.DefaultServerAddress.
func DefaultAddress(pid int) string {
	return defaultAddress(pid)
}
