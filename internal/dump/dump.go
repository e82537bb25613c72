// Package dump implements the optional raw event-dump file format from
// spec.md §6: a header (magic, version, call-site table) followed by a
// flat stream of goroutine/kind/call-site/timestamp records. Grounded in
// the teacher's own nettrace/binary.go + nettrace/block.go header-and-
// payload style (fixed-width little-endian records read with
// encoding/binary; Load stops at the first error and returns it, wrapped,
// rather than panicking mid-parse).
package dump

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Compaile/ctrack/internal/buffer"
	"github.com/Compaile/ctrack/internal/callsite"
	"github.com/Compaile/ctrack/internal/registry"
)

var magic = [4]byte{'C', 'T', 'R', 'K'}

const formatVersion uint16 = 1

// Dump writes callSites and drained to w in the round-trippable format.
func Dump(w io.Writer, callSites []*callsite.CallSite, drained []registry.DrainedBuffer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(callSites))); err != nil {
		return err
	}
	for _, cs := range callSites {
		if err := writeCallSite(bw, cs); err != nil {
			return err
		}
	}

	var totalEvents uint64
	for _, d := range drained {
		totalEvents += uint64(len(d.Events))
	}
	if err := binary.Write(bw, binary.LittleEndian, totalEvents); err != nil {
		return err
	}
	for _, d := range drained {
		for _, e := range d.Events {
			if err := writeEvent(bw, d.GoroutineID, e); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Load reads a file written by Dump, reconstructing the CallSite table
// and per-goroutine event buffers so draining them reproduces the same
// Tables as the equivalent live recording.
func Load(r io.Reader) ([]*callsite.CallSite, []registry.DrainedBuffer, error) {
	br := bufio.NewReader(r)

	var gotMagic [4]byte
	if _, err := io.ReadFull(br, gotMagic[:]); err != nil {
		return nil, nil, fmt.Errorf("ctrack: dump: reading magic: %w", err)
	}
	if gotMagic != magic {
		return nil, nil, fmt.Errorf("ctrack: dump: bad magic %q", gotMagic)
	}

	var version uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("ctrack: dump: reading version: %w", err)
	}
	if version != formatVersion {
		return nil, nil, fmt.Errorf("ctrack: dump: unsupported version %d", version)
	}

	var numSites uint32
	if err := binary.Read(br, binary.LittleEndian, &numSites); err != nil {
		return nil, nil, fmt.Errorf("ctrack: dump: reading call-site count: %w", err)
	}
	sites := make([]*callsite.CallSite, numSites)
	for i := range sites {
		cs, err := readCallSite(br)
		if err != nil {
			return nil, nil, fmt.Errorf("ctrack: dump: call-site %d: %w", i, err)
		}
		sites[i] = cs
	}

	var numEvents uint64
	if err := binary.Read(br, binary.LittleEndian, &numEvents); err != nil {
		return nil, nil, fmt.Errorf("ctrack: dump: reading event count: %w", err)
	}

	byGoroutine := make(map[uint64][]buffer.Event)
	order := make([]uint64, 0)
	for i := uint64(0); i < numEvents; i++ {
		gid, e, err := readEvent(br)
		if err != nil {
			return nil, nil, fmt.Errorf("ctrack: dump: event %d: %w", i, err)
		}
		if _, ok := byGoroutine[gid]; !ok {
			order = append(order, gid)
		}
		byGoroutine[gid] = append(byGoroutine[gid], e)
	}

	drained := make([]registry.DrainedBuffer, 0, len(order))
	for _, gid := range order {
		drained = append(drained, registry.DrainedBuffer{GoroutineID: gid, Events: byGoroutine[gid]})
	}
	return sites, drained, nil
}

func writeCallSite(w io.Writer, cs *callsite.CallSite) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(cs.ID)); err != nil {
		return err
	}
	if err := writeString(w, cs.File); err != nil {
		return err
	}
	if err := writeString(w, cs.Function); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(cs.Line)); err != nil {
		return err
	}
	overridden := uint8(0)
	if cs.Overridden {
		overridden = 1
	}
	return binary.Write(w, binary.LittleEndian, overridden)
}

func readCallSite(r io.Reader) (*callsite.CallSite, error) {
	var id, line uint32
	if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
		return nil, err
	}
	file, err := readString(r)
	if err != nil {
		return nil, err
	}
	function, err := readString(r)
	if err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &line); err != nil {
		return nil, err
	}
	var overridden uint8
	if err := binary.Read(r, binary.LittleEndian, &overridden); err != nil {
		return nil, err
	}
	return &callsite.CallSite{
		ID:         int(id),
		File:       file,
		Function:   function,
		Line:       int(line),
		Overridden: overridden != 0,
	}, nil
}

func writeEvent(w io.Writer, goroutineID uint64, e buffer.Event) error {
	if err := binary.Write(w, binary.LittleEndian, goroutineID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(e.Kind)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(e.CallSiteID)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, e.Timestamp)
}

func readEvent(r io.Reader) (uint64, buffer.Event, error) {
	var gid uint64
	if err := binary.Read(r, binary.LittleEndian, &gid); err != nil {
		return 0, buffer.Event{}, err
	}
	var kind uint8
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return 0, buffer.Event{}, err
	}
	var callSiteID uint32
	if err := binary.Read(r, binary.LittleEndian, &callSiteID); err != nil {
		return 0, buffer.Event{}, err
	}
	var ts int64
	if err := binary.Read(r, binary.LittleEndian, &ts); err != nil {
		return 0, buffer.Event{}, err
	}
	return gid, buffer.Event{Kind: buffer.Kind(kind), CallSiteID: int(callSiteID), Timestamp: ts}, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
