package pos

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MappedTable is a LookupTable backed by a memory-mapped file, for callers
// that want zero-copy loading straight from disk instead of supplying their
// own byte views. The file is two concatenated regions: a StringPool region
// immediately followed by the TokenArray region.
type MappedTable struct {
	*LookupTable
	region mmap.MMap
	file   *os.File
}

// Open memory-maps path read-only and builds a LookupTable over it. The
// returned MappedTable must be closed to release the mapping; the
// LookupTable embedded in it becomes invalid after Close.
func Open(path string) (*MappedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pos: mmap %s: %w", path, err)
	}

	_, stringPoolLen, err := parseStringPool(region)
	if err != nil {
		region.Unmap()
		f.Close()
		return nil, err
	}

	table, err := New(region[stringPoolLen:], region[:stringPoolLen])
	if err != nil {
		region.Unmap()
		f.Close()
		return nil, err
	}

	return &MappedTable{LookupTable: table, region: region, file: f}, nil
}

// Close unmaps the file and releases the underlying file descriptor.
func (m *MappedTable) Close() error {
	if err := m.region.Unmap(); err != nil {
		m.file.Close()
		return err
	}
	return m.file.Close()
}
