package device

import (
	"fmt"
	"os"
)

// File is a BlockDevice stored in a regular file. Block n lives at byte
// offset n*BlockSize. Concurrent calls are safe: ReadAt and WriteAt on an
// *os.File do not share a file offset.
type File struct {
	f  *os.File
	bs int
	n  uint32
}

// OpenFile opens (creating if needed) path as a device of n blocks of bs
// bytes. A shorter file is extended with zeros.
func OpenFile(path string, bs int, n uint32) (*File, error) {
	if bs <= 0 || n == 0 {
		return nil, fmt.Errorf("device: invalid geometry %d x %d", n, bs)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	size := int64(bs) * int64(n)
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if fi.Size() < size {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return &File{f: f, bs: bs, n: n}, nil
}

func (d *File) BlockSize() int    { return d.bs }
func (d *File) NumBlocks() uint32 { return d.n }

// ReadBlock reads block n into buf.
func (d *File) ReadBlock(n BlockNo, buf []byte) error {
	if err := checkIO(d, n, buf); err != nil {
		return err
	}
	_, err := d.f.ReadAt(buf, int64(n)*int64(d.bs))
	return err
}

// WriteBlock writes buf to block n. The data reaches the OS before return;
// it is not fsynced.
func (d *File) WriteBlock(n BlockNo, buf []byte) error {
	if err := checkIO(d, n, buf); err != nil {
		return err
	}
	_, err := d.f.WriteAt(buf, int64(n)*int64(d.bs))
	return err
}

// Sync flushes the file to stable storage.
func (d *File) Sync() error { return d.f.Sync() }

// Close closes the underlying file.
func (d *File) Close() error { return d.f.Close() }

var _ BlockDevice = (*File)(nil)
