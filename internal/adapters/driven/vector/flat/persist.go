package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// File layout, little-endian:
//
//	magic   [4]byte "FLAT"
//	version uint32
//	dim     uint32
//	count   uint64
//	data    [count*dim]float32, row-major
const (
	magic         = "FLAT"
	formatVersion = 1
)

// ErrBadFormat is returned when reading data that is not a flat index.
var ErrBadFormat = errors.New("flat: bad index format")

// WriteTo serialises the index.
func (x *Index) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64

	header := make([]byte, 4+4+4+8)
	copy(header, magic)
	binary.LittleEndian.PutUint32(header[4:], formatVersion)
	binary.LittleEndian.PutUint32(header[8:], uint32(x.dim))
	binary.LittleEndian.PutUint64(header[12:], uint64(x.Len()))
	n, err := bw.Write(header)
	written += int64(n)
	if err != nil {
		return written, err
	}

	buf := make([]byte, 4)
	for _, f := range x.data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
		n, err := bw.Write(buf)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	return written, bw.Flush()
}

// Read deserialises an index written by WriteTo.
func Read(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)

	header := make([]byte, 4+4+4+8)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadFormat, err)
	}
	if string(header[:4]) != magic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadFormat, header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:]); v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadFormat, v)
	}
	dim := int(binary.LittleEndian.Uint32(header[8:]))
	count := binary.LittleEndian.Uint64(header[12:])
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrBadFormat, dim)
	}
	if count > math.MaxInt32/uint64(dim) {
		return nil, fmt.Errorf("%w: %d rows of %d values is too large", ErrBadFormat, count, dim)
	}

	data := make([]float32, int(count)*dim)
	buf := make([]byte, 4)
	for i := range data {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: row data: %w", ErrBadFormat, err)
		}
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf))
	}

	return &Index{dim: dim, data: data}, nil
}

// Save writes the index to path.
func (x *Index) Save(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("flat: create %s: %w", path, err)
	}
	if _, err := x.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("flat: write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("flat: sync %s: %w", path, err)
	}
	return f.Close()
}

// Load reads an index from path.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}
