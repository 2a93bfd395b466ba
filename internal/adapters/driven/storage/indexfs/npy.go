package indexfs

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NumPy .npy v1.0 encoding for float32 matrices.
// See https://numpy.org/doc/stable/reference/generated/numpy.lib.format.html

const (
	npyMagic     = "\x93NUMPY"
	npyAlignment = 64
)

// ErrBadNPY is returned when a matrix file cannot be decoded.
var ErrBadNPY = errors.New("indexfs: bad npy file")

var npyShapeRe = regexp.MustCompile(`'shape':\s*\((\d+),\s*(\d*)\)`)

// WriteNPY writes a float32 matrix with shape (len(rows), dim) in C order.
func WriteNPY(w io.Writer, rows [][]float32, dim int) error {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", len(rows), dim)

	// Pad so that magic + version + length + header is a multiple of the alignment.
	preamble := len(npyMagic) + 2 + 2
	total := preamble + len(header) + 1
	if rem := total % npyAlignment; rem != 0 {
		header += strings.Repeat(" ", npyAlignment-rem)
	}
	header += "\n"
	if len(header) > math.MaxUint16 {
		return fmt.Errorf("indexfs: npy header too long")
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(npyMagic)
	bw.Write([]byte{1, 0})
	var hl [2]byte
	binary.LittleEndian.PutUint16(hl[:], uint16(len(header)))
	bw.Write(hl[:])
	bw.WriteString(header)

	var buf [4]byte
	for i, row := range rows {
		if len(row) != dim {
			return fmt.Errorf("indexfs: npy row %d has %d values, want %d", i, len(row), dim)
		}
		for _, f := range row {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
			if _, err := bw.Write(buf[:]); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// ReadNPY reads a little-endian float32 matrix in C order.
// It returns the rows and the column count.
func ReadNPY(r io.Reader) ([][]float32, int, error) {
	br := bufio.NewReader(r)

	pre := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(br, pre); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBadNPY, err)
	}
	if !bytes.Equal(pre[:len(npyMagic)], []byte(npyMagic)) {
		return nil, 0, fmt.Errorf("%w: missing magic", ErrBadNPY)
	}

	var headerLen int
	switch major := pre[len(npyMagic)]; major {
	case 1:
		var hl [2]byte
		if _, err := io.ReadFull(br, hl[:]); err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrBadNPY, err)
		}
		headerLen = int(binary.LittleEndian.Uint16(hl[:]))
	case 2, 3:
		var hl [4]byte
		if _, err := io.ReadFull(br, hl[:]); err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrBadNPY, err)
		}
		headerLen = int(binary.LittleEndian.Uint32(hl[:]))
	default:
		return nil, 0, fmt.Errorf("%w: unsupported version %d", ErrBadNPY, major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, 0, fmt.Errorf("%w: header: %w", ErrBadNPY, err)
	}
	h := string(header)

	if !strings.Contains(h, "'descr': '<f4'") {
		return nil, 0, fmt.Errorf("%w: only little-endian float32 is supported", ErrBadNPY)
	}
	if !strings.Contains(h, "'fortran_order': False") {
		return nil, 0, fmt.Errorf("%w: only C order is supported", ErrBadNPY)
	}
	m := npyShapeRe.FindStringSubmatch(h)
	if m == nil || m[2] == "" {
		return nil, 0, fmt.Errorf("%w: expected a 2-d shape in %q", ErrBadNPY, strings.TrimSpace(h))
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBadNPY, err)
	}
	dim, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBadNPY, err)
	}

	rows := make([][]float32, n)
	buf := make([]byte, 4*dim)
	for i := range rows {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, 0, fmt.Errorf("%w: row %d: %w", ErrBadNPY, i, err)
		}
		row := make([]float32, dim)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		rows[i] = row
	}

	return rows, dim, nil
}
