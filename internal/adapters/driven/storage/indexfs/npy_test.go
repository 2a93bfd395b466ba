package indexfs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNPY_RoundTrip(t *testing.T) {
	rows := [][]float32{
		{1, 2, 3},
		{-0.5, 0.25, 1e-6},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteNPY(&buf, rows, 3))

	data := buf.Bytes()
	assert.Equal(t, "\x93NUMPY", string(data[:6]))
	assert.Equal(t, byte(1), data[6])
	assert.Equal(t, byte(0), data[7])

	headerLen := int(data[8]) | int(data[9])<<8
	assert.Zero(t, (10+headerLen)%64, "header must be aligned")
	assert.Equal(t, byte('\n'), data[10+headerLen-1])
	assert.Contains(t, string(data[10:10+headerLen]), "'shape': (2, 3)")
	assert.Len(t, data, 10+headerLen+2*3*4)

	got, dim, err := ReadNPY(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 3, dim)
	assert.Equal(t, rows, got)
}

func TestNPY_EmptyMatrix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNPY(&buf, nil, 8))

	got, dim, err := ReadNPY(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, dim)
	assert.Empty(t, got)
}

func TestNPY_RowLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := WriteNPY(&buf, [][]float32{{1, 2}, {3}}, 2)
	assert.Error(t, err)
}

func TestReadNPY_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", []byte("NOTNUMPY\x00\x00")},
		{"unsupported version", []byte("\x93NUMPY\x09\x00\x00\x00")},
		{"float64", npyWithHeader("{'descr': '<f8', 'fortran_order': False, 'shape': (1, 1), }")},
		{"fortran order", npyWithHeader("{'descr': '<f4', 'fortran_order': True, 'shape': (1, 1), }")},
		{"one dimensional", npyWithHeader("{'descr': '<f4', 'fortran_order': False, 'shape': (3,), }")},
		{"truncated data", npyWithHeader("{'descr': '<f4', 'fortran_order': False, 'shape': (2, 2), }")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadNPY(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrBadNPY)
		})
	}
}

func npyWithHeader(h string) []byte {
	h += "\n"
	out := []byte("\x93NUMPY\x01\x00")
	out = append(out, byte(len(h)), byte(len(h)>>8))
	return append(out, h...)
}
