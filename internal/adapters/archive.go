package adapters

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	xzMagic   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	gzipMagic = []byte{0x1F, 0x8B}
)

// openTar wraps r in the decompressor its leading bytes call for and
// returns a tar reader over the result. Package files and databases are
// named inconsistently (symlinked ".db", ".db.tar"), so the content is
// sniffed rather than trusting the extension.
func openTar(r io.Reader) (*tar.Reader, func(), error) {
	buffered := bufio.NewReader(r)
	head, _ := buffered.Peek(6)
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, nil, err
		}
		return tar.NewReader(zr), zr.Close, nil
	case bytes.HasPrefix(head, xzMagic):
		xr, err := xz.NewReader(buffered)
		if err != nil {
			return nil, nil, err
		}
		return tar.NewReader(xr), func() {}, nil
	case bytes.HasPrefix(head, gzipMagic):
		gr, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, nil, err
		}
		return tar.NewReader(gr), func() { _ = gr.Close() }, nil
	default:
		return tar.NewReader(buffered), func() {}, nil
	}
}
