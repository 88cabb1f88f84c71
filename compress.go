package main

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// openDump opens a dump file for reading, transparently decompressing
// .gz, .bz2, .xz and .zst inputs by file extension. The returned
// cleanup closure releases the decompressor and the underlying file.
func openDump(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dump: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("open gzip dump: %w", err)
		}
		return zr, func() error {
			zr.Close()
			return f.Close()
		}, nil

	case ".bz2":
		// bzip2 readers need no close of their own
		return bzip2.NewReader(f), f.Close, nil

	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("open xz dump: %w", err)
		}
		return xr, f.Close, nil

	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("open zstd dump: %w", err)
		}
		return zr, func() error {
			zr.Close()
			return f.Close()
		}, nil

	default:
		return f, f.Close, nil
	}
}
