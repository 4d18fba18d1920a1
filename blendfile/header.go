// Package blendfile reads the file header of .blend files.
//
// Only the header is decoded: the magic, pointer size, endianness and the
// version integer of the application that saved the file. Compressed files
// (gzip for older releases, zstd since 3.0) are unwrapped transparently.
//
// Two header layouts exist:
//
//	legacy (12 bytes):  BLENDER _ v 300          pointer '_'=4/'-'=8, endian 'v'/'V', 3 digits
//	large  (17 bytes):  BLENDER 17 - 01 v 0500   header size, format version, endian, 4 digits
package blendfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrUnreadableHeader is wrapped by every header read failure.
var ErrUnreadableHeader = errors.New("unreadable blend file header")

// HeaderError reports why a file header could not be read.
type HeaderError struct {
	Path string
	Err  error
}

func (e *HeaderError) Error() string {
	if e.Path == "" {
		return ErrUnreadableHeader.Error() + ": " + e.Err.Error()
	}
	return ErrUnreadableHeader.Error() + " " + e.Path + ": " + e.Err.Error()
}

func (e *HeaderError) Unwrap() []error {
	return []error{ErrUnreadableHeader, e.Err}
}

// Compression identifies the container a .blend file is wrapped in.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

var (
	magicBlender = []byte("BLENDER")
	magicGzip    = []byte{0x1f, 0x8b}
	magicZstd    = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

const (
	legacyHeaderSize = 12
	largeHeaderSize  = 17
)

// Header is the decoded .blend file header.
type Header struct {
	// PointerSize is 4 or 8 bytes.
	PointerSize int
	// LittleEndian is the byte order of the file body.
	LittleEndian bool
	// Version is the raw version integer (300 for 3.0, 405 for 4.0.5).
	// Use version.Decode to turn it into a Version.
	Version uint
	// FormatVersion is the file format version of large headers; 0 for legacy headers.
	FormatVersion uint
	// Size is the header size in bytes.
	Size int
	// Compression is the container the header was read through.
	Compression Compression
}

// ReadHeaderVersion returns the raw version integer stored in the header of
// the .blend file at path.
func ReadHeaderVersion(path string) (uint, error) {
	h, err := ReadHeader(path)
	if err != nil {
		return 0, err
	}
	return h.Version, nil
}

// ReadHeader reads the header of the .blend file at path.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &HeaderError{Path: path, Err: err}
	}
	defer f.Close()

	h, err := Parse(f)
	if err != nil {
		var herr *HeaderError
		if errors.As(err, &herr) {
			herr.Path = path
			return nil, herr
		}
		return nil, &HeaderError{Path: path, Err: err}
	}
	return h, nil
}

// Parse reads a header from r, unwrapping gzip or zstd containers.
func Parse(r io.Reader) (*Header, error) {
	br := bufio.NewReader(r)
	// A short peek is not an error here: parseHeader reports truncation.
	magic, _ := br.Peek(len(magicZstd))

	switch {
	case bytes.HasPrefix(magic, magicGzip):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, &HeaderError{Err: fmt.Errorf("open gzip stream: %w", err)}
		}
		defer gz.Close()
		return parseHeader(gz, CompressionGzip)

	case bytes.HasPrefix(magic, magicZstd):
		dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, &HeaderError{Err: fmt.Errorf("open zstd stream: %w", err)}
		}
		defer dec.Close()
		return parseHeader(dec, CompressionZstd)
	}

	return parseHeader(br, CompressionNone)
}

func parseHeader(r io.Reader, comp Compression) (*Header, error) {
	buf := make([]byte, largeHeaderSize)
	if _, err := io.ReadFull(r, buf[:legacyHeaderSize]); err != nil {
		return nil, &HeaderError{Err: fmt.Errorf("read header: %w", err)}
	}
	if !bytes.Equal(buf[:len(magicBlender)], magicBlender) {
		return nil, &HeaderError{Err: fmt.Errorf("bad magic %q", buf[:len(magicBlender)])}
	}

	h := &Header{Compression: comp}
	rest := buf[len(magicBlender):]

	switch rest[0] {
	case '_', '-':
		// BLENDER + pointer + endian + 3 version digits
		h.Size = legacyHeaderSize
		if rest[0] == '_' {
			h.PointerSize = 4
		} else {
			h.PointerSize = 8
		}
		little, err := parseEndian(rest[1])
		if err != nil {
			return nil, err
		}
		h.LittleEndian = little
		v, err := parseDigits(rest[2:5], "version")
		if err != nil {
			return nil, err
		}
		h.Version = v
		return h, nil
	}

	// BLENDER + 2-digit header size + '-' + 2-digit format version + endian + 4 version digits
	if _, err := io.ReadFull(r, buf[legacyHeaderSize:]); err != nil {
		return nil, &HeaderError{Err: fmt.Errorf("read large header: %w", err)}
	}
	rest = buf[len(magicBlender):]

	size, err := parseDigits(rest[0:2], "header size")
	if err != nil {
		return nil, err
	}
	if size < largeHeaderSize {
		return nil, &HeaderError{Err: fmt.Errorf("header size %d too small", size)}
	}
	if rest[2] != '-' {
		return nil, &HeaderError{Err: fmt.Errorf("unexpected byte %q after header size", rest[2])}
	}
	format, err := parseDigits(rest[3:5], "format version")
	if err != nil {
		return nil, err
	}
	little, err := parseEndian(rest[5])
	if err != nil {
		return nil, err
	}
	v, err := parseDigits(rest[6:10], "version")
	if err != nil {
		return nil, err
	}

	h.Size = int(size)
	h.PointerSize = 8
	h.FormatVersion = format
	h.LittleEndian = little
	h.Version = v
	return h, nil
}

func parseEndian(b byte) (bool, error) {
	switch b {
	case 'v':
		return true, nil
	case 'V':
		return false, nil
	}
	return false, &HeaderError{Err: fmt.Errorf("bad endianness marker %q", b)}
}

func parseDigits(b []byte, what string) (uint, error) {
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, &HeaderError{Err: fmt.Errorf("bad %s %q", what, b)}
		}
	}
	n, err := strconv.ParseUint(string(b), 10, 0)
	if err != nil {
		return 0, &HeaderError{Err: fmt.Errorf("bad %s %q: %w", what, b, err)}
	}
	return uint(n), nil
}
