// Package fileio reads and writes annotation files with transparent
// text-encoding handling. Praat saves TextGrid files as UTF-8 or as
// UTF-16 with a byte order mark; readers here detect the mark and hand
// the rest of the toolkit plain UTF-8.
package fileio

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/hbuschme/TextGridTools/core/errors"
)

// Encoding identifies a text encoding for annotation files on disk.
type Encoding int

const (
	// UTF8 is plain UTF-8 without a byte order mark.
	UTF8 Encoding = iota
	// UTF16LE is little-endian UTF-16 with a byte order mark.
	UTF16LE
	// UTF16BE is big-endian UTF-16 with a byte order mark.
	UTF16BE
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case UTF16LE:
		return "utf-16le"
	case UTF16BE:
		return "utf-16be"
	}
	return "unknown"
}

// EncodingFromString maps a flag value to an Encoding.
func EncodingFromString(s string) (Encoding, error) {
	switch s {
	case "utf-8", "utf8":
		return UTF8, nil
	case "utf-16", "utf-16le", "utf16le":
		return UTF16LE, nil
	case "utf-16be", "utf16be":
		return UTF16BE, nil
	}
	return UTF8, errors.NewStructuref("parse encoding", "unknown encoding %q", s)
}

// ReadFile reads path and returns its content as UTF-8, transcoding
// UTF-16 input when a byte order mark announces it.
func ReadFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	data, err := Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return data, nil
}

// WriteFile writes UTF-8 data to path in the requested encoding.
func WriteFile(path string, data []byte, enc Encoding) error {
	encoded, err := Encode(data, enc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

// Decode transcodes raw file bytes to UTF-8 according to their byte
// order mark. A UTF-8 mark is stripped; input without a mark passes
// through unchanged.
func Decode(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return transcode(raw, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return transcode(raw, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return raw[3:], nil
	}
	return raw, nil
}

// Encode transcodes UTF-8 data into the requested encoding. UTF-16
// output carries a byte order mark.
func Encode(data []byte, enc Encoding) ([]byte, error) {
	switch enc {
	case UTF8:
		return data, nil
	case UTF16LE:
		return transcode(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder())
	case UTF16BE:
		return transcode(data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder())
	}
	return nil, errors.NewStructuref("encode", "unknown encoding %v", enc)
}

func transcode(data []byte, t transform.Transformer) ([]byte, error) {
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), t))
	if err != nil {
		return nil, errors.Wrap(err, "transcode")
	}
	return out, nil
}
