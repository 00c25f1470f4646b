package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/hbuschme/TextGridTools/core/errors"
	"github.com/hbuschme/TextGridTools/core/textgrid"
	"github.com/hbuschme/TextGridTools/internal/fileio"
	"github.com/hbuschme/TextGridTools/internal/logging"
	"github.com/hbuschme/TextGridTools/internal/validation"
)

// Compression selects the archive compression algorithm.
type Compression string

const (
	// CompressionXZ is the default, best ratio.
	CompressionXZ Compression = "xz"
	// CompressionGzip is the stdlib alternative, faster but larger.
	CompressionGzip Compression = "gzip"
)

// Format name carried by FormatError values.
const formatBundle = "bundle"

// Magic numbers of the two supported compressions.
var (
	magicGzip = []byte{0x1f, 0x8b}
	magicXZ   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// PackOptions configure Pack.
type PackOptions struct {
	// Compression defaults to XZ.
	Compression Compression
}

// Pack writes the given TextGrid files into a bundle archive at
// archivePath and returns the manifest it wrote. Every file is parsed
// first; a file that does not parse aborts the pack. Entry names are
// the files' base names and must be unique.
func Pack(archivePath string, files []string, opts PackOptions) (*Manifest, error) {
	const op = "pack bundle"
	if len(files) == 0 {
		return nil, errors.NewStructure(op, "no files to pack")
	}

	manifest := NewManifest()
	entries := make(map[string][]byte, len(files))
	for _, path := range files {
		name := filepath.Base(path)
		if err := validation.ValidateFilename(name); err != nil {
			return nil, errors.NewStructuref(op, "file name %q: %v", name, err)
		}
		if _, dup := entries[name]; dup {
			return nil, errors.NewStructuref(op, "duplicate file name %q", name)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewIO("read", path, err)
		}
		decoded, err := fileio.Decode(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %s", op, path)
		}
		g, err := textgrid.ParseString(string(decoded))
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %s", op, path)
		}
		sum := blake3.Sum256(raw)
		manifest.Files = append(manifest.Files, FileRecord{
			Name:      name,
			SizeBytes: int64(len(raw)),
			BLAKE3:    hex.EncodeToString(sum[:]),
			Tiers:     g.Len(),
		})
		entries[name] = raw
	}

	if err := writeArchive(archivePath, manifest, entries, opts); err != nil {
		return nil, err
	}
	logging.BundleEvent("pack", archivePath, len(manifest.Files))
	return manifest, nil
}

func writeArchive(archivePath string, manifest *Manifest, entries map[string][]byte, opts PackOptions) error {
	const op = "pack bundle"
	file, err := os.Create(archivePath)
	if err != nil {
		return errors.NewIO("create", archivePath, err)
	}
	defer file.Close()

	var compress io.WriteCloser
	switch opts.Compression {
	case CompressionGzip:
		compress, err = gzip.NewWriterLevel(file, gzip.BestCompression)
		if err != nil {
			return errors.Wrap(err, op)
		}
	case CompressionXZ, "":
		compress, err = xz.NewWriter(file)
		if err != nil {
			return errors.Wrap(err, op)
		}
	default:
		return errors.NewStructuref(op, "unknown compression %q", opts.Compression)
	}

	tw := tar.NewWriter(compress)
	manifestData, err := manifest.ToJSON()
	if err != nil {
		return errors.Wrap(err, op)
	}
	now := time.Now()
	if err := writeEntry(tw, ManifestName, manifestData, now); err != nil {
		return errors.Wrap(err, op)
	}
	for _, rec := range manifest.Files {
		if err := writeEntry(tw, rec.Name, entries[rec.Name], now); err != nil {
			return errors.Wrap(err, op)
		}
	}
	if err := tw.Close(); err != nil {
		return errors.Wrap(err, op)
	}
	if err := compress.Close(); err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}

func writeEntry(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(data)),
		ModTime:  modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

// DetectCompression reports the compression of a bundle archive from
// its magic bytes.
func DetectCompression(archivePath string) (Compression, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", errors.NewIO("open", archivePath, err)
	}
	defer f.Close()

	magic := make([]byte, 6)
	n, _ := io.ReadFull(f, magic)
	if n >= 2 && bytes.Equal(magic[:2], magicGzip) {
		return CompressionGzip, nil
	}
	if n >= 6 && bytes.Equal(magic, magicXZ) {
		return CompressionXZ, nil
	}
	return "", errors.NewUnsupported("compression format", "unknown magic bytes")
}

// openTar opens the archive for reading, decompressing transparently.
func openTar(archivePath string) (*tar.Reader, io.Closer, error) {
	compression, err := DetectCompression(archivePath)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, nil, errors.NewIO("open", archivePath, err)
	}
	switch compression {
	case CompressionGzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, errors.NewFormatf(formatBundle, 0, "%v", err)
		}
		return tar.NewReader(zr), f, nil
	default:
		zr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, errors.NewFormatf(formatBundle, 0, "%v", err)
		}
		return tar.NewReader(zr), f, nil
	}
}

// Unpack extracts the bundle into destDir and returns its manifest.
// Entry names are sanitized before any file is written, so a crafted
// archive cannot write outside destDir. The extracted files must match
// the manifest's file list exactly.
func Unpack(archivePath, destDir string) (*Manifest, error) {
	tr, closer, err := openTar(archivePath)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, errors.NewIO("create directory", destDir, err)
	}

	var manifest *Manifest
	extracted := make(map[string]bool)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewFormatf(formatBundle, 0, "%v", err)
		}
		if hdr.Typeflag == tar.TypeDir {
			continue
		}
		if hdr.Typeflag != tar.TypeReg {
			return nil, errors.NewFormatf(formatBundle, 0, "entry %q is not a regular file", hdr.Name)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, errors.NewFormatf(formatBundle, 0, "entry %q: %v", hdr.Name, err)
		}
		if hdr.Name == ManifestName {
			manifest, err = ParseManifest(data)
			if err != nil {
				return nil, errors.NewFormatf(formatBundle, 0, "manifest: %v", err)
			}
			continue
		}
		clean, err := validation.SanitizePath(destDir, hdr.Name)
		if err != nil {
			return nil, errors.NewFormatf(formatBundle, 0, "entry name %q: %v", hdr.Name, err)
		}
		destPath := filepath.Join(destDir, clean)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return nil, errors.NewIO("create directory", filepath.Dir(destPath), err)
		}
		if err := os.WriteFile(destPath, data, 0o644); err != nil {
			return nil, errors.NewIO("write", destPath, err)
		}
		extracted[hdr.Name] = true
	}
	if manifest == nil {
		return nil, errors.NewFormat(formatBundle, 0, "bundle has no manifest.json")
	}

	for _, rec := range manifest.Files {
		if !extracted[rec.Name] {
			return nil, errors.NewFormatf(formatBundle, 0, "manifest lists %q but the archive does not contain it", rec.Name)
		}
		delete(extracted, rec.Name)
	}
	for name := range extracted {
		return nil, errors.NewFormatf(formatBundle, 0, "archive contains %q which the manifest does not list", name)
	}
	logging.BundleEvent("unpack", archivePath, len(manifest.Files))
	return manifest, nil
}

// Verify re-hashes every entry against the manifest without unpacking
// and returns the manifest on success.
func Verify(archivePath string) (*Manifest, error) {
	const op = "verify bundle"
	tr, closer, err := openTar(archivePath)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var manifest *Manifest
	seen := make(map[string]FileRecord)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewFormatf(formatBundle, 0, "%v", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, errors.NewFormatf(formatBundle, 0, "entry %q: %v", hdr.Name, err)
		}
		if hdr.Name == ManifestName {
			manifest, err = ParseManifest(data)
			if err != nil {
				return nil, errors.NewFormatf(formatBundle, 0, "manifest: %v", err)
			}
			continue
		}
		sum := blake3.Sum256(data)
		seen[hdr.Name] = FileRecord{
			SizeBytes: int64(len(data)),
			BLAKE3:    hex.EncodeToString(sum[:]),
		}
	}
	if manifest == nil {
		return nil, errors.NewFormat(formatBundle, 0, "bundle has no manifest.json")
	}

	for _, rec := range manifest.Files {
		got, ok := seen[rec.Name]
		if !ok {
			return nil, errors.NewStructuref(op, "file %q is listed in the manifest but missing from the archive", rec.Name)
		}
		if got.SizeBytes != rec.SizeBytes {
			return nil, errors.NewStructuref(op, "file %q is %d bytes, manifest says %d", rec.Name, got.SizeBytes, rec.SizeBytes)
		}
		if got.BLAKE3 != rec.BLAKE3 {
			return nil, errors.NewStructuref(op, "file %q does not match its manifest hash", rec.Name)
		}
		delete(seen, rec.Name)
	}
	for name := range seen {
		return nil, errors.NewStructuref(op, "archive contains %q which the manifest does not list", name)
	}
	logging.BundleEvent("verify", archivePath, len(manifest.Files))
	return manifest, nil
}
