// Package bundle packs annotation corpora into portable archives.
//
// A bundle is a tar archive (XZ by default, gzip on request) holding a
// manifest.json plus the TextGrid files it describes. Every file is
// parsed before packing so a bundle only carries valid grids, and the
// manifest records each file's size and BLAKE3 hash so Verify can prove
// a bundle intact without unpacking it.
package bundle

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FormatVersion is the current bundle format version.
const FormatVersion = "1.0.0"

// toolName identifies the producing tool in manifests.
const toolName = "TextGridTools"

// ManifestName is the manifest's entry name inside the archive.
const ManifestName = "manifest.json"

// Manifest describes a bundle's contents (manifest.json).
type Manifest struct {
	BundleVersion string       `json:"bundle_version"`
	BundleID      string       `json:"bundle_id"`
	CreatedAt     string       `json:"created_at"`
	Tool          ToolInfo     `json:"tool"`
	Files         []FileRecord `json:"files"`
}

// ToolInfo describes the tool that created the bundle.
type ToolInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FileRecord describes one TextGrid file in the bundle.
type FileRecord struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	BLAKE3    string `json:"blake3"`
	Tiers     int    `json:"tiers"`
}

// NewManifest creates an empty manifest with a fresh bundle id.
func NewManifest() *Manifest {
	return &Manifest{
		BundleVersion: FormatVersion,
		BundleID:      uuid.New().String(),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Tool: ToolInfo{
			Name:    toolName,
			Version: FormatVersion,
		},
	}
}

// ToJSON serializes the manifest to JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseManifest parses a manifest from JSON.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Record returns the record for the named file, or nil when the
// manifest does not list it.
func (m *Manifest) Record(name string) *FileRecord {
	for i := range m.Files {
		if m.Files[i].Name == name {
			return &m.Files[i]
		}
	}
	return nil
}
