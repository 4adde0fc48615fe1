package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// DefaultName is the manifest file written next to the figures.
const DefaultName = "manifest.cdx.json"

// fileFormat picks JSON or XML from the extension of path.
func fileFormat(path string) (cdx.BOMFileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return cdx.BOMFileFormatJSON, nil
	case ".xml":
		return cdx.BOMFileFormatXML, nil
	default:
		return cdx.BOMFileFormatJSON, fmt.Errorf("manifest %s: unsupported extension %q (want .json or .xml)", path, filepath.Ext(path))
	}
}

// Write encodes bom to path as JSON or XML, chosen by extension. An empty
// spec means CycloneDX 1.6.
func Write(bom *cdx.BOM, path string, spec string) (err error) {
	ff, err := fileFormat(path)
	if err != nil {
		return err
	}
	sv := cdx.SpecVersion1_6
	if spec != "" {
		var ok bool
		if sv, ok = ParseSpecVersion(spec); !ok {
			return fmt.Errorf("unsupported CycloneDX spec version: %q", spec)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	enc := cdx.NewBOMEncoder(f, ff)
	enc.SetPretty(true)
	if err := enc.EncodeVersion(bom, sv); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	logf("wrote %s", path)
	return nil
}

// Read decodes a manifest written by Write.
func Read(path string) (*cdx.BOM, error) {
	ff, err := fileFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bom := new(cdx.BOM)
	if err := cdx.NewBOMDecoder(f, ff).Decode(bom); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return bom, nil
}

// ParseSpecVersion maps "1.5" or "1.6" to a CycloneDX version. Earlier
// versions have no model cards.
func ParseSpecVersion(s string) (cdx.SpecVersion, bool) {
	switch strings.TrimSpace(s) {
	case "1.5":
		return cdx.SpecVersion1_5, true
	case "1.6":
		return cdx.SpecVersion1_6, true
	default:
		return cdx.SpecVersion1_6, false
	}
}
