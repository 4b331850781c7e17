package adapters

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/opencontainers/go-digest"
	spdxjson "github.com/spdx/tools-golang/json"
	v2common "github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"
	"gopkg.in/yaml.v3"

	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/types"
)

const DefaultSPDXNamespace = "https://pkgfilehash.dev/spdx/inventories"

// InventoryWriterAdapter writes inventories and reports to a file, or to
// Stdout when the path is empty or "-".
type InventoryWriterAdapter struct {
	NamespaceBase string
	Stdout        io.Writer
	Clock         func() time.Time
}

func NewInventoryWriterAdapter() InventoryWriterAdapter {
	return InventoryWriterAdapter{
		NamespaceBase: DefaultSPDXNamespace,
		Stdout:        os.Stdout,
		Clock:         time.Now,
	}
}

func (a InventoryWriterAdapter) WriteInventory(path string, format types.OutputFormat, inventory types.Inventory) error {
	records := inventory.Records
	if records == nil {
		records = []types.FileHashRecord{}
	}
	var buf bytes.Buffer
	switch format {
	case types.OutputFormatJSON, "":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to marshal inventory").
				WithCause(err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	case types.OutputFormatYAML:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(records); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to marshal inventory as yaml").
				WithCause(err)
		}
		if err := encoder.Close(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to flush yaml inventory").
				WithCause(err)
		}
	case types.OutputFormatSPDX:
		doc := a.spdxDocument(inventory, records)
		if err := spdxjson.Write(doc, &buf); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to marshal spdx document").
				WithCause(err)
		}
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported output format: " + string(format))
	}
	return a.write(path, buf.Bytes())
}

func (a InventoryWriterAdapter) WriteJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal report").
			WithCause(err)
	}
	return a.write(path, append(data, '\n'))
}

func (a InventoryWriterAdapter) write(path string, data []byte) error {
	if path == "" || path == "-" {
		out := a.Stdout
		if out == nil {
			out = os.Stdout
		}
		if _, err := out.Write(data); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write output").
				WithCause(err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write output file").
			WithCause(err)
	}
	return nil
}

// spdxDocument describes every package with at least one record; each
// record becomes a file of its package. Broken symlinks carry no checksum.
func (a InventoryWriterAdapter) spdxDocument(inventory types.Inventory, records []types.FileHashRecord) *v2_3.Document {
	clock := a.Clock
	if clock == nil {
		clock = time.Now
	}
	fingerprint, _ := json.Marshal(records)
	docID := digest.FromBytes(fingerprint).Encoded()[:16]
	name := filepath.Base(filepath.Clean(inventory.Root))

	doc := &v2_3.Document{
		SPDXVersion:       v2_3.Version,
		DataLicense:       v2_3.DataLicense,
		SPDXIdentifier:    "DOCUMENT",
		DocumentName:      "pkgfilehash inventory " + name,
		DocumentNamespace: a.namespaceBase() + "/" + name + "-" + docID,
		CreationInfo: &v2_3.CreationInfo{
			Creators: []v2common.Creator{{CreatorType: "Tool", Creator: "pkgfilehash"}},
			Created:  clock().UTC().Format(time.RFC3339),
		},
		DocumentComment: "ecosystem: " + string(inventory.Ecosystem),
	}

	versions := map[string]string{}
	for _, pkg := range inventory.Packages {
		versions[pkg.Name] = pkg.Version
	}
	byName := map[string]*v2_3.Package{}
	for _, record := range records {
		pkg, ok := byName[record.Package]
		if !ok {
			pkg = &v2_3.Package{
				PackageName:             record.Package,
				PackageSPDXIdentifier:   v2common.ElementID("Package-" + shortID(record.Package)),
				PackageVersion:          versions[record.Package],
				PackageDownloadLocation: "NOASSERTION",
				FilesAnalyzed:           true,
			}
			byName[record.Package] = pkg
			doc.Packages = append(doc.Packages, pkg)
			doc.Relationships = append(doc.Relationships, &v2_3.Relationship{
				RefA:         v2common.MakeDocElementID("", "DOCUMENT"),
				RefB:         v2common.MakeDocElementID("", string(pkg.PackageSPDXIdentifier)),
				Relationship: "DESCRIBES",
			})
		}
		file := &v2_3.File{
			FileName:           "./" + record.File,
			FileSPDXIdentifier: v2common.ElementID("File-" + shortID(record.Package+"\x00"+record.File)),
			FileTypes:          []string{spdxFileType(record.FileType)},
			LicenseConcluded:   "NOASSERTION",
			FileCopyrightText:  "NOASSERTION",
		}
		if record.SHA256 != nil {
			file.Checksums = []v2common.Checksum{{Algorithm: v2common.SHA256, Value: *record.SHA256}}
		}
		if record.IsSymlink && record.SymlinkTarget != nil {
			file.FileComment = "symlink -> " + *record.SymlinkTarget
		}
		pkg.Files = append(pkg.Files, file)
		doc.Relationships = append(doc.Relationships, &v2_3.Relationship{
			RefA:         v2common.MakeDocElementID("", string(pkg.PackageSPDXIdentifier)),
			RefB:         v2common.MakeDocElementID("", string(file.FileSPDXIdentifier)),
			Relationship: "CONTAINS",
		})
	}
	return doc
}

func (a InventoryWriterAdapter) namespaceBase() string {
	if strings.TrimSpace(a.NamespaceBase) == "" {
		return DefaultSPDXNamespace
	}
	return strings.TrimRight(a.NamespaceBase, "/")
}

func shortID(seed string) string {
	return digest.FromString(seed).Encoded()[:16]
}

func spdxFileType(fileType string) string {
	lower := strings.ToLower(fileType)
	switch {
	case strings.Contains(lower, "elf"), strings.Contains(lower, "executable"):
		return "BINARY"
	case strings.Contains(lower, "text"):
		return "TEXT"
	case strings.Contains(lower, "archive"), strings.Contains(lower, "compressed"):
		return "ARCHIVE"
	default:
		return "OTHER"
	}
}

var _ ports.InventoryWriterPort = InventoryWriterAdapter{}
