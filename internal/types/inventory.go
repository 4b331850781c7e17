package types

// FileHashRecord is one entry of a package file inventory.
type FileHashRecord struct {
	Package       string  `json:"package" yaml:"package"`
	File          string  `json:"file" yaml:"file"`
	SHA256        *string `json:"sha256" yaml:"sha256"`
	IsSymlink     bool    `json:"is_symlink" yaml:"is_symlink"`
	SymlinkTarget *string `json:"symlink_target" yaml:"symlink_target"`
	FileType      string  `json:"file_type" yaml:"file_type"`
}

// HashResult is what the content hasher reports for a single path.
type HashResult struct {
	SHA256        *string
	IsSymlink     bool
	SymlinkTarget *string
	FileType      string
}

// Emittable reports whether the result may appear in an inventory: it has
// a digest, or it is a symlink whose target is gone.
func (r HashResult) Emittable() bool {
	if r.SHA256 != nil {
		return true
	}
	return r.IsSymlink && r.FileType == FileTypeBrokenSymlink
}

// PackageRecord is a package and the root-relative paths it owns.
type PackageRecord struct {
	Name    string
	Version string
	Arch    string
	Vendor  string
	Files   []string
}

type Inventory struct {
	Root      string
	Ecosystem Ecosystem
	Packages  []PackageRecord
	Records   []FileHashRecord
}

type SharedFile struct {
	File     string   `json:"file"`
	SHA256   string   `json:"sha256"`
	Packages []string `json:"packages"`
}

type PackageSummary struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Arch    string `json:"arch,omitempty"`
	PURL    string `json:"purl"`
	Files   int    `json:"files"`
}

type RunResult struct {
	Output   []byte
	ExitCode int
	Reason   RunReason
	Err      error
}

func (r RunResult) OK() bool {
	return r.Reason == RunReasonOK
}
