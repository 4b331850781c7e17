package types

type Ecosystem string

const (
	EcosystemDebian  Ecosystem = "debian"
	EcosystemAlpine  Ecosystem = "alpine"
	EcosystemRPM     Ecosystem = "rpm"
	EcosystemUnknown Ecosystem = "unknown"
)

type OutputFormat string

const (
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatSPDX OutputFormat = "spdx"
)

// RPMMode selects how the rpm package source reads the target database.
type RPMMode string

const (
	RPMModeAuto   RPMMode = "auto"
	RPMModeNative RPMMode = "native"
	RPMModeChroot RPMMode = "chroot"
)

// RunReason classifies the outcome of an isolated process invocation.
type RunReason string

const (
	RunReasonOK            RunReason = "ok"
	RunReasonBinaryMissing RunReason = "binary-missing"
	RunReasonTimeout       RunReason = "timeout"
	RunReasonExitStatus    RunReason = "exit-status"
	RunReasonExecError     RunReason = "exec-error"
)

// File type labels produced by the content hasher itself; everything else
// comes from the classifier.
const (
	FileTypeBrokenSymlink = "broken symlink"
	FileTypeError         = "error"
	FileTypeUnknown       = "unknown"
	FileTypeDirectory     = "directory"
	FileTypeEmpty         = "empty"
)
