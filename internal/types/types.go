// Package types holds the data records passed between the stages of the
// packing pipeline. Every other internal package imports it; it imports
// nothing from the module.
package types

// Candidate is a filesystem entry discovered by the walk, before any
// inclusion decision. RelPath always uses forward slashes.
type Candidate struct {
	AbsPath string
	RelPath string
	IsDir   bool
}

// FileRecord is the metadata computed for a candidate file that survived
// the ignore layers.
type FileRecord struct {
	RelativePath string
	AbsolutePath string
	Size         uint64
	MimeType     string
	IsBinary     bool
}

// TransformedFile is a file as handed to the formatter.
type TransformedFile struct {
	RelativePath string `json:"relative_path"`
	Extension    string `json:"extension"`
	Content      string `json:"content"`
	Size         uint64 `json:"size"`
	IsBinary     bool   `json:"is_binary"`
	TokenCount   int    `json:"token_count,omitempty"`
}

// Summary holds aggregated information about the packed files.
type Summary struct {
	FileCount       int      `json:"file_count"`
	TotalSize       uint64   `json:"total_size"`
	DirectoryCount  int      `json:"directory_count"`
	Extensions      []string `json:"extensions"`
	BinaryFileCount int      `json:"binary_file_count"`
	TotalTokens     int      `json:"total_tokens,omitempty"`
}

// SecurityState is the outcome of the directory-wide sensitive scan.
type SecurityState string

const (
	SecurityDisabled              SecurityState = "disabled"
	SecurityCompletedNoFindings   SecurityState = "completed_no_findings"
	SecurityCompletedWithFindings SecurityState = "completed_with_findings"
	SecurityFailed                SecurityState = "failed"
)

// SecurityStatus pairs a SecurityState with the failure reason, if any.
type SecurityStatus struct {
	State  SecurityState `json:"state"`
	Reason string        `json:"reason,omitempty"`
}

// PackedRepository is the aggregate record produced by a packing run.
type PackedRepository struct {
	Files           []TransformedFile `json:"files"`
	Summary         Summary           `json:"summary"`
	Instruction     string            `json:"instruction,omitempty"`
	SuspiciousFiles []string          `json:"suspicious_files,omitempty"`
	BinaryFiles     []string          `json:"binary_files"`
	Security        SecurityStatus    `json:"security_check_status"`
}
