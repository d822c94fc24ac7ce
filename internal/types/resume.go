package types

// ResumeSource is the LaTeX source held by the profile service.
type ResumeSource struct {
	Source string `json:"source"`
}

// SaveResumeSourceRequest replaces the stored LaTeX source.
type SaveResumeSourceRequest struct {
	Source string `json:"source" validate:"required,max=500000"`
}

// EnhanceResumeRequest asks the profile service to improve a resume.
type EnhanceResumeRequest struct {
	Source      string `json:"source" validate:"required,max=500000"`
	Instruction string `json:"instruction,omitempty" validate:"omitempty,max=2000"`
}

// UploadResult is the profile service's reply to a resume upload.
type UploadResult struct {
	URL   string `json:"url,omitempty"`
	Stage string `json:"compiledBy"`
}

// CompileRequest carries editor content to compile.
type CompileRequest struct {
	Source string `json:"source" validate:"required,max=500000"`
}
