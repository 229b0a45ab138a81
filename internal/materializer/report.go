package materializer

// Outcome is the result of one directory or file step.
type Outcome string

// Step outcomes. Directories use Created, Existed, Failed and NotAttempted;
// files use Written, Unchanged, Conflict, Failed and NotAttempted.
const (
	OutcomeCreated      Outcome = "created"
	OutcomeExisted      Outcome = "existed"
	OutcomeWritten      Outcome = "written"
	OutcomeUnchanged    Outcome = "unchanged"
	OutcomeConflict     Outcome = "conflict"
	OutcomeFailed       Outcome = "failed"
	OutcomeNotAttempted Outcome = "not_attempted"
)

// DirResult records what happened to one planned directory.
type DirResult struct {
	Path    string  `json:"path" yaml:"path"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Error   string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// FileResult records what happened to one planned file.
type FileResult struct {
	Path       string  `json:"path" yaml:"path"`
	TemplateID string  `json:"template" yaml:"template"`
	Outcome    Outcome `json:"outcome" yaml:"outcome"`
	Warning    string  `json:"warning,omitempty" yaml:"warning,omitempty"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report lists every planned step in plan order with its outcome.
type Report struct {
	Root        DirResult    `json:"root" yaml:"root"`
	Directories []DirResult  `json:"directories" yaml:"directories"`
	Files       []FileResult `json:"files" yaml:"files"`

	Written      int `json:"written" yaml:"written"`
	Unchanged    int `json:"unchanged" yaml:"unchanged"`
	Conflicts    int `json:"conflicts" yaml:"conflicts"`
	Failed       int `json:"failed" yaml:"failed"`
	NotAttempted int `json:"not_attempted" yaml:"not_attempted"`
}

// OK reports whether every step succeeded.
func (r *Report) OK() bool {
	if r.Root.Outcome == OutcomeFailed {
		return false
	}
	for _, d := range r.Directories {
		if d.Outcome == OutcomeFailed || d.Outcome == OutcomeNotAttempted {
			return false
		}
	}
	return r.Conflicts == 0 && r.Failed == 0 && r.NotAttempted == 0
}

// Warnings returns the per-file warnings in plan order.
func (r *Report) Warnings() []string {
	var out []string
	for _, f := range r.Files {
		if f.Warning != "" {
			out = append(out, f.Path+": "+f.Warning)
		}
	}
	return out
}

func (r *Report) tally() {
	r.Written, r.Unchanged, r.Conflicts, r.Failed, r.NotAttempted = 0, 0, 0, 0, 0
	for _, f := range r.Files {
		switch f.Outcome {
		case OutcomeWritten:
			r.Written++
		case OutcomeUnchanged:
			r.Unchanged++
		case OutcomeConflict:
			r.Conflicts++
		case OutcomeFailed:
			r.Failed++
		case OutcomeNotAttempted:
			r.NotAttempted++
		}
	}
}
