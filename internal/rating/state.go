package rating

// Status is the tag of a State.
type Status int

const (
	StatusIdle Status = iota
	StatusAnalyzing
	StatusResult
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusAnalyzing:
		return "Analyzing"
	case StatusResult:
		return "Result"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// State is the current view state. It is a closed set: Idle, Analyzing,
// Result and Failed are the only implementations. States are values and
// are replaced wholesale on every transition.
type State interface {
	Status() Status
	isState()
}

// Idle has no payload and no result.
type Idle struct{}

// Analyzing holds the submitted image while the analyzer runs. Token
// identifies the submission.
type Analyzing struct {
	ImageSrc string
	Token    uint64
}

// Result is the success state. Analysis is never nil.
type Result struct {
	ImageSrc string
	Analysis *Analysis
	Token    uint64
}

// Failed is the error state. ImageSrc is empty when the failure did not
// follow a submission. Configuration is set when the analyzer cannot run
// until it is fixed externally, so retrying the same image is pointless.
type Failed struct {
	ImageSrc      string
	Message       string
	Token         uint64
	Configuration bool
}

func (Idle) Status() Status      { return StatusIdle }
func (Analyzing) Status() Status { return StatusAnalyzing }
func (Result) Status() Status    { return StatusResult }
func (Failed) Status() Status    { return StatusError }

func (Idle) isState()      {}
func (Analyzing) isState() {}
func (Result) isState()    {}
func (Failed) isState()    {}

// HasImage reports whether the failure happened after a submission.
func (f Failed) HasImage() bool {
	return f.ImageSrc != ""
}

// ImageOf returns the image held by s, if any.
func ImageOf(s State) (string, bool) {
	switch st := s.(type) {
	case Analyzing:
		return st.ImageSrc, true
	case Result:
		return st.ImageSrc, true
	case Failed:
		return st.ImageSrc, st.HasImage()
	default:
		return "", false
	}
}

// TokenOf returns the submission token carried by s, or 0 for Idle and
// failures not tied to a submission.
func TokenOf(s State) uint64 {
	switch st := s.(type) {
	case Analyzing:
		return st.Token
	case Result:
		return st.Token
	case Failed:
		return st.Token
	default:
		return 0
	}
}
