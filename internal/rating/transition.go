package rating

// Event is an input to Transition.
type Event interface {
	isEvent()
}

// SubmitEvent starts analysis of a new image. It supersedes any current
// submission.
type SubmitEvent struct {
	ImageSrc string
	Token    uint64
}

// SucceedEvent delivers an analysis result for submission Token.
type SucceedEvent struct {
	Token    uint64
	Analysis *Analysis
}

// FailEvent delivers a failure. A zero Token means the failure is not tied
// to a submission. Configuration marks failures that retrying cannot fix.
type FailEvent struct {
	Token         uint64
	Message       string
	Configuration bool
}

// ResetEvent returns to Idle from any state.
type ResetEvent struct{}

func (SubmitEvent) isEvent()  {}
func (SucceedEvent) isEvent() {}
func (FailEvent) isEvent()    {}
func (ResetEvent) isEvent()   {}

// Transition computes the next state. The boolean is false when the event
// is discarded and s is returned unchanged.
//
// Results and tagged failures are only honored while Analyzing the same
// token; anything else is stale and dropped.
func Transition(s State, e Event) (State, bool) {
	switch ev := e.(type) {
	case SubmitEvent:
		if ev.ImageSrc == "" {
			return s, false
		}
		return Analyzing{ImageSrc: ev.ImageSrc, Token: ev.Token}, true

	case SucceedEvent:
		a, ok := s.(Analyzing)
		if !ok || a.Token != ev.Token || ev.Analysis == nil {
			return s, false
		}
		return Result{ImageSrc: a.ImageSrc, Analysis: ev.Analysis, Token: a.Token}, true

	case FailEvent:
		msg := ev.Message
		if msg == "" {
			msg = MsgGenericFailure
		}
		a, analyzing := s.(Analyzing)
		if ev.Token != 0 {
			if !analyzing || a.Token != ev.Token {
				return s, false
			}
			return Failed{ImageSrc: a.ImageSrc, Message: msg, Token: a.Token, Configuration: ev.Configuration}, true
		}
		if analyzing {
			return Failed{ImageSrc: a.ImageSrc, Message: msg, Token: a.Token, Configuration: ev.Configuration}, true
		}
		return Failed{Message: msg, Configuration: ev.Configuration}, true

	case ResetEvent:
		return Idle{}, true

	default:
		return s, false
	}
}
