package form

import "sync"

// CSS classes applied to the result box.
const (
	ClassSuccess = "alert alert-success"
	ClassError   = "alert alert-danger"
)

// ViewState is a copy of what a RecordingView currently shows.
type ViewState struct {
	Busy           bool         `json:"busy"`
	ButtonLabel    string       `json:"button_label"`
	Class          string       `json:"class,omitempty"`
	Result         *ResultPanel `json:"result,omitempty"`
	Error          string       `json:"error,omitempty"`
	DetailsVisible bool         `json:"details_visible"`
}

// RecordingView is a View that keeps its state in memory so HTTP and CLI
// front ends can serialise it. The zero value is ready to use.
type RecordingView struct {
	mu        sync.Mutex
	state     ViewState
	busyCalls int
}

var _ View = (*RecordingView)(nil)

// SetBusy implements View.
func (v *RecordingView) SetBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Busy = busy
	if busy {
		v.busyCalls++
	}
}

// ShowResult implements View.
func (v *RecordingView) ShowResult(p ResultPanel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Class = ClassSuccess
	v.state.Result = &p
	v.state.Error = ""
	v.state.DetailsVisible = true
}

// ShowError implements View.
func (v *RecordingView) ShowError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Class = ClassError
	v.state.Result = nil
	v.state.Error = message
	v.state.DetailsVisible = false
}

// State returns a snapshot of the view.
func (v *RecordingView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.ButtonLabel = SubmitLabel
	if s.Busy {
		s.ButtonLabel = BusyLabel
	}
	return s
}

// BusyCalls reports how many times the view was set busy.
func (v *RecordingView) BusyCalls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busyCalls
}
