package form

// SubStepper owns the position inside a multi-screen step. Screens only see
// Next as their StepController.
type SubStepper struct {
	count      int
	index      int
	editing    bool
	onFinished func()
}

// NewSubStepper creates a sequencer over count screens starting at start.
// onFinished runs when Next is called on the last screen.
func NewSubStepper(count, start int, onFinished func()) *SubStepper {
	if count < 1 {
		count = 1
	}
	if start < 0 || start >= count {
		start = 0
	}
	return &SubStepper{count: count, index: start, onFinished: onFinished}
}

func (s *SubStepper) Index() int      { return s.index }
func (s *SubStepper) Count() int      { return s.count }
func (s *SubStepper) IsEditing() bool { return s.editing }
func (s *SubStepper) IsLast() bool    { return s.index == s.count-1 }

// Next advances one screen. While editing it jumps back to the last screen;
// on the last screen it reports completion instead.
func (s *SubStepper) Next() {
	switch {
	case s.editing:
		s.GoToLast()
	case s.IsLast():
		if s.onFinished != nil {
			s.onFinished()
		}
	default:
		s.index++
	}
}

// Prev moves back one screen. It reports false on the first screen so the
// enclosing wizard can leave the step.
func (s *SubStepper) Prev() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	return true
}

// MoveTo jumps to screen i in editing mode, as the confirmation screen does
// when the user asks to change one value.
func (s *SubStepper) MoveTo(i int) {
	if i < 0 || i >= s.count {
		return
	}
	s.editing = true
	s.index = i
}

// GoToLast leaves editing mode and shows the last screen.
func (s *SubStepper) GoToLast() {
	s.editing = false
	s.index = s.count - 1
}

// Controller returns Next as a StepController.
func (s *SubStepper) Controller() StepController { return s.Next }
