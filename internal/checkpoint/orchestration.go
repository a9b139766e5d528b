package checkpoint

// Subsystem binds a name (used as the frame's source tag) to the
// save/restore callbacks a machine component exposes. The fixed
// ordering below - RAM, CPU, scheduler, RTC, SCC, sound, VIA, mouse,
// SCSI, keyboard, floppy, images - is dictated by the orchestration
// layer's construction order: components later in the list may
// reference state (interrupt lines, drive geometry) that must already
// exist when they run.
type Subsystem struct {
	Name string
	Line uint32
	Save func() ([]byte, error)
	Load func([]byte) error
}

// Setup writes every subsystem's payload into w in the order given.
// The first subsystem to fail aborts the whole checkpoint and leaves
// w sticky-errored.
func Setup(w *Writer, subsystems []Subsystem) error {
	for _, s := range subsystems {
		if w.HasError() {
			return w.Err()
		}
		payload, err := s.Save()
		if err != nil {
			w.fail(err)
			return err
		}
		w.WriteFrame(s.Name, s.Line, payload)
	}
	if w.HasError() {
		return w.Err()
	}
	return nil
}

// SetupFromCheckpoint restores every subsystem in the same fixed
// order Setup wrote them, passing each frame's payload to the
// matching Load callback. A source-location mismatch (a frame tagged
// with a different Name than the subsystem expecting it) is reported
// with both the expected and actual location, the same diagnostic
// shape the rest of this tree uses for invariant violations.
func SetupFromCheckpoint(r *Reader, subsystems []Subsystem) error {
	for _, s := range subsystems {
		frame, ok := r.ReadFrame()
		if !ok {
			if r.HasError() {
				return r.Err()
			}
			return errShortStream(s.Name)
		}
		if frame.SourceFile != s.Name {
			return errSourceMismatch(s.Name, frame.SourceFile, frame.Line)
		}
		if err := s.Load(frame.Payload); err != nil {
			return err
		}
	}
	return nil
}
