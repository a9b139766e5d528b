package sound

// State is the checkpoint-visible sound mixer snapshot.
type State struct {
	Volume       int
	MainBase     uint32
	AlternateBase uint32
	UseAlternate bool
}

func (s *Sound) Snapshot() State {
	return State{Volume: s.Volume, MainBase: s.MainBase, AlternateBase: s.AlternateBase, UseAlternate: s.useAlternate}
}

func (s *Sound) Restore(st State) {
	s.Volume = st.Volume
	s.MainBase = st.MainBase
	s.AlternateBase = st.AlternateBase
	s.useAlternate = st.UseAlternate
}
