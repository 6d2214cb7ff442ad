package studio

// Slot is the single-flight state of one generation pipeline: a busy flag, a
// pipeline-scoped error string and an optional human readable status line.
//
// Overlapping runs are resolved through request sequencing: begin hands out a
// monotonically increasing id and only the settle carrying the latest id may
// write the outcome. A stale settle is dropped wholesale, including its busy
// flag reset, which stays owned by the newest run.
type Slot struct {
	Busy   bool
	Err    string
	Status string

	seq uint64
}

func (s *Slot) begin(status string) uint64 {
	s.seq++
	s.Busy = true
	s.Err = ""
	s.Status = status
	return s.seq
}

// settle reports whether the given request id is still the latest one and, if
// so, releases the slot.
func (s *Slot) settle(seq uint64) bool {
	if s.seq != seq {
		return false
	}
	s.Busy = false
	s.Status = ""
	return true
}

// reject records a precondition error without starting a run.
func (s *Slot) reject(msg string) {
	s.Err = msg
}
