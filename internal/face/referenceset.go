package face

// ReferenceSet holds the employee's enrolled descriptors for one
// verification session. It lives in volatile memory only: built at session
// start, read only by the matcher, and purged on every terminal path.
// Biometric vectors must never outlive the session or leave the process.
type ReferenceSet struct {
	owner       string
	descriptors []Descriptor
	purged      bool
}

// NewReferenceSet creates an empty set labeled with the employee's name.
func NewReferenceSet(owner string) *ReferenceSet {
	return &ReferenceSet{owner: owner}
}

// Add appends a descriptor. Copies the vector so callers cannot mutate the
// stored reference afterwards.
func (s *ReferenceSet) Add(d Descriptor) {
	if s.purged {
		return
	}
	s.descriptors = append(s.descriptors, d.Clone())
}

// Owner returns the label of the enrolled employee.
func (s *ReferenceSet) Owner() string {
	return s.owner
}

// Len returns the number of enrolled descriptors.
func (s *ReferenceSet) Len() int {
	return len(s.descriptors)
}

// Purged reports whether the set has been destroyed.
func (s *ReferenceSet) Purged() bool {
	return s.purged
}

// Purge zeroes every vector and drops the set. The set is unusable
// afterwards; a new session must rebuild from enrollment photos.
func (s *ReferenceSet) Purge() {
	for _, d := range s.descriptors {
		for i := range d {
			d[i] = 0
		}
	}
	s.descriptors = nil
	s.purged = true
}
