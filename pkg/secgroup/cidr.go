package secgroup

// CidrSet maps an address key to the groups referencing it. Keys keep their
// first-seen order, and so do the groups of each key.
type CidrSet struct {
	keys []string
	refs map[string][]*SecurityGroup
}

func NewCidrSet() *CidrSet {
	return &CidrSet{refs: map[string][]*SecurityGroup{}}
}

// Add records that sg references key. The key must already be normalized
// (see Classify), so that "10.0.0.5/32" and "10.0.0.5" are the same entry.
func (s *CidrSet) Add(key string, sg *SecurityGroup) {
	if _, ok := s.refs[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.refs[key] = append(s.refs[key], sg)
}

func (s *CidrSet) Keys() []string {
	return s.keys
}

// Groups returns the groups referencing key, one entry per referencing rule.
func (s *CidrSet) Groups(key string) []*SecurityGroup {
	return s.refs[key]
}

func (s *CidrSet) Len() int {
	return len(s.keys)
}
