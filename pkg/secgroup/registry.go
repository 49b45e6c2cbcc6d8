package secgroup

// Partition holds the groups of one VPC in insertion order.
type Partition struct {
	ID     string
	groups []*SecurityGroup
	byID   map[string]int
}

// Groups returns the groups of the partition in insertion order.
func (p *Partition) Groups() []*SecurityGroup {
	return p.groups
}

// Registry holds every group of a run, partitioned by VPC. Partitions iterate
// in first-seen order.
type Registry struct {
	partitions []*Partition
	byID       map[string]*Partition
}

func NewRegistry() *Registry {
	return &Registry{byID: map[string]*Partition{}}
}

// Add registers sg in its partition. A group with the same id in the same
// partition is replaced, keeping its original position.
func (r *Registry) Add(sg *SecurityGroup) {
	p, ok := r.byID[sg.Partition]
	if !ok {
		p = &Partition{ID: sg.Partition, byID: map[string]int{}}
		r.byID[sg.Partition] = p
		r.partitions = append(r.partitions, p)
	}
	if i, ok := p.byID[sg.ID]; ok {
		p.groups[i] = sg
		return
	}
	p.byID[sg.ID] = len(p.groups)
	p.groups = append(p.groups, sg)
}

// Lookup finds a group by partition and id.
func (r *Registry) Lookup(partition, id string) (*SecurityGroup, bool) {
	p, ok := r.byID[partition]
	if !ok {
		return nil, false
	}
	i, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	return p.groups[i], true
}

// HasPartition reports whether any group of the partition was registered.
func (r *Registry) HasPartition(partition string) bool {
	_, ok := r.byID[partition]
	return ok
}

func (r *Registry) Partitions() []*Partition {
	return r.partitions
}

// Len returns the number of registered groups.
func (r *Registry) Len() int {
	n := 0
	for _, p := range r.partitions {
		n += len(p.groups)
	}
	return n
}

// Each calls fn for every group, partition by partition.
func (r *Registry) Each(fn func(*SecurityGroup) error) error {
	for _, p := range r.partitions {
		for _, sg := range p.groups {
			if err := fn(sg); err != nil {
				return err
			}
		}
	}
	return nil
}
