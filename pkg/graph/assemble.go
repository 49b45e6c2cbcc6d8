package graph

import "github.com/pix4d/sgraph/pkg/secgroup"

// Assemble builds the model of a resolved registry. Groups are emitted
// partition by partition in registry order, each followed by the edges of its
// rules; then one node per address key of cidrs. Identical input order gives
// identical output.
func Assemble(reg *secgroup.Registry, cidrs *secgroup.CidrSet, paletteSize int) *Model {
	if paletteSize <= 0 {
		paletteSize = DefaultPaletteSize
	}
	m := &Model{PaletteSize: paletteSize}
	external := &Subgraph{Name: ExternalName, Kind: SubgraphExternal}
	unused := &Subgraph{Name: UnusedName, Kind: SubgraphUnused}

	i := 0
	next := func() int {
		idx := i % paletteSize
		i++
		return idx
	}

	for _, p := range reg.Partitions() {
		sub := &Subgraph{Name: PartitionName(p.ID), Kind: SubgraphPartition, Partition: p.ID}
		m.Subgraphs = append(m.Subgraphs, sub)

		for _, sg := range p.Groups() {
			target := sub
			if len(sg.Peers()) == 0 {
				target = unused
			}
			idx := next()
			target.Nodes = append(target.Nodes, Node{
				ID:    GroupNodeID(sg.Partition, sg.ID),
				Label: sg.Label(),
				Kind:  KindGroup,
				Shape: ShapeBox,
				Index: idx,
			})
			for _, rules := range [][]*secgroup.Rule{sg.Ingress, sg.Egress} {
				for _, rule := range rules {
					if e, ok := edgeOf(reg, sg, rule, idx); ok {
						m.Edges = append(m.Edges, e)
					}
				}
			}
		}
	}

	for _, key := range cidrs.Keys() {
		external.Nodes = append(external.Nodes, Node{
			ID:           key,
			Label:        key,
			Kind:         KindAddress,
			Shape:        ShapeOctagon,
			Index:        next(),
			ReferencedBy: referencedBy(cidrs.Groups(key)),
		})
	}

	m.Subgraphs = append(m.Subgraphs, external, unused)
	return m
}

// edgeOf returns the edge of a rule of owner, if it has one. Prefix lists and
// group peers missing from the registry have no node to connect to.
func edgeOf(reg *secgroup.Registry, owner *secgroup.SecurityGroup, rule *secgroup.Rule, idx int) (Edge, bool) {
	peer := rule.Peer
	switch rule.PeerKind {
	case secgroup.PeerIP, secgroup.PeerCIDR:
	case secgroup.PeerGroup:
		if _, ok := reg.Lookup(rule.PeerPartition, rule.Peer); !ok {
			return Edge{}, false
		}
		peer = GroupNodeID(rule.PeerPartition, rule.Peer)
	default:
		return Edge{}, false
	}

	self := GroupNodeID(owner.Partition, owner.ID)
	e := Edge{Label: rule.Label(), Direction: rule.Direction, Index: idx}
	if rule.Direction == secgroup.Egress {
		e.From, e.To = self, peer
	} else {
		e.From, e.To = peer, self
	}
	return e, true
}

// referencedBy returns the node IDs of groups, without repetitions.
func referencedBy(groups []*secgroup.SecurityGroup) []string {
	var ids []string
	seen := map[string]bool{}
	for _, sg := range groups {
		id := GroupNodeID(sg.Partition, sg.ID)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
