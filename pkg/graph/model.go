// Package graph assembles the renderable node/edge model out of resolved
// security groups.
package graph

import "github.com/pix4d/sgraph/pkg/secgroup"

type NodeKind string

const (
	KindGroup   NodeKind = "group"
	KindAddress NodeKind = "address"
)

type Shape string

const (
	ShapeBox     Shape = "box"
	ShapeOctagon Shape = "octagon"
)

type SubgraphKind string

const (
	SubgraphPartition SubgraphKind = "partition"
	SubgraphExternal  SubgraphKind = "external"
	SubgraphUnused    SubgraphKind = "unused"
)

// DefaultPaletteSize is the number of distinct color indices.
const DefaultPaletteSize = 16

// Node IDs of groups are qualified by partition (see GroupNodeID); address
// nodes use the address key.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Kind  NodeKind `json:"kind"`
	Shape Shape    `json:"shape"`
	// Index is assigned at emission time, modulo the palette size.
	Index int `json:"index"`
	// ReferencedBy lists the group nodes with a rule on an address node.
	ReferencedBy []string `json:"referenced_by,omitempty"`
}

// Edge goes from peer to owner for ingress rules and from owner to peer for
// egress rules.
type Edge struct {
	From      string             `json:"from"`
	To        string             `json:"to"`
	Label     string             `json:"label"`
	Direction secgroup.Direction `json:"direction"`
	// Index is the index of the owning group node.
	Index int `json:"index"`
}

type Subgraph struct {
	Name      string       `json:"name"`
	Kind      SubgraphKind `json:"kind"`
	Partition string       `json:"partition,omitempty"`
	Nodes     []Node       `json:"nodes"`
}

// Model is the complete graph handed to a renderer. Subgraphs come in order:
// one per partition, then external, then unused. Edges belong to no subgraph,
// so that a peer is only drawn inside its own cluster.
type Model struct {
	PaletteSize int         `json:"palette_size"`
	Subgraphs   []*Subgraph `json:"subgraphs"`
	Edges       []Edge      `json:"edges"`
}

// Subgraph returns the subgraph with the given name, or nil.
func (m *Model) Subgraph(name string) *Subgraph {
	for _, sg := range m.Subgraphs {
		if sg.Name == name {
			return sg
		}
	}
	return nil
}

// Nodes returns every node of every subgraph, in emission order.
func (m *Model) Nodes() []Node {
	var nodes []Node
	for _, sg := range m.Subgraphs {
		nodes = append(nodes, sg.Nodes...)
	}
	return nodes
}

const (
	ExternalName = "cluster_external"
	UnusedName   = "cluster_unused"
)

// Groups outside of any VPC share the "none" partition.
const noPartition = "none"

// PartitionName is the subgraph name of a partition.
func PartitionName(partition string) string {
	if partition == "" {
		partition = noPartition
	}
	return "cluster_" + partition
}

// GroupNodeID is the node ID of group id in partition. A group id is unique
// only within its partition.
func GroupNodeID(partition, id string) string {
	if partition == "" {
		partition = noPartition
	}
	return partition + "/" + id
}
