package secgroup

import (
	"strconv"
	"strings"
)

type Direction string

const (
	Ingress Direction = "ingress"
	Egress  Direction = "egress"
)

const (
	// AllPorts is the port bound meaning "every port".
	AllPorts int32 = -1
	// AllProtocols is the label of a rule matching every protocol.
	AllProtocols = "all"
)

// Rule is one normalized permission: a single peer, a protocol and a port range.
type Rule struct {
	OwnerID   string
	Direction Direction
	// Protocol is uppercased, or AllProtocols.
	Protocol string
	PortLow  int32
	PortHigh int32

	PeerKind PeerKind
	Peer     string
	// PeerPartition is only set for PeerGroup.
	PeerPartition string

	Description string
}

func newRule(owner *SecurityGroup, dir Direction, protocol string, low, high int32, d PeerDescriptor, description string) *Rule {
	peer := Classify(d, owner.Partition)
	return &Rule{
		OwnerID:       owner.ID,
		Direction:     dir,
		Protocol:      normalizeProtocol(protocol),
		PortLow:       low,
		PortHigh:      high,
		PeerKind:      peer.Kind,
		Peer:          peer.Key,
		PeerPartition: peer.Partition,
		Description:   description,
	}
}

func normalizeProtocol(protocol string) string {
	p := strings.ToUpper(protocol)
	if p == "-1" || p == "ALL" {
		return AllProtocols
	}
	return p
}

// PortLabel is "all", a single port, or "low..high".
func (r *Rule) PortLabel() string {
	switch {
	case r.PortLow == AllPorts:
		return "all"
	case r.PortLow == r.PortHigh:
		return strconv.Itoa(int(r.PortLow))
	}
	return strconv.Itoa(int(r.PortLow)) + ".." + strconv.Itoa(int(r.PortHigh))
}

// Label combines protocol and ports, for example "TCP: 443".
func (r *Rule) Label() string {
	return r.Protocol + ": " + r.PortLabel()
}
