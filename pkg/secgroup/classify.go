package secgroup

import "strings"

type PeerKind string

const (
	PeerCIDR       PeerKind = "cidr"
	PeerIP         PeerKind = "ip"
	PeerGroup      PeerKind = "sg"
	PeerPrefixList PeerKind = "prefix-list"
)

// IsAddress reports whether the peer is an address or address block.
func (k PeerKind) IsAddress() bool {
	return k == PeerCIDR || k == PeerIP
}

// PeerCategory is the raw list a peer descriptor was found in.
type PeerCategory int

const (
	CategoryIPv4Range PeerCategory = iota
	CategoryIPv6Range
	CategoryPrefixList
	CategoryGroupPair
)

func (c PeerCategory) String() string {
	switch c {
	case CategoryIPv4Range:
		return "IpRanges"
	case CategoryIPv6Range:
		return "Ipv6Ranges"
	case CategoryPrefixList:
		return "PrefixListIds"
	case CategoryGroupPair:
		return "UserIdGroupPairs"
	}
	return "unknown"
}

// PeerDescriptor is one entry of a rule block's peer lists.
type PeerDescriptor struct {
	Category PeerCategory
	// Value is the CIDR block, prefix list id or group id, depending on Category.
	Value string
	// Partition is the VPC declared by a group reference, if any.
	Partition string
}

// Peer is the classified other end of a rule.
type Peer struct {
	Kind      PeerKind
	Key       string
	Partition string
}

const (
	hostMaskIPv4 = "/32"
	hostMaskIPv6 = "/128"
)

// Classify turns a peer descriptor into its kind, canonical key and, for group
// references, the partition the referenced group lives in. ownerPartition is
// the partition of the group owning the rule.
func Classify(d PeerDescriptor, ownerPartition string) Peer {
	switch d.Category {
	case CategoryIPv4Range:
		return classifyRange(d.Value, hostMaskIPv4)
	case CategoryIPv6Range:
		return classifyRange(d.Value, hostMaskIPv6)
	case CategoryGroupPair:
		partition := d.Partition
		if partition == "" {
			partition = ownerPartition
		}
		return Peer{Kind: PeerGroup, Key: d.Value, Partition: partition}
	default:
		return Peer{Kind: PeerPrefixList, Key: d.Value}
	}
}

func classifyRange(cidr, hostMask string) Peer {
	if addr, ok := strings.CutSuffix(cidr, hostMask); ok {
		return Peer{Kind: PeerIP, Key: addr}
	}
	return Peer{Kind: PeerCIDR, Key: cidr}
}
