package secgroup

import "fmt"

// DefaultNameTag is the tag key whose value, when present, is used as the
// display name of a group.
const DefaultNameTag = "Name"

type Tag struct {
	Key   string
	Value string
}

type ReverseDirection string

const (
	IngressTo  ReverseDirection = "ingress_to"
	EgressFrom ReverseDirection = "egress_from"
)

type SecurityGroup struct {
	ID          string
	Partition   string
	Owner       string
	GroupName   string
	Description string

	// Name is the value of the name tag, or GroupName if the tag is absent.
	Name       string
	HasNameTag bool
	// Tags holds every tag except the name tag, in record order.
	Tags []Tag

	Ingress []*Rule
	Egress  []*Rule

	// Rules of other groups whose peer is this group. Filled by Resolve.
	IngressTo  []*Rule
	EgressFrom []*Rule
}

type ParseOptions struct {
	// NameTag defaults to DefaultNameTag.
	NameTag string
}

// Parse builds a SecurityGroup from a raw record. Each rule block fans out
// into one Rule per peer, in the order IpRanges, Ipv6Ranges, PrefixListIds,
// UserIdGroupPairs.
func Parse(raw RawGroup, opts ParseOptions) (*SecurityGroup, error) {
	if raw.GroupId == "" {
		return nil, &MalformedRecordError{Field: "GroupId"}
	}
	nameTag := opts.NameTag
	if nameTag == "" {
		nameTag = DefaultNameTag
	}

	sg := &SecurityGroup{
		ID:          raw.GroupId,
		Partition:   raw.VpcId,
		Owner:       raw.OwnerId,
		GroupName:   raw.GroupName,
		Description: raw.Description,
	}

	for _, t := range raw.Tags {
		if t.Key == nameTag {
			sg.Name = t.Value
			sg.HasNameTag = true
			continue
		}
		sg.Tags = append(sg.Tags, Tag{Key: t.Key, Value: t.Value})
	}
	if !sg.HasNameTag {
		sg.Name = sg.GroupName
	}

	var err error
	if sg.Ingress, err = parsePermissions(sg, Ingress, raw.IpPermissions); err != nil {
		return nil, err
	}
	if sg.Egress, err = parsePermissions(sg, Egress, raw.IpPermissionsEgress); err != nil {
		return nil, err
	}
	return sg, nil
}

func parsePermissions(sg *SecurityGroup, dir Direction, perms []RawPermission) ([]*Rule, error) {
	var rules []*Rule
	for i, perm := range perms {
		field := fmt.Sprintf("%s[%d]", permissionsField(dir), i)
		if perm.IpProtocol == nil {
			return nil, &MalformedRecordError{GroupID: sg.ID, Field: field + ".IpProtocol"}
		}
		protocol := *perm.IpProtocol
		low, high := AllPorts, AllPorts
		if perm.FromPort != nil {
			low = *perm.FromPort
		}
		if perm.ToPort != nil {
			high = *perm.ToPort
		}

		add := func(d PeerDescriptor, description string) {
			rules = append(rules, newRule(sg, dir, protocol, low, high, d, description))
		}

		for _, r := range perm.IpRanges {
			if r.CidrIp == "" {
				return nil, &MalformedRecordError{GroupID: sg.ID, Field: field + ".IpRanges.CidrIp"}
			}
			add(PeerDescriptor{Category: CategoryIPv4Range, Value: r.CidrIp}, r.Description)
		}
		for _, r := range perm.Ipv6Ranges {
			if r.CidrIpv6 == "" {
				return nil, &MalformedRecordError{GroupID: sg.ID, Field: field + ".Ipv6Ranges.CidrIpv6"}
			}
			add(PeerDescriptor{Category: CategoryIPv6Range, Value: r.CidrIpv6}, r.Description)
		}
		for _, p := range perm.PrefixListIds {
			if p.PrefixListId == "" {
				return nil, &MalformedRecordError{GroupID: sg.ID, Field: field + ".PrefixListIds.PrefixListId"}
			}
			add(PeerDescriptor{Category: CategoryPrefixList, Value: p.PrefixListId}, p.Description)
		}
		for _, p := range perm.UserIdGroupPairs {
			if p.GroupId == "" {
				return nil, &MalformedRecordError{GroupID: sg.ID, Field: field + ".UserIdGroupPairs.GroupId"}
			}
			add(PeerDescriptor{Category: CategoryGroupPair, Value: p.GroupId, Partition: p.VpcId}, p.Description)
		}
	}
	return rules, nil
}

func permissionsField(dir Direction) string {
	if dir == Egress {
		return "IpPermissionsEgress"
	}
	return "IpPermissions"
}

// Label is the display label of the group node: "name (id)".
func (sg *SecurityGroup) Label() string {
	return fmt.Sprintf("%s (%s)", sg.Name, sg.ID)
}

// AddReverseRule records a rule of another group whose peer is sg.
func (sg *SecurityGroup) AddReverseRule(dir ReverseDirection, rule *Rule) error {
	switch dir {
	case IngressTo:
		sg.IngressTo = append(sg.IngressTo, rule)
	case EgressFrom:
		sg.EgressFrom = append(sg.EgressFrom, rule)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReverseDirection, dir)
	}
	return nil
}

// Peers returns the peer keys of own ingress, own egress, reverse ingress and
// reverse egress rules, in that order. A group without peers is unused.
func (sg *SecurityGroup) Peers() []string {
	peers := make([]string, 0, len(sg.Ingress)+len(sg.Egress)+len(sg.IngressTo)+len(sg.EgressFrom))
	for _, rules := range [][]*Rule{sg.Ingress, sg.Egress, sg.IngressTo, sg.EgressFrom} {
		for _, r := range rules {
			peers = append(peers, r.Peer)
		}
	}
	return peers
}
