package secgroup

import (
	"github.com/rs/zerolog"
	"github.com/scylladb/go-set/strset"
)

type UnresolvedReason string

const (
	UnknownPartition UnresolvedReason = "unknown partition"
	UnknownGroup     UnresolvedReason = "unknown group"
)

// UnresolvedPeer is a group reference that points outside of the registry:
// another account, a deleted group, a VPC that was not queried.
type UnresolvedPeer struct {
	Rule   *Rule
	Reason UnresolvedReason
}

// Report collects what Resolve skipped. None of it is an error.
type Report struct {
	Unresolved        []UnresolvedPeer
	UnknownPartitions *strset.Set
	PrefixListPeers   int
}

func newReport() *Report {
	return &Report{UnknownPartitions: strset.New()}
}

// Resolve walks every rule of every group once. Address peers are collected
// into the returned CidrSet; group peers found in the registry get the rule
// appended to their IngressTo or EgressFrom list.
//
// Resolve must run exactly once per registry: a second pass appends every
// reverse rule again.
func Resolve(reg *Registry, logger zerolog.Logger) (*CidrSet, *Report, error) {
	cidrs := NewCidrSet()
	report := newReport()

	err := reg.Each(func(sg *SecurityGroup) error {
		for _, rules := range [][]*Rule{sg.Ingress, sg.Egress} {
			for _, rule := range rules {
				if err := resolveRule(reg, cidrs, report, sg, rule, logger); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return cidrs, report, nil
}

func resolveRule(reg *Registry, cidrs *CidrSet, report *Report, sg *SecurityGroup, rule *Rule, logger zerolog.Logger) error {
	switch {
	case rule.PeerKind.IsAddress():
		cidrs.Add(rule.Peer, sg)
	case rule.PeerKind == PeerPrefixList:
		report.PrefixListPeers++
	case rule.PeerKind == PeerGroup:
		target, ok := reg.Lookup(rule.PeerPartition, rule.Peer)
		if !ok {
			reason := UnknownGroup
			if !reg.HasPartition(rule.PeerPartition) {
				reason = UnknownPartition
				report.UnknownPartitions.Add(rule.PeerPartition)
			}
			report.Unresolved = append(report.Unresolved, UnresolvedPeer{Rule: rule, Reason: reason})
			logger.Debug().
				Str("group", sg.ID).
				Str("peer", rule.Peer).
				Str("partition", rule.PeerPartition).
				Str("reason", string(reason)).
				Msg("skipping unresolved peer")
			return nil
		}
		return target.AddReverseRule(reverseOf(rule.Direction), rule)
	}
	return nil
}

func reverseOf(dir Direction) ReverseDirection {
	switch dir {
	case Ingress:
		return IngressTo
	case Egress:
		return EgressFrom
	}
	return ReverseDirection(dir)
}
