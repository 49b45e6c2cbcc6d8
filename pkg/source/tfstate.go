package source

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pix4d/sgraph/pkg/secgroup"
	"github.com/pix4d/sgraph/pkg/tfstate"
)

// Tfstate reads the output of "terraform show -json". Every aws_security_group
// of the root module and of its child modules becomes one record, with the
// standalone rule resources merged into their owning group.
type Tfstate struct {
	rd     io.Reader
	logger zerolog.Logger
}

func NewTfstate(rd io.Reader, logger zerolog.Logger) *Tfstate {
	return &Tfstate{rd: rd, logger: logger}
}

func (s *Tfstate) Each(ctx context.Context, fn func(secgroup.RawGroup) error) error {
	state, err := tfstate.Decode(s.rd)
	if err != nil {
		return err
	}

	// Rule resources may precede their group in the state.
	var groups []*secgroup.RawGroup
	byID := make(map[string]*secgroup.RawGroup)
	var rules []tfstate.Resource

	err = tfstate.Walk(state.Values.RootModule, func(res tfstate.Resource) error {
		if res.Mode != "" && res.Mode != "managed" {
			return nil
		}
		switch res.Type {
		case tfstate.TypeAwsSecurityGroup:
			var sg tfstate.AwsSecurityGroup
			if err := tfstate.Unmarshal(res, &sg); err != nil {
				return err
			}
			raw := fromAwsSecurityGroup(sg)
			groups = append(groups, &raw)
			byID[raw.GroupId] = &raw
		case tfstate.TypeAwsSecurityGroupRule,
			tfstate.TypeAwsVpcSecurityGroupIngressRule,
			tfstate.TypeAwsVpcSecurityGroupEgressRule:
			rules = append(rules, res)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, res := range rules {
		if err := s.mergeRule(res, byID); err != nil {
			return err
		}
	}

	for _, raw := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(*raw); err != nil {
			return err
		}
	}
	return nil
}

func (s *Tfstate) mergeRule(res tfstate.Resource, byID map[string]*secgroup.RawGroup) error {
	var ownerID string
	var perm secgroup.RawPermission
	var egress bool

	switch res.Type {
	case tfstate.TypeAwsSecurityGroupRule:
		var rule tfstate.AwsSecurityGroupRule
		if err := tfstate.Unmarshal(res, &rule); err != nil {
			return err
		}
		switch rule.Type {
		case "ingress":
		case "egress":
			egress = true
		default:
			s.logger.Warn().Str("address", res.Address).Str("type", rule.Type).
				Msg("skipping rule with unknown type")
			return nil
		}
		ownerID = rule.SecurityGroupId
		item := tfstate.RuleItem{
			CidrBlocks:     rule.CidrBlocks,
			Description:    rule.Description,
			FromPort:       rule.FromPort,
			Ipv6CidrBlocks: rule.Ipv6CidrBlocks,
			PrefixListIds:  rule.PrefixListIds,
			Protocol:       rule.Protocol,
			Self:           rule.Self,
			ToPort:         rule.ToPort,
		}
		if rule.SourceSecurityGroupId != "" {
			item.SecurityGroups = []string{rule.SourceSecurityGroupId}
		}
		perm = fromRuleItem(item, ownerID)
	default:
		var rule tfstate.AwsVpcSecurityGroupRule
		if err := tfstate.Unmarshal(res, &rule); err != nil {
			return err
		}
		egress = res.Type == tfstate.TypeAwsVpcSecurityGroupEgressRule
		ownerID = rule.SecurityGroupId
		perm = fromVpcRule(rule)
	}

	owner, ok := byID[ownerID]
	if !ok {
		s.logger.Warn().Str("address", res.Address).Str("group", ownerID).
			Msg("skipping rule of unknown security group")
		return nil
	}
	if egress {
		owner.IpPermissionsEgress = append(owner.IpPermissionsEgress, perm)
	} else {
		owner.IpPermissions = append(owner.IpPermissions, perm)
	}
	return nil
}

func fromAwsSecurityGroup(sg tfstate.AwsSecurityGroup) secgroup.RawGroup {
	raw := secgroup.RawGroup{
		GroupId:     sg.Id,
		GroupName:   sg.Name,
		Description: sg.Description,
		OwnerId:     sg.OwnerId,
		VpcId:       sg.VpcId,
	}

	tags := sg.TagsAll
	if tags == nil {
		tags = sg.Tags
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw.Tags = append(raw.Tags, secgroup.RawTag{Key: k, Value: tags[k]})
	}

	for _, item := range sg.Ingress {
		raw.IpPermissions = append(raw.IpPermissions, fromRuleItem(item, sg.Id))
	}
	for _, item := range sg.Egress {
		raw.IpPermissionsEgress = append(raw.IpPermissionsEgress, fromRuleItem(item, sg.Id))
	}
	return raw
}

// fromRuleItem converts a Terraform rule block. selfID is the id of the
// owning group, used when the block has self = true.
func fromRuleItem(item tfstate.RuleItem, selfID string) secgroup.RawPermission {
	perm := secgroup.RawPermission{IpProtocol: stringp(item.Protocol)}
	// Terraform writes 0/0 for "all traffic".
	if !(item.Protocol == "-1" && item.FromPort == 0 && item.ToPort == 0) {
		perm.FromPort = int32p(item.FromPort)
		perm.ToPort = int32p(item.ToPort)
	}

	for _, cidr := range item.CidrBlocks {
		perm.IpRanges = append(perm.IpRanges,
			secgroup.RawIPRange{CidrIp: cidr, Description: item.Description})
	}
	for _, cidr := range item.Ipv6CidrBlocks {
		perm.Ipv6Ranges = append(perm.Ipv6Ranges,
			secgroup.RawIPv6Range{CidrIpv6: cidr, Description: item.Description})
	}
	for _, pl := range item.PrefixListIds {
		perm.PrefixListIds = append(perm.PrefixListIds,
			secgroup.RawPrefixListID{PrefixListId: pl, Description: item.Description})
	}
	for _, ref := range item.SecurityGroups {
		perm.UserIdGroupPairs = append(perm.UserIdGroupPairs, groupPair(ref, item.Description))
	}
	if item.Self {
		perm.UserIdGroupPairs = append(perm.UserIdGroupPairs,
			secgroup.RawGroupPair{GroupId: selfID, Description: item.Description})
	}
	return perm
}

func fromVpcRule(rule tfstate.AwsVpcSecurityGroupRule) secgroup.RawPermission {
	perm := secgroup.RawPermission{
		IpProtocol: stringp(rule.IpProtocol),
		FromPort:   rule.FromPort,
		ToPort:     rule.ToPort,
	}
	switch {
	case rule.CidrIpv4 != "":
		perm.IpRanges = []secgroup.RawIPRange{{CidrIp: rule.CidrIpv4, Description: rule.Description}}
	case rule.CidrIpv6 != "":
		perm.Ipv6Ranges = []secgroup.RawIPv6Range{{CidrIpv6: rule.CidrIpv6, Description: rule.Description}}
	case rule.PrefixListId != "":
		perm.PrefixListIds = []secgroup.RawPrefixListID{{PrefixListId: rule.PrefixListId, Description: rule.Description}}
	case rule.ReferencedSecurityGroupId != "":
		perm.UserIdGroupPairs = []secgroup.RawGroupPair{groupPair(rule.ReferencedSecurityGroupId, rule.Description)}
	}
	return perm
}

// groupPair parses a Terraform group reference, either "sg-123" or, across
// accounts, "123456789012/sg-123".
func groupPair(ref, description string) secgroup.RawGroupPair {
	if account, id, found := strings.Cut(ref, "/"); found {
		return secgroup.RawGroupPair{GroupId: id, UserId: account, Description: description}
	}
	return secgroup.RawGroupPair{GroupId: ref, Description: description}
}

func stringp(s string) *string { return &s }

func int32p(n int32) *int32 { return &n }
