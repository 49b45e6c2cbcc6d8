package tfstate

import (
	"encoding/json"
	"fmt"
)

const (
	TypeAwsSecurityGroup               = "aws_security_group"
	TypeAwsSecurityGroupRule           = "aws_security_group_rule"
	TypeAwsVpcSecurityGroupIngressRule = "aws_vpc_security_group_ingress_rule"
	TypeAwsVpcSecurityGroupEgressRule  = "aws_vpc_security_group_egress_rule"
)

type AwsSecurityGroup struct {
	Arn         string            `json:"arn"`
	Description string            `json:"description"`
	Egress      []RuleItem        `json:"egress"`
	Ingress     []RuleItem        `json:"ingress"`
	Id          string            `json:"id"`
	Name        string            `json:"name"`
	OwnerId     string            `json:"owner_id"`
	Tags        map[string]string `json:"tags"`
	TagsAll     map[string]string `json:"tags_all"`
	VpcId       string            `json:"vpc_id"`
}

// RuleItem is an inline ingress or egress block of aws_security_group.
type RuleItem struct {
	CidrBlocks     []string `json:"cidr_blocks"`
	Description    string   `json:"description"`
	FromPort       int32    `json:"from_port"`
	Ipv6CidrBlocks []string `json:"ipv6_cidr_blocks"`
	PrefixListIds  []string `json:"prefix_list_ids"`
	Protocol       string   `json:"protocol"`
	SecurityGroups []string `json:"security_groups"`
	Self           bool     `json:"self"`
	ToPort         int32    `json:"to_port"`
}

// AwsSecurityGroupRule is the standalone aws_security_group_rule resource.
// Type is "ingress" or "egress".
type AwsSecurityGroupRule struct {
	CidrBlocks            []string `json:"cidr_blocks"`
	Description           string   `json:"description"`
	FromPort              int32    `json:"from_port"`
	Id                    string   `json:"id"`
	Ipv6CidrBlocks        []string `json:"ipv6_cidr_blocks"`
	PrefixListIds         []string `json:"prefix_list_ids"`
	Protocol              string   `json:"protocol"`
	SecurityGroupId       string   `json:"security_group_id"`
	SecurityGroupRuleId   string   `json:"security_group_rule_id"`
	Self                  bool     `json:"self"`
	SourceSecurityGroupId string   `json:"source_security_group_id"`
	ToPort                int32    `json:"to_port"`
	Type                  string   `json:"type"`
}

// AwsVpcSecurityGroupRule is either aws_vpc_security_group_ingress_rule or
// aws_vpc_security_group_egress_rule; they share the same attributes.
// Each holds exactly one peer.
type AwsVpcSecurityGroupRule struct {
	CidrIpv4                  string `json:"cidr_ipv4"`
	CidrIpv6                  string `json:"cidr_ipv6"`
	Description               string `json:"description"`
	FromPort                  *int32 `json:"from_port"`
	IpProtocol                string `json:"ip_protocol"`
	PrefixListId              string `json:"prefix_list_id"`
	ReferencedSecurityGroupId string `json:"referenced_security_group_id"`
	SecurityGroupId           string `json:"security_group_id"`
	SecurityGroupRuleId       string `json:"security_group_rule_id"`
	ToPort                    *int32 `json:"to_port"`
}

// Unmarshal decodes the values of res into v, which must match res.Type.
func Unmarshal(res Resource, v any) error {
	if err := json.Unmarshal(res.Values, v); err != nil {
		return fmt.Errorf("unmarshaling %s %s: %s", res.Type, res.Address, err)
	}
	return nil
}
