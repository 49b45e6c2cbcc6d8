package secgroup

// RawGroup is one security group record as delivered by a data source.
// The field names follow the EC2 DescribeSecurityGroups JSON output, so that a
// dump of `aws ec2 describe-security-groups` decodes directly into it.
type RawGroup struct {
	GroupId             string          `json:"GroupId"`
	GroupName           string          `json:"GroupName,omitempty"`
	Description         string          `json:"Description,omitempty"`
	OwnerId             string          `json:"OwnerId,omitempty"`
	VpcId               string          `json:"VpcId,omitempty"`
	Tags                []RawTag        `json:"Tags,omitempty"`
	IpPermissions       []RawPermission `json:"IpPermissions,omitempty"`
	IpPermissionsEgress []RawPermission `json:"IpPermissionsEgress,omitempty"`
}

type RawTag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// RawPermission is a rule block: a protocol, an optional port range and the
// lists of peers it applies to.
type RawPermission struct {
	IpProtocol       *string           `json:"IpProtocol,omitempty"`
	FromPort         *int32            `json:"FromPort,omitempty"`
	ToPort           *int32            `json:"ToPort,omitempty"`
	IpRanges         []RawIPRange      `json:"IpRanges,omitempty"`
	Ipv6Ranges       []RawIPv6Range    `json:"Ipv6Ranges,omitempty"`
	PrefixListIds    []RawPrefixListID `json:"PrefixListIds,omitempty"`
	UserIdGroupPairs []RawGroupPair    `json:"UserIdGroupPairs,omitempty"`
}

type RawIPRange struct {
	CidrIp      string `json:"CidrIp"`
	Description string `json:"Description,omitempty"`
}

type RawIPv6Range struct {
	CidrIpv6    string `json:"CidrIpv6"`
	Description string `json:"Description,omitempty"`
}

type RawPrefixListID struct {
	PrefixListId string `json:"PrefixListId"`
	Description  string `json:"Description,omitempty"`
}

// RawGroupPair references another security group, possibly in another VPC
// or another account.
type RawGroupPair struct {
	GroupId                string `json:"GroupId"`
	GroupName              string `json:"GroupName,omitempty"`
	UserId                 string `json:"UserId,omitempty"`
	VpcId                  string `json:"VpcId,omitempty"`
	VpcPeeringConnectionId string `json:"VpcPeeringConnectionId,omitempty"`
	PeeringStatus          string `json:"PeeringStatus,omitempty"`
	Description            string `json:"Description,omitempty"`
}
