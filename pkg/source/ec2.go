package source

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog"
	"github.com/scylladb/go-set/strset"

	"github.com/pix4d/sgraph/pkg/secgroup"
)

// EC2 fetches security groups from the EC2 API, one page at a time.
type EC2 struct {
	client ec2.DescribeSecurityGroupsAPIClient
	opts   EC2Options
}

type EC2Options struct {
	// PageSize is the MaxResults of each request; 0 lets the API decide.
	PageSize int32
	// VPCs restricts the query to these VPC ids; empty means all.
	VPCs   *strset.Set
	Logger zerolog.Logger
}

func NewEC2(client ec2.DescribeSecurityGroupsAPIClient, opts EC2Options) *EC2 {
	return &EC2{client: client, opts: opts}
}

// NewEC2Client loads the shared AWS configuration (environment, profile,
// region) and returns an EC2 client.
func NewEC2Client(ctx context.Context, region, profile string) (*ec2.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return ec2.NewFromConfig(cfg), nil
}

func (s *EC2) input() *ec2.DescribeSecurityGroupsInput {
	input := &ec2.DescribeSecurityGroupsInput{}
	if s.opts.VPCs != nil && !s.opts.VPCs.IsEmpty() {
		vpcs := s.opts.VPCs.List()
		// Sorted, for reproducible requests.
		sort.Strings(vpcs)
		input.Filters = []types.Filter{{Name: aws.String("vpc-id"), Values: vpcs}}
	}
	return input
}

func (s *EC2) Each(ctx context.Context, fn func(secgroup.RawGroup) error) error {
	paginator := ec2.NewDescribeSecurityGroupsPaginator(s.client, s.input(),
		func(o *ec2.DescribeSecurityGroupsPaginatorOptions) {
			if s.opts.PageSize > 0 {
				o.Limit = s.opts.PageSize
			}
		})

	for page := 1; paginator.HasMorePages(); page++ {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("describing security groups: %w", err)
		}
		s.opts.Logger.Debug().Int("page", page).Int("groups", len(out.SecurityGroups)).
			Msg("fetched security groups")
		for _, sg := range out.SecurityGroups {
			if err := fn(FromEC2(sg)); err != nil {
				return err
			}
		}
	}
	return nil
}

// FromEC2 converts an SDK security group into a raw record.
func FromEC2(sg types.SecurityGroup) secgroup.RawGroup {
	raw := secgroup.RawGroup{
		GroupId:             aws.ToString(sg.GroupId),
		GroupName:           aws.ToString(sg.GroupName),
		Description:         aws.ToString(sg.Description),
		OwnerId:             aws.ToString(sg.OwnerId),
		VpcId:               aws.ToString(sg.VpcId),
		IpPermissions:       fromEC2Permissions(sg.IpPermissions),
		IpPermissionsEgress: fromEC2Permissions(sg.IpPermissionsEgress),
	}
	for _, t := range sg.Tags {
		raw.Tags = append(raw.Tags, secgroup.RawTag{Key: aws.ToString(t.Key), Value: aws.ToString(t.Value)})
	}
	return raw
}

func fromEC2Permissions(perms []types.IpPermission) []secgroup.RawPermission {
	var out []secgroup.RawPermission
	for _, p := range perms {
		rp := secgroup.RawPermission{
			IpProtocol: p.IpProtocol,
			FromPort:   p.FromPort,
			ToPort:     p.ToPort,
		}
		for _, r := range p.IpRanges {
			rp.IpRanges = append(rp.IpRanges, secgroup.RawIPRange{
				CidrIp:      aws.ToString(r.CidrIp),
				Description: aws.ToString(r.Description),
			})
		}
		for _, r := range p.Ipv6Ranges {
			rp.Ipv6Ranges = append(rp.Ipv6Ranges, secgroup.RawIPv6Range{
				CidrIpv6:    aws.ToString(r.CidrIpv6),
				Description: aws.ToString(r.Description),
			})
		}
		for _, pl := range p.PrefixListIds {
			rp.PrefixListIds = append(rp.PrefixListIds, secgroup.RawPrefixListID{
				PrefixListId: aws.ToString(pl.PrefixListId),
				Description:  aws.ToString(pl.Description),
			})
		}
		for _, g := range p.UserIdGroupPairs {
			rp.UserIdGroupPairs = append(rp.UserIdGroupPairs, secgroup.RawGroupPair{
				GroupId:                aws.ToString(g.GroupId),
				GroupName:              aws.ToString(g.GroupName),
				UserId:                 aws.ToString(g.UserId),
				VpcId:                  aws.ToString(g.VpcId),
				VpcPeeringConnectionId: aws.ToString(g.VpcPeeringConnectionId),
				PeeringStatus:          aws.ToString(g.PeeringStatus),
				Description:            aws.ToString(g.Description),
			})
		}
		out = append(out, rp)
	}
	return out
}
