package graph

import (
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"github.com/pix4d/sgraph/pkg/secgroup"
)

func strp(s string) *string { return &s }

func portp(n int32) *int32 { return &n }

func perm(proto string, low, high int32) secgroup.RawPermission {
	return secgroup.RawPermission{IpProtocol: strp(proto), FromPort: portp(low), ToPort: portp(high)}
}

func fromGroup(p secgroup.RawPermission, groupID string) secgroup.RawPermission {
	p.UserIdGroupPairs = append(p.UserIdGroupPairs, secgroup.RawGroupPair{GroupId: groupID})
	return p
}

func fromCidr(p secgroup.RawPermission, cidr string) secgroup.RawPermission {
	p.IpRanges = append(p.IpRanges, secgroup.RawIPRange{CidrIp: cidr})
	return p
}

func build(t *testing.T, opts Options, raws ...secgroup.RawGroup) (*Model, *secgroup.Report) {
	t.Helper()
	b := NewBuilder(opts)
	for _, raw := range raws {
		qt.Assert(t, qt.IsNil(b.Add(raw)))
	}
	m, report, err := b.Build()
	qt.Assert(t, qt.IsNil(err))
	return m, report
}

func TestTwoGroupsOneEdge(t *testing.T) {
	m, _ := build(t, Options{},
		secgroup.RawGroup{GroupId: "sg-a", VpcId: "vpc-1", GroupName: "a",
			IpPermissions: []secgroup.RawPermission{fromGroup(perm("tcp", 443, 443), "sg-b")}},
		secgroup.RawGroup{GroupId: "sg-b", VpcId: "vpc-1", GroupName: "b"},
	)

	want := []Edge{{From: "vpc-1/sg-b", To: "vpc-1/sg-a", Label: "TCP: 443", Direction: secgroup.Ingress, Index: 0}}
	if diff := cmp.Diff(want, m.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +have):\n%s", diff)
	}

	vpc := m.Subgraph("cluster_vpc-1")
	qt.Assert(t, qt.IsNotNil(vpc))
	wantNodes := []Node{
		{ID: "vpc-1/sg-a", Label: "a (sg-a)", Kind: KindGroup, Shape: ShapeBox, Index: 0},
		{ID: "vpc-1/sg-b", Label: "b (sg-b)", Kind: KindGroup, Shape: ShapeBox, Index: 1},
	}
	if diff := cmp.Diff(wantNodes, vpc.Nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +have):\n%s", diff)
	}
	qt.Check(t, qt.HasLen(m.Subgraph(UnusedName).Nodes, 0))
}

func TestSharedAddressIsOneNode(t *testing.T) {
	m, _ := build(t, Options{},
		secgroup.RawGroup{GroupId: "sg-a", VpcId: "vpc-1",
			IpPermissions: []secgroup.RawPermission{fromCidr(perm("tcp", 22, 22), "10.0.0.5/32")}},
		secgroup.RawGroup{GroupId: "sg-b", VpcId: "vpc-2",
			IpPermissions: []secgroup.RawPermission{fromCidr(perm("tcp", 80, 80), "10.0.0.5/32")}},
	)

	external := m.Subgraph(ExternalName)
	qt.Assert(t, qt.HasLen(external.Nodes, 1))
	qt.Check(t, qt.DeepEquals(external.Nodes[0],
		Node{
			ID: "10.0.0.5", Label: "10.0.0.5", Kind: KindAddress, Shape: ShapeOctagon, Index: 2,
			ReferencedBy: []string{"vpc-1/sg-a", "vpc-2/sg-b"},
		}))

	want := []Edge{
		{From: "10.0.0.5", To: "vpc-1/sg-a", Label: "TCP: 22", Direction: secgroup.Ingress, Index: 0},
		{From: "10.0.0.5", To: "vpc-2/sg-b", Label: "TCP: 80", Direction: secgroup.Ingress, Index: 1},
	}
	if diff := cmp.Diff(want, m.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +have):\n%s", diff)
	}
}

func TestUnresolvedPeerHasNoNodeNorEdge(t *testing.T) {
	m, report := build(t, Options{},
		secgroup.RawGroup{GroupId: "sg-a", VpcId: "vpc-1",
			IpPermissions: []secgroup.RawPermission{fromGroup(perm("tcp", 22, 22), "sg-elsewhere")}},
	)

	qt.Check(t, qt.HasLen(m.Nodes(), 1))
	qt.Check(t, qt.HasLen(m.Edges, 0))
	qt.Check(t, qt.HasLen(report.Unresolved, 1))
	// The group still references a peer, so it is not unused.
	qt.Check(t, qt.HasLen(m.Subgraph("cluster_vpc-1").Nodes, 1))
}

func TestUnusedGroups(t *testing.T) {
	m, _ := build(t, Options{},
		secgroup.RawGroup{GroupId: "sg-lonely", VpcId: "vpc-1", GroupName: "lonely"},
		secgroup.RawGroup{GroupId: "sg-a", VpcId: "vpc-1",
			IpPermissions: []secgroup.RawPermission{fromCidr(perm("tcp", 22, 22), "0.0.0.0/0")}},
	)

	unused := m.Subgraph(UnusedName)
	qt.Assert(t, qt.HasLen(unused.Nodes, 1))
	qt.Check(t, qt.Equals(unused.Nodes[0].ID, "vpc-1/sg-lonely"))

	vpc := m.Subgraph("cluster_vpc-1")
	qt.Assert(t, qt.HasLen(vpc.Nodes, 1))
	qt.Check(t, qt.Equals(vpc.Nodes[0].ID, "vpc-1/sg-a"))
}

func TestEgressEdgesPointAway(t *testing.T) {
	m, _ := build(t, Options{},
		secgroup.RawGroup{GroupId: "sg-app", VpcId: "vpc-1",
			IpPermissionsEgress: []secgroup.RawPermission{
				fromGroup(perm("tcp", 5432, 5432), "sg-db"),
				fromCidr(secgroup.RawPermission{IpProtocol: strp("-1")}, "0.0.0.0/0"),
			}},
		secgroup.RawGroup{GroupId: "sg-db", VpcId: "vpc-1"},
	)

	want := []Edge{
		{From: "vpc-1/sg-app", To: "vpc-1/sg-db", Label: "TCP: 5432", Direction: secgroup.Egress, Index: 0},
		{From: "vpc-1/sg-app", To: "0.0.0.0/0", Label: "all: all", Direction: secgroup.Egress, Index: 0},
	}
	if diff := cmp.Diff(want, m.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +have):\n%s", diff)
	}
}

func TestSameGroupIDInTwoPartitions(t *testing.T) {
	m, _ := build(t, Options{},
		secgroup.RawGroup{GroupId: "sg-x", VpcId: "vpc-1",
			IpPermissions: []secgroup.RawPermission{fromGroup(perm("tcp", 22, 22), "sg-y")}},
		secgroup.RawGroup{GroupId: "sg-y", VpcId: "vpc-1"},
		secgroup.RawGroup{GroupId: "sg-x", VpcId: "vpc-2",
			IpPermissions: []secgroup.RawPermission{fromCidr(perm("tcp", 80, 80), "10.0.0.5/32")}},
	)

	var ids []string
	for _, n := range m.Nodes() {
		ids = append(ids, n.ID)
	}
	qt.Check(t, qt.DeepEquals(ids, []string{"vpc-1/sg-x", "vpc-1/sg-y", "vpc-2/sg-x", "10.0.0.5"}))

	want := []Edge{
		{From: "vpc-1/sg-y", To: "vpc-1/sg-x", Label: "TCP: 22", Direction: secgroup.Ingress, Index: 0},
		{From: "10.0.0.5", To: "vpc-2/sg-x", Label: "TCP: 80", Direction: secgroup.Ingress, Index: 2},
	}
	if diff := cmp.Diff(want, m.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +have):\n%s", diff)
	}
}

func TestEdgesStayOutOfSubgraphs(t *testing.T) {
	m, _ := build(t, Options{},
		secgroup.RawGroup{GroupId: "sg-a", VpcId: "vpc-1",
			IpPermissions: []secgroup.RawPermission{fromCidr(perm("tcp", 22, 22), "10.0.0.5/32")}},
		secgroup.RawGroup{GroupId: "sg-b", VpcId: "vpc-2",
			IpPermissionsEgress: []secgroup.RawPermission{{
				IpProtocol:       strp("tcp"),
				FromPort:         portp(22),
				ToPort:           portp(22),
				UserIdGroupPairs: []secgroup.RawGroupPair{{GroupId: "sg-a", VpcId: "vpc-1"}},
			}}},
	)

	// Each node lives in exactly one subgraph.
	seen := map[string]string{}
	for _, sub := range m.Subgraphs {
		for _, n := range sub.Nodes {
			prev, dup := seen[n.ID]
			qt.Check(t, qt.IsFalse(dup), qt.Commentf("%s in %s and %s", n.ID, prev, sub.Name))
			seen[n.ID] = sub.Name
		}
	}
	qt.Check(t, qt.DeepEquals(seen, map[string]string{
		"vpc-1/sg-a": "cluster_vpc-1",
		"vpc-2/sg-b": "cluster_vpc-2",
		"10.0.0.5":   ExternalName,
	}))
	want := []Edge{
		{From: "10.0.0.5", To: "vpc-1/sg-a", Label: "TCP: 22", Direction: secgroup.Ingress, Index: 0},
		{From: "vpc-2/sg-b", To: "vpc-1/sg-a", Label: "TCP: 22", Direction: secgroup.Egress, Index: 1},
	}
	if diff := cmp.Diff(want, m.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +have):\n%s", diff)
	}
}

func TestGroupNodeID(t *testing.T) {
	qt.Check(t, qt.Equals(GroupNodeID("vpc-1", "sg-a"), "vpc-1/sg-a"))
	qt.Check(t, qt.Equals(GroupNodeID("", "sg-a"), "none/sg-a"))
	qt.Check(t, qt.Equals(PartitionName(""), "cluster_none"))
}

func TestPartitionsAndSubgraphOrder(t *testing.T) {
	m, _ := build(t, Options{},
		secgroup.RawGroup{GroupId: "sg-1", VpcId: "vpc-b"},
		secgroup.RawGroup{GroupId: "sg-2", VpcId: "vpc-a"},
		secgroup.RawGroup{GroupId: "sg-3"},
	)

	var names []string
	for _, sub := range m.Subgraphs {
		names = append(names, sub.Name)
	}
	want := []string{"cluster_vpc-b", "cluster_vpc-a", "cluster_none", ExternalName, UnusedName}
	qt.Check(t, qt.DeepEquals(names, want))
}

func TestIndexWrapsAroundPalette(t *testing.T) {
	var raws []secgroup.RawGroup
	for _, id := range []string{"sg-1", "sg-2", "sg-3", "sg-4", "sg-5"} {
		raws = append(raws, secgroup.RawGroup{GroupId: id, VpcId: "vpc-1"})
	}
	m, _ := build(t, Options{PaletteSize: 3}, raws...)

	var have []int
	for _, n := range m.Nodes() {
		have = append(have, n.Index)
	}
	qt.Check(t, qt.DeepEquals(have, []int{0, 1, 2, 0, 1}))
	qt.Check(t, qt.Equals(m.PaletteSize, 3))
}

func TestDeterministic(t *testing.T) {
	raws := []secgroup.RawGroup{
		{GroupId: "sg-a", VpcId: "vpc-1", IpPermissions: []secgroup.RawPermission{
			fromCidr(fromCidr(perm("tcp", 22, 22), "10.0.0.0/8"), "192.0.2.1/32"),
			fromGroup(perm("tcp", 1024, 65535), "sg-b"),
		}},
		{GroupId: "sg-b", VpcId: "vpc-2", IpPermissions: []secgroup.RawPermission{
			fromCidr(perm("udp", 53, 53), "10.0.0.0/8"),
		}},
		{GroupId: "sg-c", VpcId: "vpc-1"},
	}

	first, _ := build(t, Options{}, raws...)
	second, _ := build(t, Options{}, raws...)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two runs differ (-first +second):\n%s", diff)
	}
}

func TestBuilderRunsOnce(t *testing.T) {
	b := NewBuilder(Options{})
	qt.Assert(t, qt.IsNil(b.Add(secgroup.RawGroup{GroupId: "sg-a"})))

	_, _, err := b.Build()
	qt.Assert(t, qt.IsNil(err))

	_, _, err = b.Build()
	qt.Check(t, qt.ErrorIs(err, ErrAlreadyBuilt))
	qt.Check(t, qt.ErrorIs(b.Add(secgroup.RawGroup{GroupId: "sg-b"}), ErrAlreadyBuilt))
}

func TestBuilderMalformedRecord(t *testing.T) {
	b := NewBuilder(Options{})
	err := b.Add(secgroup.RawGroup{
		GroupId:       "sg-a",
		IpPermissions: []secgroup.RawPermission{{FromPort: portp(22)}},
	})
	qt.Check(t, qt.ErrorIs(err, secgroup.ErrMalformedRecord))
	qt.Check(t, qt.Equals(b.Registry().Len(), 0))
}
