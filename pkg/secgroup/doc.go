// Package secgroup normalizes raw security group records into typed rules and
// resolves the references between groups.
//
// The pipeline is: Parse each RawGroup, Add it to a Registry, then call
// Resolve once. After Resolve every group knows both the rules it owns
// (Ingress, Egress) and the rules of other groups that target it
// (IngressTo, EgressFrom), and the returned CidrSet lists every distinct
// address peer together with the groups referencing it.
package secgroup
