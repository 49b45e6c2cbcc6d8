// Package source provides the data sources feeding raw security group
// records to the graph builder.
package source

import (
	"context"

	"github.com/pix4d/sgraph/pkg/secgroup"
)

// Source delivers raw records one at a time. Each stops at the first error
// returned by fn and returns it.
type Source interface {
	Each(ctx context.Context, fn func(secgroup.RawGroup) error) error
}

var (
	_ Source = (*EC2)(nil)
	_ Source = (*JSON)(nil)
	_ Source = (*Tfstate)(nil)
)
