package graph

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pix4d/sgraph/pkg/secgroup"
)

// ErrAlreadyBuilt is returned when a Builder is used after Build.
var ErrAlreadyBuilt = errors.New("graph already built")

type Options struct {
	// NameTag is the tag holding the display name of a group.
	NameTag     string
	PaletteSize int
	Logger      *zerolog.Logger
}

// Builder accumulates raw records and turns them into a Model. A Builder runs
// the resolution exactly once; create a new one for every run.
type Builder struct {
	opts   Options
	logger zerolog.Logger
	reg    *secgroup.Registry
	built  bool
}

func NewBuilder(opts Options) *Builder {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Builder{opts: opts, logger: logger, reg: secgroup.NewRegistry()}
}

// Add parses raw and registers the resulting group. Its signature matches the
// callback of source.Source, so a Builder can consume a source directly.
func (b *Builder) Add(raw secgroup.RawGroup) error {
	if b.built {
		return ErrAlreadyBuilt
	}
	sg, err := secgroup.Parse(raw, secgroup.ParseOptions{NameTag: b.opts.NameTag})
	if err != nil {
		return fmt.Errorf("parsing security group: %w", err)
	}
	if _, dup := b.reg.Lookup(sg.Partition, sg.ID); dup {
		b.logger.Warn().Str("group", sg.ID).Str("partition", sg.Partition).
			Msg("duplicate security group, keeping the last record")
	}
	b.reg.Add(sg)
	return nil
}

// Registry exposes the groups added so far. After Build it holds the reverse
// rules too.
func (b *Builder) Registry() *secgroup.Registry {
	return b.reg
}

// Build resolves the references between the added groups and assembles the
// model. It can be called only once.
func (b *Builder) Build() (*Model, *secgroup.Report, error) {
	if b.built {
		return nil, nil, ErrAlreadyBuilt
	}
	b.built = true

	cidrs, report, err := secgroup.Resolve(b.reg, b.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving peers: %w", err)
	}
	m := Assemble(b.reg, cidrs, b.opts.PaletteSize)

	b.logger.Info().
		Int("groups", b.reg.Len()).
		Int("partitions", len(b.reg.Partitions())).
		Int("addresses", cidrs.Len()).
		Int("edges", len(m.Edges)).
		Int("unresolved", len(report.Unresolved)).
		Int("prefix_lists", report.PrefixListPeers).
		Msg("graph built")
	return m, report, nil
}
