package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/scylladb/go-set/strset"

	"github.com/pix4d/sgraph/pkg/config"
	"github.com/pix4d/sgraph/pkg/dot"
	"github.com/pix4d/sgraph/pkg/graph"
	"github.com/pix4d/sgraph/pkg/logging"
	"github.com/pix4d/sgraph/pkg/source"
)

const (
	formatDot  = "dot"
	formatJSON = "json"
)

// settings is the configuration file merged with the command line.
type settings struct {
	cfg    config.Config
	logger zerolog.Logger
	output string
	format string
	dot    dot.Options
}

func newSettings(args args) (settings, error) {
	cfg, err := config.Load(args.Config)
	if err != nil {
		return settings{}, err
	}
	if args.LogLevel != "" {
		cfg.LogLevel = args.LogLevel
	}
	if args.LogFormat != "" {
		cfg.LogFormat = args.LogFormat
	}
	if args.ShowUnused {
		cfg.ShowUnused = true
	}

	var logger zerolog.Logger
	switch cfg.LogFormat {
	case config.LogConsole:
		logger = logging.NewLogger(cfg.LogLevel, os.Stderr)
	case config.LogJSON:
		logger = logging.NewJSONLogger(cfg.LogLevel, os.Stderr)
	default:
		return settings{}, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}

	return settings{
		cfg:    cfg,
		logger: logger,
		output: args.Output,
		format: args.Format,
		dot: dot.Options{
			FontName:   cfg.FontName,
			FontSize:   cfg.FontSize,
			ShowUnused: cfg.ShowUnused,
		},
	}, nil
}

func doAws(cmd AwsCmd, opts settings) error {
	errorf := MakeErrorf("aws")
	ctx := context.Background()

	region := cmd.Region
	if region == "" {
		region = opts.cfg.AWS.Region
	}
	profile := cmd.Profile
	if profile == "" {
		profile = opts.cfg.AWS.Profile
	}
	if err := config.CheckPageSize(cmd.PageSize); err != nil {
		return errorf("--page-size %s", err)
	}
	pageSize := cmd.PageSize
	if pageSize == 0 {
		pageSize = opts.cfg.AWS.PageSize
	}
	vpcs := strset.New(opts.cfg.VPCs...)
	if len(cmd.Vpc) > 0 {
		vpcs = strset.New(cmd.Vpc...)
	}

	client, err := source.NewEC2Client(ctx, region, profile)
	if err != nil {
		return errorf("%s", err)
	}
	src := source.NewEC2(client, source.EC2Options{
		PageSize: pageSize,
		VPCs:     vpcs,
		Logger:   opts.logger,
	})

	if err := diagram(ctx, src, opts); err != nil {
		return errorf("%s", err)
	}
	return nil
}

func doFile(path string, opts settings) error {
	errorf := MakeErrorf("file")

	var rd io.Reader = os.Stdin
	if path != "-" {
		fi, err := os.Open(path)
		if err != nil {
			return errorf("opening the security groups file: %s", err)
		}
		defer fi.Close()
		rd = fi
	}

	if err := diagram(context.Background(), source.NewJSON(rd), opts); err != nil {
		return errorf("%s", err)
	}
	return nil
}

func doTfstate(statePath string, opts settings) error {
	errorf := MakeErrorf("tfstate")

	fi, err := os.Open(statePath)
	if err != nil {
		return errorf("opening the state file: %s", err)
	}
	defer fi.Close()

	src := source.NewTfstate(fi, opts.logger)
	if err := diagram(context.Background(), src, opts); err != nil {
		return errorf("%s", err)
	}
	return nil
}

// diagram feeds src to a graph builder and writes the resulting model.
func diagram(ctx context.Context, src source.Source, opts settings) error {
	builder := graph.NewBuilder(graph.Options{
		NameTag:     opts.cfg.NameTag,
		PaletteSize: opts.cfg.PaletteSize,
		Logger:      &opts.logger,
	})
	if err := src.Each(ctx, builder.Add); err != nil {
		return err
	}

	model, report, err := builder.Build()
	if err != nil {
		return err
	}
	for _, u := range report.Unresolved {
		opts.logger.Warn().
			Str("group", u.Rule.OwnerID).
			Str("peer", u.Rule.Peer).
			Str("peer_partition", u.Rule.PeerPartition).
			Str("reason", string(u.Reason)).
			Msg("peer not drawn")
	}

	// Created last: a failed run leaves an existing output untouched.
	var out io.Writer = os.Stdout
	if opts.output != "" {
		fi, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("creating the output file: %s", err)
		}
		defer fi.Close()
		out = fi
	}

	if err := render(ctx, out, model, opts); err != nil {
		return fmt.Errorf("writing the %s output: %s", opts.format, err)
	}
	if fi, ok := out.(*os.File); ok && opts.output != "" {
		if err := fi.Close(); err != nil {
			return fmt.Errorf("closing the output file: %s", err)
		}
	}
	return nil
}

func render(ctx context.Context, w io.Writer, model *graph.Model, opts settings) error {
	if opts.format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(model)
	}
	return dot.Write(ctx, w, model, opts.dot)
}
