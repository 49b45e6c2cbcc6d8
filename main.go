// This code is released under the MIT License
// Copyright (c) 2020 Pix4D and the sgraph contributors.

package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
)

// Filled by the linker.
var fullVersion = "unknown" // example: v0.0.9-8-g941583d027-dirty

type args struct {
	Config     string `arg:"--config" help:"path of the configuration file [default: $XDG_CONFIG_HOME/sgraph/config.yaml]"`
	LogLevel   string `arg:"--log-level" help:"debug, info, warn or error (overrides the configuration)"`
	LogFormat  string `arg:"--log-format" help:"console or json (overrides the configuration)"`
	Output     string `arg:"-o,--output" help:"path of the file to write instead of stdout"`
	Format     string `arg:"--format" default:"dot" help:"output format: dot or json"`
	ShowUnused bool   `arg:"--show-unused" help:"also draw the groups without any peer"`

	Aws     *AwsCmd     `arg:"subcommand:aws" help:"graph the security groups of an AWS account"`
	File    *FileCmd    `arg:"subcommand:file" help:"graph the output of 'aws ec2 describe-security-groups'"`
	Tfstate *TfstateCmd `arg:"subcommand:tfstate" help:"graph the security groups of a Terraform state ('terraform show -json')"`
	Version *struct{}   `arg:"subcommand:version" help:"show version"`
}

func (args) Description() string {
	return "sgraph - draws the security groups of AWS VPCs and the traffic they allow\n"
}

type AwsCmd struct {
	Region   string   `arg:"--region" help:"AWS region [default: from the AWS configuration]"`
	Profile  string   `arg:"--profile" help:"AWS shared configuration profile"`
	Vpc      []string `arg:"--vpc,separate" help:"only fetch the groups of this VPC (repeatable)"`
	PageSize int32    `arg:"--page-size" help:"groups per request [default: from the configuration]"`
}

type FileCmd struct {
	Path string `arg:"positional,required" help:"path of the JSON file, or - for stdin"`
}

type TfstateCmd struct {
	Path string `arg:"positional,required" help:"path of the state, as written by 'terraform show -json'"`
}

func main() {
	os.Exit(Main())
}

func Main() int {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func run() error {
	var args args

	parser := arg.MustParse(&args)
	if parser.Subcommand() == nil {
		parser.Fail("missing subcommand")
	}
	if args.Format != formatDot && args.Format != formatJSON {
		parser.Fail(fmt.Sprintf("unknown format %q", args.Format))
	}

	if args.Version != nil {
		fmt.Println("sgraph", fullVersion)
		return nil
	}

	opts, err := newSettings(args)
	if err != nil {
		return err
	}

	switch {
	case args.Aws != nil:
		return doAws(*args.Aws, opts)
	case args.File != nil:
		return doFile(args.File.Path, opts)
	case args.Tfstate != nil:
		return doTfstate(args.Tfstate.Path, opts)
	default:
		return fmt.Errorf("unwired command: %s", parser.SubcommandNames()[0])
	}
}

// MakeErrorf returns a function that prefixes its error with prefix.
func MakeErrorf(prefix string) func(format string, a ...any) error {
	return func(format string, a ...any) error {
		return fmt.Errorf(prefix+": "+format, a...)
	}
}
