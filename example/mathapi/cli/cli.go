// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package cli implements the mathapi command line.
package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	bedrockcfg "github.com/z5labs/bedrock/config"
	"github.com/z5labs/trellis"
	"github.com/z5labs/trellis/example/mathapi/app"
	"github.com/z5labs/trellis/internal/try"
	"github.com/z5labs/trellis/openapi"
	"github.com/z5labs/trellis/rest"
	"github.com/z5labs/trellis/route"
)

// NewRootCmd constructs the mathapi command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mathapi",
		Short:         "Serve and document the math api",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML), layered over the defaults")

	cmd.AddCommand(newServeCmd(), newSpecCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the math api over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs, err := configSources(cmd.Flags())
			if err != nil {
				return err
			}
			return rest.Run(cmd.Context(), bedrockcfg.MultiSource(srcs...), app.Init)
		},
	}
}

func newSpecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Print the OpenAPI document of the math api",
		Example: strings.TrimSpace(`  mathapi spec --format json --validate
  mathapi spec --out openapi.yaml`),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := specOptionsFrom(cmd.Flags())
			if err != nil {
				return err
			}

			srcs, err := configSources(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := trellis.ReadConfig[trellis.Config](srcs...)
			if err != nil {
				return err
			}

			doc, err := render(cfg, opts.format)
			if err != nil {
				return err
			}
			if opts.validate {
				err = openapi.ValidateDocument(cmd.Context(), doc)
				if err != nil {
					return fmt.Errorf("invalid openapi document: %w", err)
				}
			}

			if opts.out == "" {
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			}
			return writeFile(opts.out, doc)
		},
	}

	flags := cmd.Flags()
	flags.StringP("format", "f", "yaml", "Document format (yaml|json)")
	flags.Bool("validate", false, "Validate the document before printing it")
	flags.StringP("out", "o", "", "Write the document to a file instead of stdout")

	return cmd
}

type specOptions struct {
	format   string
	validate bool
	out      string
}

func specOptionsFrom(flags *pflag.FlagSet) (specOptions, error) {
	var opts specOptions
	var err error

	opts.format, err = flags.GetString("format")
	if err != nil {
		return opts, err
	}
	opts.format = strings.ToLower(strings.TrimSpace(opts.format))
	switch opts.format {
	case "yaml", "json":
	default:
		return opts, fmt.Errorf("unsupported --format %q (allowed: yaml, json)", opts.format)
	}

	opts.validate, err = flags.GetBool("validate")
	if err != nil {
		return opts, err
	}

	opts.out, err = flags.GetString("out")
	return opts, err
}

func configSources(flags *pflag.FlagSet) ([]bedrockcfg.Source, error) {
	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	srcs := []bedrockcfg.Source{trellis.DefaultConfig(), app.Config()}
	if path == "" {
		return srcs, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return append(srcs, trellis.ConfigSource(bytes.NewReader(b))), nil
}

func render(cfg trellis.Config, format string) ([]byte, error) {
	_, spec, err := route.Document(
		openapi.Info{
			Title:       cfg.OpenApi.Title,
			Version:     cfg.OpenApi.Version,
			Description: cfg.OpenApi.Description,
		},
		app.Services()...,
	)
	if err != nil {
		return nil, err
	}

	if format == "json" {
		return spec.MarshalJSON()
	}
	return spec.YAML()
}

func writeFile(path string, doc []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer try.Close(&err, f)

	_, err = f.Write(doc)
	return err
}
