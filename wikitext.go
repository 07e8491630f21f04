// MIT License

// Copyright (c) 2018 Akhil Indurti

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// This CLI utility parses wikitext and prints its syntax tree, or converts
// it to HTML.
//
// Usage:
//   wikitext [command]
//
// Available Commands:
//   help        Help about any command
//   html        HTML output generator for wikitext source files
//   parse       Print the syntax tree of a wikitext source file
//
// Flags:
//       --category-ns   names of the category namespace
//       --config        configuration file (.yaml, .yml or .toml)
//       --file-ns       names of the file namespace
//   -h, --help          help for wikitext
//       --link-trail    characters absorbed into the text of a link
//       --log-level     one of debug, info, warn, error
//   -t, --timeout       timeout used to halt parsing
//
// Use "wikitext [command] --help" for more information about a command.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"akhil.cc/wikitext/ast"
	"akhil.cc/wikitext/config"
	"akhil.cc/wikitext/gen/html"
	"akhil.cc/wikitext/internal/logging"
	"akhil.cc/wikitext/internal/pretty"
	"akhil.cc/wikitext/parser"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func prefix(msg string, err error) error {
	return errors.New(msg + err.Error())
}

// options holds the flags shared by all commands.
type options struct {
	configPath string
	categoryNS string
	fileNS     string
	linkTrail  string
	timeout    time.Duration
	logLevel   string
	output     string
	format     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	rootCmd := &cobra.Command{
		Use:   "wikitext",
		Short: "parse wikitext source files",
		Long: `This CLI utility parses wikitext source files. Links, templates and
template parameters are recognized; everything else is kept as text.`,
		SilenceUsage: true,
	}
	flags := rootCmd.PersistentFlags()
	// pflag includes the argument type when it unquotes its usage.
	// To prevent this behavior we prefix the usage with backquotes ``.
	flags.StringVar(&opts.configPath, "config", "", "``configuration file (.yaml, .yml or .toml)")
	flags.StringVar(&opts.categoryNS, "category-ns", "", "``names of the category namespace, split like shell words")
	flags.StringVar(&opts.fileNS, "file-ns", "", "``names of the file namespace, split like shell words")
	flags.StringVar(&opts.linkTrail, "link-trail", "", "``characters absorbed into the text of a link")
	flags.DurationVarP(&opts.timeout, "timeout", "t", -1, "``timeout used to halt parsing")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "``one of debug, info, warn, error")
	// Set string version of default value to be zero-value to prevent it from being printed by FlagUsages.
	flags.Lookup("timeout").DefValue = "0"

	parseCmd := &cobra.Command{
		Use:   "parse [input] [-o output] [-f format]",
		Short: "Print the syntax tree of a wikitext source file",
		Long: `This command parses a wikitext source file and prints its syntax tree.
The litter format is a Go-like dump of the tree; the json format tags every
node with its type. Warnings are printed to standard error.

If no input file is specified, input is read from
standard input. Similarly, if no output argument is
specified, output is written to standard output.`,
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &opts, "(parse) ", func(w io.Writer, f *ast.File) error {
				switch opts.format {
				case "litter":
					lit := litter.Options{HidePrivateFields: true}
					_, err := io.WriteString(w, lit.Sdump(f)+"\n")
					return err
				case "json":
					return writeJSON(w, f)
				}
				return fmt.Errorf("unknown format %q", opts.format)
			})
		},
	}
	parseCmd.Flags().StringVarP(&opts.format, "format", "f", "litter", "``output format, litter or json")
	addOutputFlag(parseCmd.Flags(), &opts)

	htmlCmd := &cobra.Command{
		Use:   "html [input] [-o output]",
		Short: "HTML output generator for wikitext source files",
		Long: `This command parses a wikitext source file and converts it to HTML.
Text is escaped. Links become anchors, templates and parameters become
spans carrying their names, and categories are listed at the end.

If no input file is specified, input is read from
standard input. Similarly, if no output argument is
specified, output is written to standard output.`,
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &opts, "(HTML) ", func(w io.Writer, f *ast.File) error {
				g := html.GenContext(cmd.Context(), f)
				g.Stdout = w
				return g.Run()
			})
		},
	}
	addOutputFlag(htmlCmd.Flags(), &opts)

	for _, c := range []*cobra.Command{parseCmd, htmlCmd} {
		msg := "(parse) "
		if c == htmlCmd {
			msg = "(HTML) "
		}
		c.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
			if err != nil {
				return prefix(msg, err)
			}
			return nil
		})
	}
	rootCmd.AddCommand(parseCmd, htmlCmd)
	return rootCmd
}

func addOutputFlag(flags *pflag.FlagSet, opts *options) {
	flags.StringVarP(&opts.output, "output", "o", "", "``name of the output file")
}

// run reads the input, parses it, prints its warnings and hands the file
// to emit.
func run(cmd *cobra.Command, args []string, opts *options, msg string, emit func(io.Writer, *ast.File) error) error {
	logger := logging.New(opts.logLevel)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > -1 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	ctx = logging.WithLogger(ctx, logger)
	cmd.SetContext(ctx)

	cfg, err := loadConfiguration(cmd.Flags(), opts)
	if err != nil {
		return prefix(msg, err)
	}
	logger.Debug("configuration loaded", logging.FieldConfig, opts.configPath)
	name := "<stdin>"
	src := io.Reader(os.Stdin)
	if len(args) != 0 {
		name = args[0]
		file, err := os.Open(name)
		if err != nil {
			return prefix(msg, err)
		}
		defer file.Close()
		src = file
	}
	text, err := io.ReadAll(src)
	if err != nil {
		return prefix(msg, err)
	}
	logger.Info("parsing", logging.FieldInput, name, logging.FieldBytes, len(text))
	f, err := parser.ParseContext(ctx, cfg, string(text))
	if err != nil {
		return prefix(msg, err)
	}
	styles := pretty.NewStyles(os.Stderr, pretty.ColorEnabled(os.Stderr))
	if err := styles.PrintWarnings(os.Stderr, name, f); err != nil {
		return prefix(msg, err)
	}

	out := io.Writer(os.Stdout)
	if len(opts.output) != 0 {
		file, err := os.Create(opts.output)
		if err != nil {
			return prefix(msg, err)
		}
		defer file.Close()
		out = file
	}
	if err := emit(out, f); err != nil {
		return prefix(msg, err)
	}
	logger.Info("done", logging.FieldOutput, opts.output, logging.FieldNodes, len(f.Nodes), logging.FieldWarnings, len(f.Warnings))
	return nil
}

// loadConfiguration applies, in increasing precedence, the defaults, the
// configuration file, the environment and the command line.
func loadConfiguration(flags *pflag.FlagSet, opts *options) (*config.Configuration, error) {
	src := config.Default()
	if opts.configPath != "" {
		var err error
		if src, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	src, err := config.FromEnv(src, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if flags.Changed("category-ns") {
		if src.CategoryNamespaces, err = config.SplitList(opts.categoryNS); err != nil {
			return nil, fmt.Errorf("--category-ns: %w", err)
		}
	}
	if flags.Changed("file-ns") {
		if src.FileNamespaces, err = config.SplitList(opts.fileNS); err != nil {
			return nil, fmt.Errorf("--file-ns: %w", err)
		}
	}
	if flags.Changed("link-trail") {
		src.LinkTrail = config.Trail(opts.linkTrail)
	}
	return src.Configuration()
}
