// Command flowback-probe describes one field report: header position,
// preamble metadata, label mapping and date/time layouts. With -json it
// prints a config fragment to paste into the run config.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"flowback/internal/config"
	"flowback/internal/parser"
	"flowback/internal/probe"
	"flowback/internal/schema"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("flowback-probe", flag.ContinueOnError)
	var (
		cfgPath  = fs.String("config", "", "optional run config; supplies synonyms, layouts and parser options")
		asJSON   = fs.Bool("json", false, "print a JSON config fragment instead of CSV lines")
		noUnits  = fs.Bool("no-units-row", false, "do not drop the first data row")
		lookahead = fs.Int("lookahead", 0, "metadata lookahead (default from config, else 10)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: flowback-probe [flags] <report file>")
	}

	cfg := config.ApplyDefaults(config.Config{})
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return err
		}
	}
	opt := parser.OptionsFrom(cfg.Parser.Options, !*noUnits)
	if *noUnits {
		opt.SkipUnitsRow = false
	}
	if *lookahead > 0 {
		opt.Lookahead = *lookahead
	}

	syn, err := schema.NewSynonyms(cfg.Schema.Columns, cfg.Synonyms())
	if err != nil {
		return fmt.Errorf("synonyms: %w", err)
	}

	res, err := probe.Probe(ctx, probe.Options{
		Path:        fs.Arg(0),
		Parser:      opt,
		Synonyms:    syn,
		DateLayouts: cfg.Merge.DateLayouts,
		TimeLayouts: cfg.Merge.TimeLayouts,
		OutputJSON:  *asJSON,
	})
	if err != nil {
		return err
	}
	if !*asJSON {
		fmt.Fprintf(out, "# %s rows=%d dropped_width=%d well=%q uwi=%q formation=%q\n",
			res.Source, res.Rows, res.DroppedRows,
			res.Metadata.WellName, res.Metadata.WellID, res.Metadata.Formation)
	}
	_, err = out.Write(res.Body)
	return err
}
