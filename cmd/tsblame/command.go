package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/nooga/tsblame/pkg/blame"
	"github.com/nooga/tsblame/pkg/config"
	"github.com/nooga/tsblame/pkg/contract"
	tserr "github.com/nooga/tsblame/pkg/errors"
	"github.com/nooga/tsblame/pkg/report"
	"github.com/nooga/tsblame/pkg/source"
	"github.com/nooga/tsblame/pkg/types"
	"github.com/nooga/tsblame/pkg/typexpr"
	"github.com/nooga/tsblame/pkg/values"
)

var errBlamed = errors.New("contract violations found")

type service struct {
	fs     afs.Service
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) error {
	options := newOptions()
	parser := flags.NewParser(options, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
			return nil
		}
		return err
	}
	s := &service{fs: afs.New(), stdout: stdout, stderr: stderr}
	ctx := context.Background()
	if parser.Active == nil {
		return nil
	}
	switch parser.Active.Name {
	case "check":
		return s.check(ctx, options.Check)
	case "dump":
		return s.dump(ctx, options.Dump)
	case "log":
		return s.log(ctx, options.Log)
	}
	return errors.Errorf("unsupported command %v", parser.Active.Name)
}

func (s *service) check(ctx context.Context, opts *Check) error {
	cfg, err := loadConfig(ctx, opts.ConfigURL)
	if err != nil {
		return err
	}
	if opts.Record != "" {
		cfg.RecordPath = opts.Record
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Apply(); err != nil {
		return err
	}
	logger := cfg.Logger(s.stderr)

	decls, err := s.declarations(ctx, opts.Decls, true)
	if err != nil {
		return err
	}
	ty, err := lookup(decls, opts.Type)
	if err != nil {
		return err
	}
	doc, err := s.document(ctx, opts.Input)
	if err != nil {
		return err
	}

	rec := &blame.Recorder{}
	reporters := []blame.Reporter{rec, blame.NewSeverityReporter(logger)}
	if cfg.RecordPath != "" {
		store, err := report.Open(cfg.RecordPath, cfg.Namespace)
		if err != nil {
			return err
		}
		defer store.Close()
		reporters = append(reporters, store)
	}
	engine := contract.New(contract.WithReporter(blame.Tee(reporters...)), contract.WithLogger(logger))
	defer engine.Release()

	wrapped, err := engine.SimpleWrap(values.FromGo(doc), ty)
	if err == nil {
		err = values.Walk(wrapped, func(path string, v values.Value) error {
			logger.Debug("visited", "path", path, "type", v.TypeName())
			return nil
		})
	}
	for _, r := range rec.Reports {
		fmt.Fprintln(s.stdout, r.String())
	}
	if err != nil {
		return err
	}
	if len(rec.Reports) > 0 {
		return errors.Wrapf(errBlamed, "%v: %d report(s) for %v", opts.Input, len(rec.Reports), opts.Type)
	}
	fmt.Fprintf(s.stdout, "%v: ok\n", opts.Input)
	return nil
}

type dumpEntry struct {
	Section string
	Name    string
	Kind    string
	Type    string
}

func (s *service) dump(ctx context.Context, opts *Dump) error {
	decls, err := s.declarations(ctx, opts.Decls, opts.Verify)
	if err != nil {
		return err
	}
	var entries []dumpEntry
	add := func(section, name string, t types.Type) {
		entries = append(entries, dumpEntry{Section: section, Name: name, Kind: t.Kind().String(), Type: t.String()})
	}
	for _, name := range decls.Names {
		t, _ := decls.Lookup(name)
		add("type", name, t)
	}
	for _, g := range decls.Globals {
		add("global", g.Name, g.Type)
	}
	for _, m := range decls.Modules {
		add("module", m.Name, m.Type)
	}
	if decls.Exports != nil {
		add("exports", "module.exports", decls.Exports)
	}
	if opts.Verbose {
		_, err = pretty.Fprintf(s.stdout, "%# v\n", entries)
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(s.stdout, "%s %s = %s\n", e.Section, e.Name, e.Type)
	}
	return nil
}

func (s *service) log(ctx context.Context, opts *Log) error {
	cfg, err := loadConfig(ctx, opts.ConfigURL)
	if err != nil {
		return err
	}
	if opts.Record != "" {
		cfg.RecordPath = opts.Record
	}
	if opts.Namespace != "" {
		cfg.Namespace = opts.Namespace
	}
	if cfg.RecordPath == "" {
		return &tserr.ConfigError{Msg: "no report store, use --record or " + config.EnvRecord}
	}
	store, err := report.Open(cfg.RecordPath, cfg.Namespace)
	if err != nil {
		return err
	}
	defer store.Close()
	entries, err := store.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(s.stdout, "%d\t%s\t%s\n", e.Seq, e.Time.Format(time.RFC3339), e.String())
	}
	if opts.Clear {
		return store.Clear()
	}
	return nil
}

func loadConfig(ctx context.Context, URL string) (*config.Config, error) {
	if URL == "" {
		return config.New(), nil
	}
	return config.NewConfigFromURL(ctx, URL)
}

func (s *service) declarations(ctx context.Context, URL string, verify bool) (*typexpr.Declarations, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download declarations %v", URL)
	}
	decls, err := typexpr.Evaluate(source.FromURL(URL, string(data)), typexpr.Options{Verify: verify})
	if err != nil {
		var syntaxErr *tserr.SyntaxError
		if errors.As(err, &syntaxErr) {
			tserr.DisplayErrors(s.stderr, []*tserr.SyntaxError{syntaxErr})
		}
		return nil, err
	}
	return decls, nil
}

// lookup finds name among registered types, then globals, then modules.
func lookup(decls *typexpr.Declarations, name string) (types.Type, error) {
	if t, ok := decls.Lookup(name); ok {
		return t, nil
	}
	for _, g := range decls.Globals {
		if g.Name == name {
			return g.Type, nil
		}
	}
	if t, ok := decls.Module(name); ok {
		return t, nil
	}
	if name == "module.exports" && decls.Exports != nil {
		return decls.Exports, nil
	}
	return nil, errors.Errorf("type %v is not declared", name)
}

func (s *service) document(ctx context.Context, URL string) (interface{}, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download document %v", URL)
	}
	var doc interface{}
	if strings.HasSuffix(URL, "yaml") || strings.HasSuffix(URL, "yml") {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "malformed document %v", URL)
	}
	return doc, nil
}
