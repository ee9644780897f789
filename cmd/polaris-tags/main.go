// Command polaris-tags reads audio file metadata.
//
//	polaris-tags [flags] read <file>...
//	polaris-tags [flags] scan <dir>
//	polaris-tags [flags] sniff <file>...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/SINHASantos/polaris/internal/config"
	"github.com/SINHASantos/polaris/internal/errmsg"
	"github.com/SINHASantos/polaris/internal/library"
	"github.com/SINHASantos/polaris/internal/tags"
)

// errNoMetadata marks a read where at least one file yielded no metadata.
var errNoMetadata = errors.New("some files have no metadata")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	reader  *tags.Reader
	out     *printer
	workers int
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("polaris-tags", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a config file")
	format := fs.String("format", "", `output format, "text" or "json"`)
	workers := fs.Int("workers", -1, "concurrent reads (0 = one per CPU)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: polaris-tags [flags] read <file>... | scan <dir> | sniff <file>...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, errmsg.Format(errmsg.OpLoadConfig, err))
		return 1
	}
	if *format != "" {
		cfg.Output.Format = *format
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(cfg.LogLevel())
	logger.SetFormatter(cfg.LogFormatter())

	a := &app{
		cfg:     cfg,
		log:     logger,
		reader:  tags.NewReader(logger),
		out:     newPrinter(stdout, cfg.OutputFormat(), cfg.ColorEnabled()),
		workers: cfg.GetScanConfig().Workers,
	}
	if *workers >= 0 {
		a.workers = *workers
	}

	cmd, operands := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "read":
		err = a.read(ctx, operands)
	case "scan":
		if len(operands) != 1 {
			fs.Usage()
			return 2
		}
		err = a.scan(ctx, operands[0])
	case "sniff":
		err = a.sniff(operands)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNoMetadata):
		return 1
	default:
		fmt.Fprintln(stderr, err)
		return 1
	}
}

func (a *app) read(ctx context.Context, paths []string) error {
	results, err := a.reader.ReadAll(ctx, paths, a.workers)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpReadMetadata, err))
	}

	entries := make([]library.Result, len(paths))
	missing := false
	for i, path := range paths {
		entries[i] = library.Result{Path: path, Metadata: results[i]}
		if results[i] == nil {
			missing = true
		}
	}
	if err := a.out.results("", entries); err != nil {
		return errors.New(errmsg.Format(errmsg.OpEncodeOutput, err))
	}
	if missing {
		return errNoMetadata
	}
	return nil
}

func (a *app) scan(ctx context.Context, root string) error {
	scanCfg := a.cfg.GetScanConfig()
	scanner := library.NewScanner(a.reader, a.workers, library.Options{
		Exclude:        scanCfg.Exclude,
		FollowSymlinks: scanCfg.FollowSymlinks,
	})

	a.log.WithField("root", root).Debug("Scanning directory")
	results, summary, err := scanner.Scan(ctx, root)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpScanDirectory, root, err))
	}
	if err := a.out.scan(root, results, summary); err != nil {
		return errors.New(errmsg.Format(errmsg.OpEncodeOutput, err))
	}
	return nil
}

func (a *app) sniff(paths []string) error {
	sniffed := make([]*tags.Sniffed, 0, len(paths))
	for _, path := range paths {
		s, err := tags.Sniff(path)
		if err != nil {
			a.log.WithField("path", path).Warn(errmsg.Format(errmsg.OpIdentifyFile, err))
			continue
		}
		sniffed = append(sniffed, s)
	}
	if err := a.out.sniffed(sniffed); err != nil {
		return errors.New(errmsg.Format(errmsg.OpEncodeOutput, err))
	}
	return nil
}
