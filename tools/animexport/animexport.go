package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm/export"
	"github.com/mogaika/skelanim/config"
	"github.com/mogaika/skelanim/fixture"
	"github.com/mogaika/skelanim/morph"
	"github.com/mogaika/skelanim/sink"
	"github.com/mogaika/skelanim/utils"
)

// run exports every sequence of the fixture into out (.glb, .gltf or .yaml).
// Morph targets go to morphOut as YAML, or into out when morphOut is empty.
func run(ctx context.Context, fixturePath, out, morphOut string, cfg config.Config, l *log.Logger) (*export.Report, error) {
	f, err := fixture.Load(fixturePath)
	if err != nil {
		return nil, err
	}
	skel, err := f.ReferencePose()
	if err != nil {
		return nil, err
	}
	seqs, err := f.ExportSequences()
	if err != nil {
		return nil, err
	}

	opts := cfg.ExportOptions(l)
	e := &export.Exporter{Skeleton: skel, Options: opts, Workers: cfg.Workers}

	fout, err := os.Create(out)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't create output")
	}
	defer fout.Close()

	var s export.Sink
	var finish func() error
	switch ext := strings.ToLower(filepath.Ext(out)); ext {
	case ".glb", ".gltf":
		g := sink.NewGLTF(skel, opts.Converter, opts.ASCIINames)
		s, finish = g, func() error { return g.Encode(fout, ext == ".glb") }
	case ".yaml", ".yml":
		y := sink.NewYAML(fout)
		s, finish = y, y.Close
	default:
		return nil, errors.Errorf("Unknown output format %q", ext)
	}

	report, err := e.ExportSequences(ctx, seqs, s)
	if err != nil {
		return report, err
	}
	if buf, targets := f.MorphBuffers(); buf != nil {
		if err := exportMorph(ctx, e, buf, targets, s, morphOut, report); err != nil {
			return report, err
		}
	}
	if err := finish(); err != nil {
		return report, errors.Wrapf(err, "Can't write %q", out)
	}
	return report, fout.Close()
}

func exportMorph(ctx context.Context, e *export.Exporter, buf *morph.Buffers, targets []*morph.Target,
	s export.Sink, morphOut string, report *export.Report) error {
	if morphOut != "" {
		fout, err := os.Create(morphOut)
		if err != nil {
			return errors.Wrapf(err, "Can't create morph output")
		}
		defer fout.Close()
		y := sink.NewYAML(fout)
		defer y.Close()
		s = y
	}
	mreport, err := e.ExportMorphTargets(ctx, buf, targets, s)
	if err != nil {
		return err
	}
	report.Written = append(report.Written, mreport.Written...)
	report.Failures = append(report.Failures, mreport.Failures...)
	return nil
}

func main() {
	var fixturePath, configPath, out, morphOut string
	flag.StringVar(&fixturePath, "fixture", "", "Path to animation fixture (yaml)")
	flag.StringVar(&configPath, "config", "", "Path to exporter config (yaml or toml)")
	flag.StringVar(&out, "o", "animations.glb", "Output file (.glb, .gltf, .yaml)")
	flag.StringVar(&morphOut, "morph", "morph.yaml", "Morph targets output (yaml), empty to write them into -o")
	flag.Parse()

	if fixturePath == "" {
		flag.PrintDefaults()
		return
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			log.Fatal("Config", "err", err)
		}
	}
	l, err := utils.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal("Logger", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := run(ctx, fixturePath, out, morphOut, cfg, l)
	if err != nil {
		l.Fatal("Export failed", "err", err)
	}
	l.Info("Done", "out", out, "written", len(report.Written), "failed", len(report.Failures))
	if len(report.Failures) != 0 {
		os.Exit(2)
	}
}
