package export

import (
	"context"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/morph"
)

// Exporter runs many sequences of one skeleton on a bounded worker pool.
// The skeleton is shared read-only, nothing else crosses workers.
type Exporter struct {
	Skeleton *anm.ReferencePose
	Options  Options
	// Workers limits parallel sequences, 0 means GOMAXPROCS.
	Workers int
}

type Failure struct {
	Name string
	Err  error
}

type Report struct {
	Run      string
	Written  []string
	Failures []Failure
}

type outcome[T any] struct {
	res *T
	err error
}

func (e *Exporter) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// parallel runs job for every index and returns the outcomes in index order.
func parallel[T any](ctx context.Context, workers, n int, job func(i int) (*T, error)) ([]outcome[T], error) {
	results := make([]outcome[T], n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i // per-iteration copy; go directive is 1.21 (toolchain constraint)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := job(i)
			results[i] = outcome[T]{res: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Exporter) runLogger(report *Report) *log.Logger {
	return e.Options.logger().With("run", report.Run)
}

// ExportSequences decodes every sequence and hands the successful ones to sink
// in input order. A failing sequence is logged and skipped, a failing sink aborts the run.
func (e *Exporter) ExportSequences(ctx context.Context, seqs []*Sequence, sink Sink) (*Report, error) {
	report := &Report{Run: uuid.NewString()}
	l := e.runLogger(report)
	opts := e.Options
	opts.Log = l

	l.Info("Exporting sequences", "count", len(seqs), "workers", e.workers())
	results, err := parallel(ctx, e.workers(), len(seqs), func(i int) (*anm.SequenceResult, error) {
		return ExportSequence(seqs[i], e.Skeleton, &opts)
	})
	if err != nil {
		return report, errors.Wrapf(err, "export run %s", report.Run)
	}

	for i, r := range results {
		name := seqs[i].Info.Name
		if r.err != nil {
			l.Error("Skipping sequence", "sequence", name, "codec", seqs[i].codecName(), "err", r.err)
			report.Failures = append(report.Failures, Failure{Name: name, Err: r.err})
			continue
		}
		if err := sink.WriteSequence(r.res); err != nil {
			return report, errors.Wrapf(err, "writing sequence %q", name)
		}
		report.Written = append(report.Written, name)
	}
	l.Info("Sequences exported", "written", len(report.Written), "failed", len(report.Failures))
	return report, nil
}

// ExportMorphTargets expands every target of buf and writes them in order.
func (e *Exporter) ExportMorphTargets(ctx context.Context, buf *morph.Buffers, targets []*morph.Target, sink Sink) (*Report, error) {
	report := &Report{Run: uuid.NewString()}
	l := e.runLogger(report)

	var conv morph.Converter
	if e.Options.Converter != nil {
		conv = e.Options.Converter
	}
	results, err := parallel(ctx, e.workers(), len(targets), func(i int) (*morph.TargetResult, error) {
		return morph.Dequantize(buf, targets[i], conv)
	})
	if err != nil {
		return report, errors.Wrapf(err, "morph run %s", report.Run)
	}

	for i, r := range results {
		name := targets[i].Name
		if r.err != nil {
			l.Error("Skipping morph target", "target", name, "err", r.err)
			report.Failures = append(report.Failures, Failure{Name: name, Err: r.err})
			continue
		}
		if err := sink.WriteMorphTarget(r.res); err != nil {
			return report, errors.Wrapf(err, "writing morph target %q", name)
		}
		report.Written = append(report.Written, name)
	}
	return report, nil
}
