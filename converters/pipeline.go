package converters

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/darianmavgo/tabconv/converters/common"
	"github.com/darianmavgo/tabconv/converters/zip"
	"github.com/darianmavgo/tabconv/logging"
)

// State is a step of one conversion.
type State int

const (
	StateDecoding State = iota
	StateEncoding
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDecoding:
		return "decoding"
	case StateEncoding:
		return "encoding"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// StageError records the state a conversion failed in.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return e.State.String() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result describes the file produced by a conversion.
type Result struct {
	Path        string // where the artifact was written
	Filename    string // suggested download name, <base>.<ext>
	ContentType string
	Size        int
}

// Options adjust a route's policy for one request.
type Options struct {
	CSVMode     *common.CSVParseMode
	Delimiter   rune
	DetectDelim bool
}

// Pipeline runs decode, encode and, for multi-file outputs, archive steps.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	store     *TempStore
	batchSize int
}

// NewPipeline creates a pipeline writing results into store.
func NewPipeline(store *TempStore) *Pipeline {
	return &Pipeline{store: store}
}

// WithBatchSize sets the row batch size used by database targets.
func (p *Pipeline) WithBatchSize(n int) *Pipeline {
	p.batchSize = n
	return p
}

// BaseName strips directories and the extension from an uploaded filename.
func BaseName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "." || base == "/" || base == "" {
		return "data"
	}
	return base
}

// Convert transforms src and saves the artifact to the temp store.
func (p *Pipeline) Convert(ctx context.Context, route Route, filename string, src []byte, opts *Options) (*Result, error) {
	artifact, err := p.Transform(ctx, route, filename, src, opts)
	if err != nil {
		return nil, err
	}

	path, err := p.store.Save(artifact)
	if err != nil {
		return nil, &StageError{State: StateEncoding, Err: err}
	}
	return &Result{
		Path:        path,
		Filename:    artifact.Name,
		ContentType: artifact.ContentType,
		Size:        len(artifact.Data),
	}, nil
}

// Transform runs the conversion in memory and returns the single artifact
// to hand back to the caller. Multi-file outputs come back as one archive.
func (p *Pipeline) Transform(ctx context.Context, route Route, filename string, src []byte, opts *Options) (common.Artifact, error) {
	config := p.configFor(route, filename, opts)
	log := logging.WithFields(ctx, "route", route.Name(), "file", config.Name)

	fail := func(state State, err error) (common.Artifact, error) {
		log.Warn("conversion failed", "source", route.Source, "target", route.Target, "state", state.String(), "error", err)
		return common.Artifact{}, &StageError{State: state, Err: err}
	}

	decoder, err := LookupDecoder(route.Source)
	if err != nil {
		return fail(StateDecoding, err)
	}
	encoder, err := LookupEncoder(route.Target)
	if err != nil {
		return fail(StateDecoding, err)
	}

	log.Debug("state", "state", StateDecoding.String(), "bytes", len(src))
	if err := ctx.Err(); err != nil {
		return fail(StateDecoding, err)
	}
	ds, err := decoder.Decode(src, config)
	if err != nil {
		return fail(StateDecoding, err)
	}

	log.Debug("state", "state", StateEncoding.String(), "shape", ds.Shape.String())
	if err := ctx.Err(); err != nil {
		return fail(StateEncoding, err)
	}
	artifacts, err := encoder.Encode(ds, config)
	if err != nil {
		return fail(StateEncoding, err)
	}

	var out common.Artifact
	switch {
	case route.Archive:
		out, err = zip.Artifact(config.Name, artifacts)
		if err != nil {
			return fail(StateEncoding, err)
		}
	case len(artifacts) == 1:
		out = artifacts[0]
	default:
		return fail(StateEncoding, common.Encoding(route.Target, fmt.Errorf("expected 1 artifact, got %d", len(artifacts))))
	}

	log.Debug("state", "state", StateDone.String(), "artifact", out.Name, "bytes", len(out.Data))
	return out, nil
}

func (p *Pipeline) configFor(route Route, filename string, opts *Options) *common.ConversionConfig {
	config := route.Config
	config.Name = BaseName(filename)
	config.BatchSize = p.batchSize
	if p.store != nil {
		config.WorkDir = p.store.Dir()
	}
	if opts != nil {
		if opts.CSVMode != nil {
			config.CSVMode = *opts.CSVMode
		}
		if opts.Delimiter != 0 {
			config.Delimiter = opts.Delimiter
		}
		config.DetectDelim = opts.DetectDelim
	}
	return &config
}
