// Package scatter runs populate jobs against a host scene: resolve the path,
// compute the placement records, and hand them to the host as one group.
package scatter

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"env-generator/internal/curve"
	"env-generator/internal/placement"
	"env-generator/internal/populate"
	"golang.org/x/sync/errgroup"
)

// GroupHandle names one materialized group in the host.
type GroupHandle string

// Host is the scene the core writes into.
//
// Materialize must be all-or-nothing: if it fails, nothing it created may remain.
// DeleteGroup removes everything one Materialize call created.
type Host interface {
	ResolveCurve(name string) (*curve.Path, error)
	Materialize(records []populate.Record, group string) (GroupHandle, error)
	DeleteGroup(h GroupHandle) error
}

// ErrNoSources is returned when a job names no source objects.
var ErrNoSources = errors.New("job has no sources")

// seedMix decorrelates the two PCG words derived from one seed.
const seedMix = 0x9e3779b97f4a7c15

// Job is one populate invocation.
type Job struct {
	Group   string           `yaml:"group,omitempty" toml:"group,omitempty" json:"group,omitempty"`
	Curve   string           `yaml:"curve,omitempty" toml:"curve,omitempty" json:"curve,omitempty"`
	Count   int              `yaml:"count,omitempty" toml:"count,omitempty" json:"count,omitempty"`
	Sources []string         `yaml:"sources,omitempty" toml:"sources,omitempty" json:"sources,omitempty"`
	Road    bool             `yaml:"road,omitempty" toml:"road,omitempty" json:"road,omitempty"`
	Params  placement.Params `yaml:"params,omitempty" toml:"params,omitempty" json:"params,omitempty"`
	// Seed 0 means time-based.
	Seed uint64 `yaml:"seed,omitempty" toml:"seed,omitempty" json:"seed,omitempty"`
}

// Result is what one job produced.
type Result struct {
	Group   GroupHandle
	Seed    uint64
	Records []populate.Record
}

// NewRand returns the deterministic source used for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMix))
}

func (j Job) seed() uint64 {
	if j.Seed != 0 {
		return j.Seed
	}
	return uint64(time.Now().UnixNano())
}

// Plan resolves the job's curve and computes its records without touching the scene.
// The returned Result carries the seed actually used; Group is empty.
func Plan(host Host, job Job) (Result, error) {
	if len(job.Sources) == 0 {
		return Result{}, fmt.Errorf("%s: %w: %w", job.label(), populate.ErrEmptySelector, ErrNoSources)
	}
	path, err := host.ResolveCurve(job.Curve)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", job.label(), err)
	}
	seed := job.seed()
	rng := NewRand(seed)
	var recs []populate.Record
	if job.Road {
		recs, err = populate.Road(path, job.Count, job.Sources[0], rng)
	} else {
		recs, err = populate.Populate(path, job.Count, populate.Choice(job.Sources...), job.Params, rng)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", job.label(), err)
	}
	return Result{Seed: seed, Records: recs}, nil
}

// Run plans the job and materializes its records as one group.
func Run(host Host, job Job) (Result, error) {
	res, err := Plan(host, job)
	if err != nil {
		return Result{}, err
	}
	h, err := host.Materialize(res.Records, job.Group)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", job.label(), err)
	}
	res.Group = h
	return res, nil
}

// RunBatch plans every job concurrently, each with its own random source, then
// materializes them in order. The batch is atomic: if anything fails, groups
// created so far are deleted and the first error is returned.
func RunBatch(ctx context.Context, host Host, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := Plan(host, job)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			rollback(host, results[:i])
			return nil, err
		}
		h, err := host.Materialize(results[i].Records, job.Group)
		if err != nil {
			rollback(host, results[:i])
			return nil, fmt.Errorf("%s: %w", job.label(), err)
		}
		results[i].Group = h
	}
	return results, nil
}

func rollback(host Host, done []Result) {
	for i := len(done) - 1; i >= 0; i-- {
		_ = host.DeleteGroup(done[i].Group)
	}
}

func (j Job) label() string {
	if j.Group != "" {
		return "scatter " + j.Group
	}
	return "scatter on " + j.Curve
}
