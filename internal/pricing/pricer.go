package pricing

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"NoteValuator/internal/model"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// DefaultChunkSize is the number of paths drawn from one random stream.
const DefaultChunkSize = 4096

// MonteCarloPricer values the note as the discounted sample mean of payoffs
// over independent simulated paths.
//
// Paths are split into fixed-size chunks and chunk k always draws from stream
// k of the run seed. Chunk sums are merged in chunk order, so a given
// (seed, parameters) pair produces the same value for any worker count.
type MonteCarloPricer struct {
	Simulator PathSimulator
	Payoff    PayoffEvaluator
	Sources   SourceFactory
	Workers   int
	ChunkSize int
}

// NewMonteCarloPricer creates a pricer using the default normal source.
// workers <= 0 selects GOMAXPROCS; chunkSize <= 0 selects DefaultChunkSize.
func NewMonteCarloPricer(sim PathSimulator, payoff PayoffEvaluator, workers, chunkSize int) *MonteCarloPricer {
	return &MonteCarloPricer{
		Simulator: sim,
		Payoff:    payoff,
		Sources:   NewNormalSource,
		Workers:   workers,
		ChunkSize: chunkSize,
	}
}

// chunkResult accumulates one chunk of payoffs.
type chunkResult struct {
	n    int
	sum  float64
	mean float64
	m2   float64 // sum of squared deviations from mean
	err  error
}

// Price runs Paths simulations and returns the discounted mean payoff.
// Cancellation is checked between chunks.
func (p *MonteCarloPricer) Price(ctx context.Context, params model.SimulationParameters, seed uint64) (model.Estimate, error) {
	if err := params.Validate(); err != nil {
		return model.Estimate{}, err
	}
	if p.Payoff == nil {
		return model.Estimate{}, fmt.Errorf("%w: payoff evaluator required", model.ErrInvalidParameter)
	}
	sources := p.Sources
	if sources == nil {
		sources = NewNormalSource
	}
	chunkSize := p.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	numChunks := (params.Paths + chunkSize - 1) / chunkSize
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > numChunks {
		workers = numChunks
	}

	results := make([]chunkResult, numChunks)
	var next atomic.Int64
	// lowest chunk index that failed; chunks above it are not needed
	var stop atomic.Int64
	stop.Store(int64(numChunks))

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var buf []float64
			for {
				k := next.Add(1) - 1
				if k >= stop.Load() {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				first := int(k) * chunkSize
				count := min(chunkSize, params.Paths-first)
				res := p.runChunk(params, sources(seed, uint64(k)), count, &buf)
				results[k] = res
				if res.err != nil {
					for {
						cur := stop.Load()
						if k >= cur || stop.CompareAndSwap(cur, k) {
							break
						}
					}
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return model.Estimate{}, err
	}

	var total chunkResult
	for k := range results {
		if results[k].err != nil {
			return model.Estimate{}, fmt.Errorf("chunk %d: %w", k, results[k].err)
		}
		total = mergeChunks(total, results[k])
	}

	discount := math.Exp(-params.R * params.T)
	mean := total.sum / float64(total.n)
	pv := discount * mean
	if math.IsInf(pv, 0) || math.IsNaN(pv) {
		return model.Estimate{}, fmt.Errorf("%w: present value %v", model.ErrNumericOverflow, pv)
	}

	stdErr := 0.0
	if total.n > 1 {
		sd := math.Sqrt(total.m2 / float64(total.n-1))
		stdErr = discount * stat.StdErr(sd, float64(total.n))
	}

	return model.Estimate{
		PresentValue: pv,
		StdError:     stdErr,
		MeanPayoff:   mean,
		Discount:     discount,
		Paths:        total.n,
		Seed:         seed,
	}, nil
}

func (p *MonteCarloPricer) runChunk(params model.SimulationParameters, src NormalSource, count int, buf *[]float64) chunkResult {
	var res chunkResult
	for j := 0; j < count; j++ {
		path, err := p.Simulator.Simulate(params, src, *buf)
		if err != nil {
			res.err = fmt.Errorf("path %d: %w", j, err)
			return res
		}
		*buf = path
		payoff := p.Payoff.Evaluate(path[len(path)-1], params.S0, params.Barrier)
		if math.IsInf(payoff, 0) || math.IsNaN(payoff) {
			res.err = fmt.Errorf("%w: payoff %v on path %d", model.ErrNumericOverflow, payoff, j)
			return res
		}
		res.n++
		res.sum += payoff
		delta := payoff - res.mean
		res.mean += delta / float64(res.n)
		res.m2 += delta * (payoff - res.mean)
	}
	return res
}

// mergeChunks combines two partial accumulations (Chan et al. pairwise update).
func mergeChunks(a, b chunkResult) chunkResult {
	if a.n == 0 {
		return b
	}
	if b.n == 0 {
		return a
	}
	n := a.n + b.n
	delta := b.mean - a.mean
	return chunkResult{
		n:    n,
		sum:  a.sum + b.sum,
		mean: a.mean + delta*float64(b.n)/float64(n),
		m2:   a.m2 + b.m2 + delta*delta*float64(a.n)*float64(b.n)/float64(n),
	}
}
