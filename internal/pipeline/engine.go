// Package pipeline orchestrates one batch run: normalize input files,
// classify and cost every record against a registry snapshot, aggregate
// per contract and globally, and hand finalized reports to storage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cdrflow/cdrflow/internal/common"
	"github.com/cdrflow/cdrflow/internal/config"
	"github.com/cdrflow/cdrflow/internal/model"
	"github.com/cdrflow/cdrflow/internal/normalize"
	"github.com/cdrflow/cdrflow/internal/pricing"
	"github.com/cdrflow/cdrflow/internal/registry"
	"github.com/cdrflow/cdrflow/internal/report"
	"github.com/cdrflow/cdrflow/internal/source"
)

// ContractProvider supplies contract configuration at run start.
type ContractProvider interface {
	ListContracts(ctx context.Context) ([]model.Contract, error)
}

// Engine runs the classification-and-aggregation pipeline. At most one
// run may be in progress per Engine; concurrent triggers are rejected,
// never queued.
type Engine struct {
	registry  *registry.Registry
	contracts ContractProvider
	src       source.Source
	reports   *report.Store
	onFile    func(done, total int)
	now       func() time.Time
	pricing   config.Pricing
	workers   int
	running   atomic.Bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithWorkers caps the number of files processed in parallel.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithClock injects the time source; report content and filenames
// derive from it, so tests pin it for byte-identical artifacts.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithProgress registers a per-file completion callback.
func WithProgress(fn func(done, total int)) Option {
	return func(e *Engine) { e.onFile = fn }
}

// New assembles an Engine.
func New(reg *registry.Registry, contracts ContractProvider, src source.Source, reports *report.Store, pricingCfg config.Pricing, opts ...Option) *Engine {
	e := &Engine{
		registry:  reg,
		contracts: contracts,
		src:       src,
		reports:   reports,
		pricing:   pricingCfg,
		workers:   4,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FileError records one file that could not be processed.
type FileError struct {
	Filename string
	Err      error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

// RunResult is the user-visible outcome of one run. Partial success is
// first-class: Success is true whenever the run reached FINALIZED, even
// if individual rows or files failed.
type RunResult struct {
	Period         string
	GeneratedFiles []string
	FileErrors     []FileError
	RowErrors      []common.RowError
	State          RunState
	ProcessedFiles int
	OpaqueFiles    int
	TotalRecords   int
	Success        bool
}

// ErrorCount reports the combined number of file- and row-level errors.
func (r *RunResult) ErrorCount() int {
	return len(r.FileErrors) + len(r.RowErrors)
}

// fileWork is one file's normalized content, staged between phases.
type fileWork struct {
	parsed *normalize.Result
	name   string
}

// Run executes one pipeline run over the named files; with no names it
// processes everything the source lists. Cancellation is honored at
// file boundaries: a cancelled run is FAILED and leaves no artifacts.
func (e *Engine) Run(ctx context.Context, names []string) (*RunResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, common.ErrRunInProgress
	}
	defer e.running.Store(false)

	started := e.now()
	result := &RunResult{
		State:  StateInitialized,
		Period: started.Format("2006-01"),
	}

	snapshot, err := e.registry.Snapshot(ctx)
	if err != nil {
		result.State = StateFailed
		return result, err
	}

	contracts, err := e.loadContracts(ctx)
	if err != nil {
		result.State = StateFailed
		return result, err
	}

	if len(names) == 0 {
		names, err = e.src.List(ctx)
		if err != nil {
			result.State = StateFailed
			return result, err
		}
	}

	slog.Info("pipeline run starting",
		"files", len(names),
		"categories", snapshot.Len(),
		"period", result.Period)

	// Phase 1: fetch and normalize files in parallel.
	result.State = StateNormalizing
	work, err := e.normalizeFiles(ctx, names, result)
	if err != nil {
		result.State = StateFailed
		return result, mapRunErr(ctx, err)
	}

	// Phase 2: classify and cost each file's records in parallel,
	// producing one partial aggregation per file.
	result.State = StateClassifying
	partials, err := e.classifyFiles(ctx, work, snapshot, contracts)
	if err != nil {
		result.State = StateFailed
		return result, mapRunErr(ctx, err)
	}

	// Phase 3: merge partials. Merging is commutative and associative,
	// so the combination order doesn't affect the outcome.
	result.State = StateAggregating
	run := newRunAccum()
	for _, partial := range partials {
		run.merge(partial)
	}

	generationDate := started.UTC().Format(time.RFC3339)

	codes := make([]string, 0, len(run.contracts))
	for code := range run.contracts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		rep := buildContractReport(run.contracts[code], result.Period, generationDate)
		filename, err := e.reports.Write(rep)
		if err != nil {
			result.State = StateFailed
			return result, err
		}
		result.GeneratedFiles = append(result.GeneratedFiles, filename)
	}

	if len(run.contracts) > 0 {
		summary := buildSummaryReport(run, result.Period, generationDate)
		filename, err := e.reports.Write(summary)
		if err != nil {
			result.State = StateFailed
			return result, err
		}
		result.GeneratedFiles = append(result.GeneratedFiles, filename)
	}

	result.State = StateFinalized
	result.Success = true

	slog.Info("pipeline run finalized",
		"processed_files", result.ProcessedFiles,
		"records", result.TotalRecords,
		"errors", result.ErrorCount(),
		"artifacts", len(result.GeneratedFiles))

	return result, nil
}

func (e *Engine) loadContracts(ctx context.Context) (map[string]*model.Contract, error) {
	list, err := e.contracts.ListContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}
	out := make(map[string]*model.Contract, len(list))
	for i := range list {
		out[list[i].Code] = &list[i]
	}
	return out, nil
}

// normalizeFiles fetches and parses every file. File-level failures are
// collected into the result; only cancellation aborts the phase.
func (e *Engine) normalizeFiles(ctx context.Context, names []string, result *RunResult) ([]fileWork, error) {
	var (
		mu   sync.Mutex
		work []fileWork
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, name := range names {
		g.Go(func() error {
			// Cooperative cancellation checkpoint at the file boundary.
			if err := gctx.Err(); err != nil {
				return err
			}

			parsed, fileErr := e.processOne(gctx, name)

			mu.Lock()
			defer mu.Unlock()
			done++
			if e.onFile != nil {
				e.onFile(done, len(names))
			}
			if fileErr != nil {
				result.FileErrors = append(result.FileErrors, FileError{Filename: name, Err: fileErr})
				slog.Warn("skipping file", "file", name, "error", fileErr)
				return nil
			}

			result.ProcessedFiles++
			result.TotalRecords += len(parsed.Records)
			result.RowErrors = append(result.RowErrors, parsed.RowErrors...)
			if parsed.Opaque != nil {
				result.OpaqueFiles++
			}
			work = append(work, fileWork{name: name, parsed: parsed})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deterministic downstream order regardless of worker scheduling.
	sort.Slice(work, func(i, j int) bool { return work[i].name < work[j].name })
	sort.Slice(result.RowErrors, func(i, j int) bool {
		if result.RowErrors[i].Filename != result.RowErrors[j].Filename {
			return result.RowErrors[i].Filename < result.RowErrors[j].Filename
		}
		return result.RowErrors[i].Row < result.RowErrors[j].Row
	})
	sort.Slice(result.FileErrors, func(i, j int) bool {
		return result.FileErrors[i].Filename < result.FileErrors[j].Filename
	})

	return work, nil
}

func (e *Engine) processOne(ctx context.Context, name string) (*normalize.Result, error) {
	file, err := e.src.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return normalize.Parse(file.Data, file.Name)
}

// classifyFiles turns each file's records into a partial aggregation.
func (e *Engine) classifyFiles(ctx context.Context, work []fileWork, snapshot *registry.Snapshot, contracts map[string]*model.Contract) ([]*runAccum, error) {
	partials := make([]*runAccum, len(work))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, w := range work {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			partial := newRunAccum()
			for _, record := range w.parsed.Records {
				category, cost := e.classifyRecord(record, snapshot, contracts)
				acc := partial.contract(record.ContractCode)
				acc.add(record, category, cost)
				if acc.clientLabel == "" {
					if c := contracts[record.ContractCode]; c != nil {
						acc.clientLabel = c.ClientLabel
					}
				}
			}
			partials[i] = partial
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return partials, nil
}

// classifyRecord resolves the category bucket and cost for one record.
// Unclassified calls land in the UNCLASSIFIED bucket at zero cost; they
// still count toward call and duration totals.
func (e *Engine) classifyRecord(record model.CallRecord, snapshot *registry.Snapshot, contracts map[string]*model.Contract) (string, float64) {
	match := snapshot.Classify(record.CallType)
	if match == nil {
		return model.UnclassifiedCategory, 0
	}

	contract := contracts[record.ContractCode]
	cost := pricing.Cost(record.DurationSeconds, match.Category, contract, e.pricing)
	return match.Category.Name, cost
}

// mapRunErr distinguishes a blown deadline from an explicit cancellation.
func mapRunErr(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("pipeline run: %w", common.ErrTimeout)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("pipeline run: %w", common.ErrRunCancelled)
	default:
		return err
	}
}
