// Package swiftbind recovers typed descriptions of Swift entities from
// the mangled symbols of a compiled library, categorizing them for
// binding generation.
package swiftbind

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/appsworld/swiftbind/demangle"
	"github.com/appsworld/swiftbind/reduce"
)

// Parser converts a raw mangled symbol into a node tree.
type Parser interface {
	Parse(symbol string) (*demangle.Node, error)
}

type parserFunc func(symbol string) (*demangle.Node, error)

func (f parserFunc) Parse(symbol string) (*demangle.Node, error) { return f(symbol) }

// Demangler batch-processes mangled symbols into categorized results.
type Demangler struct {
	parser  Parser
	log     *zap.Logger
	workers int
}

// Option configures a Demangler.
type Option func(*Demangler)

// WithParser overrides the grammar parser.
func WithParser(p Parser) Option {
	return func(d *Demangler) {
		if p != nil {
			d.parser = p
		}
	}
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(log *zap.Logger) Option {
	return func(d *Demangler) {
		if log != nil {
			d.log = log
		}
	}
}

// WithWorkers caps concurrent symbol reductions. Values below one fall
// back to sequential processing.
func WithWorkers(n int) Option {
	return func(d *Demangler) {
		if n > 0 {
			d.workers = n
		}
	}
}

// New returns a Demangler using the built-in grammar parser.
func New(opts ...Option) *Demangler {
	d := &Demangler{
		parser:  parserFunc(demangle.Parse),
		log:     zap.NewNop(),
		workers: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Run reduces every symbol independently and partitions the reductions
// into typed buckets. One symbol's failure never affects another's;
// parse and reduction failures land in the error bucket. Bucket order
// follows input order regardless of the worker count.
func (d *Demangler) Run(symbols []string) *Results {
	reductions := make([]reduce.Reduction, len(symbols))

	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			reductions[i] = d.reduceOne(symbol)
			return nil
		})
	}
	// Workers never return errors; failures are reductions.
	_ = g.Wait()

	results := partition(reductions, d.log)
	d.log.Info("demangled symbol batch",
		zap.Int("symbols", len(symbols)),
		zap.Int("functions", len(results.Functions)),
		zap.Int("metadata_accessors", len(results.MetadataAccessors)),
		zap.Int("dispatch_thunks", len(results.DispatchThunks)),
		zap.Int("witness_tables", len(results.WitnessTables)),
		zap.Int("conformance_descriptors", len(results.ConformanceDescriptors)),
		zap.Int("errors", len(results.Errors)),
	)
	return results
}

func (d *Demangler) reduceOne(symbol string) reduce.Reduction {
	node, err := d.parser.Parse(symbol)
	if err != nil {
		d.log.Debug("parse failed", zap.String("symbol", symbol), zap.Error(err))
		return &reduce.ErrorReduction{
			Symbol:   symbol,
			Message:  fmt.Sprintf("parse mangled symbol %s: %v", symbol, err),
			Severity: reduce.SeverityLow,
		}
	}
	return reduce.Reduce(node, symbol)
}
