package swiftbind

import (
	"go.uber.org/zap"

	"github.com/appsworld/swiftbind/reduce"
)

// Results holds one batch's reductions partitioned by category. Each
// bucket preserves the relative order of its reductions; the aggregate
// is immutable once built.
type Results struct {
	Functions              []*reduce.FunctionReduction
	MetadataAccessors      []*reduce.MetadataAccessorReduction
	DispatchThunks         []*reduce.DispatchThunkReduction
	WitnessTables          []*reduce.WitnessTableReduction
	ConformanceDescriptors []*reduce.ConformanceDescriptorReduction
	Errors                 []*reduce.ErrorReduction
}

// HighSeverityErrors filters the error bucket down to the failures that
// void their symbols. An empty result is the gate for code generation.
func (r *Results) HighSeverityErrors() []*reduce.ErrorReduction {
	var out []*reduce.ErrorReduction
	for _, e := range r.Errors {
		if e.Severity == reduce.SeverityHigh {
			out = append(out, e)
		}
	}
	return out
}

func partition(reductions []reduce.Reduction, log *zap.Logger) *Results {
	results := &Results{}
	for _, red := range reductions {
		switch red := red.(type) {
		case *reduce.FunctionReduction:
			results.Functions = append(results.Functions, red)
		case *reduce.MetadataAccessorReduction:
			results.MetadataAccessors = append(results.MetadataAccessors, red)
		case *reduce.DispatchThunkReduction:
			results.DispatchThunks = append(results.DispatchThunks, red)
		case *reduce.WitnessTableReduction:
			results.WitnessTables = append(results.WitnessTables, red)
		case *reduce.ConformanceDescriptorReduction:
			results.ConformanceDescriptors = append(results.ConformanceDescriptors, red)
		case *reduce.ErrorReduction:
			results.Errors = append(results.Errors, red)
		case nil:
			// Unreachable when produced by Run; kept for direct callers.
		default:
			log.Debug("uncategorized reduction",
				zap.String("symbol", red.MangledSymbol()))
		}
	}
	return results
}
