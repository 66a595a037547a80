package evaluator

// DefaultMaxIterations bounds the number of passes through a single while
// loop before evaluation fails with E_LOOP_LIMIT.
const DefaultMaxIterations = 10000

// Budget holds the resource limits for one evaluation.
type Budget struct {
	MaxIterations int64
}

// BudgetTracker tracks resource consumption during evaluation.
type BudgetTracker struct {
	Statements int64 `json:"statements"`
	Iterations int64 `json:"iterations"`
	Prints     int64 `json:"prints"`
}

func budgetFrom(opts Options) Budget {
	b := Budget{MaxIterations: opts.MaxIterations}
	if b.MaxIterations <= 0 {
		b.MaxIterations = DefaultMaxIterations
	}
	return b
}
