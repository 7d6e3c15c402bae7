package filter

// Record is one decoded JSON object from a collection read, such as an
// entry of "lists" or "campaigns".
type Record = map[string]any

// Filter matches records
type Filter interface {
	// Evaluate reports whether rec matches. Evaluation errors count as no match.
	Evaluate(rec Record) bool
}

// CompiledFilter is a pre-compiled expression ready for evaluation
type CompiledFilter interface {
	Filter

	// Match is Evaluate with the evaluation error surfaced
	Match(rec Record) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler is a Compiler that keeps compiled programs
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
