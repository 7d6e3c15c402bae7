package filter

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: make(map[string]any, 32),
	}
	addHelperFunctions(c.helperFuncs)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[CompiledFilter]
}

// Compile compiles an expression into an executable filter. Record fields
// are resolved at run time, so unknown identifiers compile.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	env := make(map[string]any, len(c.helperFuncs)+8)
	maps.Copy(env, c.helperFuncs)
	addRecordFunctions(env, Record{})

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
	}
	if c.cache != nil {
		c.cache.Put(expression, filter)
	}
	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

func (f *exprFilter) Evaluate(rec Record) bool {
	ok, err := f.Match(rec)
	return err == nil && ok
}

func (f *exprFilter) Match(rec Record) (bool, error) {
	result, err := expr.Run(f.program, runtimeEnvironment(rec))
	if err != nil {
		id, _ := rec["id"].(string)
		return false, &EvaluationError{Expression: f.expression, RecordID: id, Err: err}
	}
	// AsBool guarantees the result type
	return result.(bool), nil
}

func (f *exprFilter) Expression() string {
	return f.expression
}

// Select returns the records f matches, in order. Records that fail to
// evaluate are skipped.
func Select(ctx context.Context, f Filter, records []Record) ([]Record, error) {
	matches := make([]Record, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.Evaluate(rec) {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// Records extracts the collection under key ("lists", "campaigns") from a
// decoded collection payload.
func Records(payload any, key string) ([]Record, error) {
	body, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload is %T, not an object", payload)
	}
	items, ok := body[key].([]any)
	if !ok {
		return nil, fmt.Errorf("payload has no %q collection", key)
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func runtimeEnvironment(rec Record) map[string]any {
	env := make(map[string]any, len(rec)+32)

	// record fields first so helpers always win on a name clash
	maps.Copy(env, rec)
	addHelperFunctions(env)
	addRecordFunctions(env, rec)
	env["Record"] = rec
	return env
}

func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["parseTime"] = parseTime
	env["daysSince"] = func(v any) int {
		t := parseTime(v)
		if t.IsZero() {
			return -1
		}
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}

	// String helpers, case-insensitive. lower, upper and now are expr builtins.
	env["containsFold"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["prefixFold"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["suffixFold"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
}

// addRecordFunctions binds path helpers to rec
func addRecordFunctions(env map[string]any, rec Record) {
	env["field"] = func(path string) any {
		v, _ := lookup(rec, path)
		return v
	}
	env["has"] = func(path string) bool {
		_, ok := lookup(rec, path)
		return ok
	}
	env["str"] = func(path string) string {
		v, _ := lookup(rec, path)
		if s, ok := v.(string); ok {
			return s
		}
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	env["num"] = func(path string) float64 {
		v, _ := lookup(rec, path)
		return toFloat(v)
	}
	env["memberCount"] = func() float64 {
		v, _ := lookup(rec, "stats.member_count")
		return toFloat(v)
	}
	env["subject"] = func() string {
		v, _ := lookup(rec, "settings.subject_line")
		s, _ := v.(string)
		return s
	}
}

// lookup walks a dotted path through nested objects
func lookup(rec Record, path string) (any, bool) {
	var cur any = rec
	for part := range strings.SplitSeq(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

// parseTime accepts a time.Time, an RFC 3339 timestamp or a YYYY-MM-DD
// date. Anything else is the zero time.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
