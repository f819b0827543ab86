package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/s0up4200/marquee/tmdb"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	compiler   *exprCompiler
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size <= 0 {
			return
		}
		if cache, err := lru.New[string, CompiledFilter](size); err == nil {
			c.cache = cache
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.customFuncs, funcs)
	}
}

// WithClock sets the time source of the date helpers
func WithClock(now func() time.Time) ExprCompilerOption {
	return func(c *exprCompiler) {
		if now != nil {
			c.now = now
		}
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		customFuncs: make(map[string]any),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	customFuncs map[string]any
	cache       *lru.Cache[string, CompiledFilter]
	now         func() time.Time
}

var defaultCompiler = NewExprCompiler(WithCache(100))

// CompileFilter compiles an expression with the shared caching compiler
func CompileFilter(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	// Check cache if enabled
	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Compile against an empty item so field and helper names are checked
	program, err := expr.Compile(expression,
		expr.Env(c.environment(tmdb.Item{})),
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
		compiler:   c,
	}

	if c.cache != nil {
		c.cache.Add(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// Evaluate evaluates the filter against an item
func (f *exprFilter) Evaluate(item tmdb.Item) bool {
	result, err := expr.Run(f.program, f.compiler.environment(item))
	if err != nil {
		// Items the expression cannot be evaluated against never match
		return false
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// environment builds the variables and helpers visible to an expression
func (c *exprCompiler) environment(item tmdb.Item) map[string]any {
	env := make(map[string]any, 48)
	c.addHelperFunctions(env)
	maps.Copy(env, c.customFuncs)

	released, hasRelease := item.Released()
	vote := 0.0
	if item.VoteAverage != nil {
		vote = *item.VoteAverage
	}

	env["Item"] = item
	env["ID"] = item.ID
	env["Title"] = item.Title
	env["MediaType"] = string(item.MediaType)
	env["Year"] = item.Year()
	env["ReleaseDate"] = released
	env["HasReleaseDate"] = hasRelease
	env["VoteAverage"] = vote
	env["HasVote"] = item.VoteAverage != nil
	env["Popularity"] = item.Popularity
	env["HasPoster"] = item.PosterPath != ""
	env["Overview"] = item.Overview
	env["Role"] = item.Role

	env["isMovie"] = func() bool { return item.MediaType == tmdb.MediaTypeMovie }
	env["isTV"] = func() bool { return item.MediaType == tmdb.MediaTypeTV }
	env["isPerson"] = func() bool { return item.MediaType == tmdb.MediaTypePerson }
	env["releasedAfter"] = func(date time.Time) bool {
		return hasRelease && released.After(date)
	}
	env["releasedBefore"] = func(date time.Time) bool {
		return hasRelease && released.Before(date)
	}
	env["isUpcoming"] = func() bool {
		return hasRelease && released.After(c.now())
	}

	return env
}

// addHelperFunctions adds the item independent helpers to env
func (c *exprCompiler) addHelperFunctions(env map[string]any) {
	// Date helpers; daysSince is -1 for an unknown date
	env["daysSince"] = func(t time.Time) int {
		if t.IsZero() {
			return -1
		}
		return int(c.now().Sub(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return c.now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return c.now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return c.now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// String helpers; contains, startsWith and endsWith are built-in operators
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Current time
	env["now"] = c.now
}

// Apply returns the items matching f, keeping their order
func Apply(f Filter, items []tmdb.Item) []tmdb.Item {
	matches := make([]tmdb.Item, 0, len(items))
	for _, item := range items {
		if f.Evaluate(item) {
			matches = append(matches, item)
		}
	}
	return matches
}
