package prereq

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/jlouisugbo/gt-course-planner-sub006/catalog"
)

// The upload boundary validates condition gates with the same compiler, so
// a predicate accepted at upload always compiles at normalize time.
func init() {
	catalog.CompileCondition = CompileCondition
}

// Condition predicates are CEL expressions over a fixed environment of
// numeric academic-standing facts. The environment is deliberately closed:
// course membership is the tree's job, not CEL's.
//
//	gpa           double  cumulative GPA
//	creditsEarned int     total credit hours earned
//	classYear     int     1=freshman .. 4=senior
var conditionVars = []cel.EnvOption{
	cel.Variable("gpa", cel.DoubleType),
	cel.Variable("creditsEarned", cel.IntType),
	cel.Variable("classYear", cel.IntType),
}

var (
	condEnvOnce sync.Once
	condEnv     *cel.Env
	condEnvErr  error

	condMu       sync.RWMutex
	condPrograms = make(map[string]cel.Program)
)

func conditionEnv() (*cel.Env, error) {
	condEnvOnce.Do(func() {
		condEnv, condEnvErr = cel.NewEnv(conditionVars...)
		if condEnvErr != nil {
			condEnvErr = fmt.Errorf("failed to create condition environment: %w", condEnvErr)
		}
	})
	return condEnv, condEnvErr
}

// CompileCondition validates a condition predicate, compiling and caching its
// program. Normalize calls this so malformed predicates are rejected at parse
// time rather than surfacing mid-evaluation.
func CompileCondition(expression string) error {
	_, err := conditionProgram(expression)
	return err
}

func conditionProgram(expression string) (cel.Program, error) {
	condMu.RLock()
	prog, ok := condPrograms[expression]
	condMu.RUnlock()
	if ok {
		return prog, nil
	}

	env, err := conditionEnv()
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	// Cost limit guards against pathological expressions in uploaded data.
	prog, err = env.Program(ast, cel.CostLimit(1000000))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	condMu.Lock()
	condPrograms[expression] = prog
	condMu.Unlock()

	return prog, nil
}

// evalCondition evaluates a condition gate against the context's numeric
// facts. Only fields the context actually carries are bound; a predicate
// referencing an absent field fails attribute resolution inside CEL and is
// reported as unverifiable rather than unmet.
func evalCondition(cond Condition, ctx *Context) (met, verifiable bool) {
	prog, err := conditionProgram(cond.Expression)
	if err != nil {
		return false, false
	}

	facts := make(map[string]any, 3)
	if ctx.GPA != nil {
		facts["gpa"] = *ctx.GPA
	}
	if ctx.CreditsEarned != nil {
		facts["creditsEarned"] = *ctx.CreditsEarned
	}
	if ctx.ClassYear != nil {
		facts["classYear"] = *ctx.ClassYear
	}

	out, _, err := prog.Eval(facts)
	if err != nil {
		// Missing attribute or runtime error: the gate cannot be checked.
		return false, false
	}

	boolVal, ok := out.Value().(bool)
	if !ok {
		// Non-boolean predicates are treated as unmet, never as satisfied.
		return false, true
	}
	return boolVal, true
}
