package generator

import (
	"github.com/gammazero/deque"

	"github.com/cwbudde/go-ecma/internal/interp/errors"
	"github.com/cwbudde/go-ecma/internal/interp/evaluator"
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// Factory is the evaluator.GeneratorFactory implementation: it lowers
// generator bodies at function-definition time and constructs a Driver
// per call (§4.7).
type Factory struct{}

// NewFactory returns the generator package's evaluator.GeneratorFactory.
func NewFactory() *Factory { return &Factory{} }

// Transform lowers fn's body into a state machine, cached on the
// Function record by the caller (§4.7 "encoded, at function-definition
// time").
func (f *Factory) Transform(fn *ast.FunctionExpression) (any, error) {
	var body []ast.Statement
	if fn.Body != nil {
		body = fn.Body.Body
	}
	return transformGenerator(body, fn.Params), nil
}

// status tracks a generator instance's lifecycle (§4.7.3 "suspended at
// start", "suspended at yield", "running", "completed").
type status int

const (
	statusSuspendedStart status = iota
	statusSuspendedYield
	statusExecuting
	statusCompleted
)

// tryFrame is one entry of the active try/catch/finally stack a
// generator instance carries across suspensions (§4.7.1 "TryEnter"
// pushes a frame; TryExit pops it").
type tryFrame struct {
	catch        *catchInfo
	catchOpen    bool // catch present and not yet dispatched to
	finallyState int
	hasFinally   bool
	afterState   int
}

// Driver implements runtime.GeneratorDriver, running one generator
// instance's Machine against a persistent activation environment
// (§4.7.3).
type Driver struct {
	machine *Machine
	ctx     evaluator.Context
	state   int
	status  status

	frames deque.Deque[tryFrame]

	pendingSentBinding *sentBinding
	pendingThrow       runtime.Value
	hasPendingThrow    bool
	pendingAbrupt      *runtime.Completion

	// delegating is set while a `yield*` is forwarding next/return/throw
	// to a sub-iterator instead of resuming the machine directly.
	delegating      bool
	delegateIter    runtime.Value
	delegateBinding *sentBinding
	delegateResume  int
}

// NewDriver constructs a Driver over an already-prepared activation
// context; exported for tests that want to drive a Machine directly.
func NewDriver(machine *Machine, ctx evaluator.Context) *Driver {
	return &Driver{machine: machine, ctx: ctx, state: 0, status: statusSuspendedStart}
}

// CreateGenerator builds the per-call activation (closure child
// environment, bound parameters, pre-declared locals/temps), wires it
// to a fresh Driver, and returns the Generator-class object wrapping it
// (§4.6 step 5, §4.7.3).
func (f *Factory) CreateGenerator(ctx evaluator.Context, fn *runtime.Function, this runtime.Value, args []runtime.Value) runtime.Completion {
	machine, ok := fn.StateMachine.(*Machine)
	if !ok || machine == nil {
		return ctx.Throw("TypeError", "function is not a generator")
	}

	env := runtime.NewChildEnvironment(fn.Closure)
	genCtx := ctx.WithEnv(env)

	act := &evaluator.Activation{This: this}
	if fn.HasHome {
		act.HomeObject, act.HasHome = fn.HomeObject, true
	}
	genCtx = genCtx.WithActivation(act)

	// Locals (which include the parameter names, per analyzeGeneratorBody)
	// are declared as undefined first so BindParameters can overwrite the
	// parameter-named ones with real argument values and BindParam kind.
	for _, name := range machine.localVars {
		if !env.HasOwnBinding(name) {
			env.Declare(name, runtime.BindVar)
		}
	}
	if c := evaluator.BindParameters(genCtx, machine.params, args); c.IsAbrupt() {
		return c
	}
	for _, name := range machine.tempVars {
		if !env.HasOwnBinding(name) {
			env.Declare(name, runtime.BindVar)
		}
	}

	driver := NewDriver(machine, genCtx)

	h := ctx.Store.Allocate(&runtime.Object{
		Class:      runtime.ClassGenerator,
		Prototype:  ctx.GeneratorPrototype,
		HasProto:   true,
		Extensible: true,
		Properties: runtime.NewPropertyMap(),
		IteratorState: &runtime.IteratorState{
			Kind:      runtime.IterGenerator,
			Generator: driver,
		},
	})
	return runtime.NormalCompletion(runtime.Object(h))
}

// Next resumes the generator with sent as the value of the suspended
// `yield` expression (§4.7.3 "next(v)").
func (d *Driver) Next(sent runtime.Value) (runtime.IterResult, runtime.Completion) {
	switch d.status {
	case statusCompleted:
		return runtime.IterResult{Value: runtime.Undefined, Done: true}, runtime.NormalCompletion(runtime.Undefined)
	case statusExecuting:
		return runtime.IterResult{}, d.ctx.Throw("TypeError", "Generator is already running")
	}

	if d.delegating {
		return d.resumeDelegation(sent, nil, nil)
	}

	if d.status == statusSuspendedYield {
		if c := d.applySentBinding(sent); c.IsAbrupt() {
			return d.finishAbrupt(c)
		}
	}
	d.status = statusExecuting
	return d.run()
}

// Return forces the generator to complete as if `return v` executed at
// the suspension point, running any enclosing finally blocks first
// (§4.7.3 "return(v)").
func (d *Driver) Return(v runtime.Value) (runtime.IterResult, runtime.Completion) {
	if d.status == statusCompleted {
		return runtime.IterResult{Value: v, Done: true}, runtime.NormalCompletion(runtime.Undefined)
	}
	if d.status == statusExecuting {
		return runtime.IterResult{}, d.ctx.Throw("TypeError", "Generator is already running")
	}
	if d.delegating {
		return d.resumeDelegation(runtime.Undefined, &v, nil)
	}
	if d.status == statusSuspendedStart {
		d.status = statusCompleted
		return runtime.IterResult{Value: v, Done: true}, runtime.NormalCompletion(runtime.Undefined)
	}

	d.status = statusExecuting
	if c := d.propagate(runtime.ReturnCompletion(v)); c.IsAbrupt() {
		return d.finishAbrupt(c)
	}
	return d.run()
}

// Throw injects v as a thrown exception at the suspension point,
// dispatching to an enclosing catch or propagating out of the
// generator entirely (§4.7.3 "throw(v)").
func (d *Driver) Throw(v runtime.Value) (runtime.IterResult, runtime.Completion) {
	if d.status == statusCompleted {
		return runtime.IterResult{}, runtime.ThrowCompletion(v)
	}
	if d.status == statusExecuting {
		return runtime.IterResult{}, d.ctx.Throw("TypeError", "Generator is already running")
	}
	if d.delegating {
		return d.resumeDelegation(runtime.Undefined, nil, &v)
	}
	if d.status == statusSuspendedStart {
		d.status = statusCompleted
		return runtime.IterResult{}, runtime.ThrowCompletion(v)
	}

	d.status = statusExecuting
	if c := d.propagate(runtime.ThrowCompletion(v)); c.IsAbrupt() {
		return d.finishAbrupt(c)
	}
	return d.run()
}

// finishAbrupt marks the generator completed and surfaces c, which is
// always Throw or Return at this point (propagate never returns Break/
// Continue/Normal abrupt).
func (d *Driver) finishAbrupt(c runtime.Completion) (runtime.IterResult, runtime.Completion) {
	d.status = statusCompleted
	if c.Kind == runtime.Return {
		return runtime.IterResult{Value: c.Value, Done: true}, runtime.NormalCompletion(runtime.Undefined)
	}
	return runtime.IterResult{}, c
}

// applySentBinding installs a resumed value into the activation per
// the yield's recorded sent_binding (§4.7.1 "sent_binding"); generator
// locals are already declared (BindVar) in the activation, so a
// pattern binding assigns into them rather than re-declaring.
func (d *Driver) applySentBinding(v runtime.Value) runtime.Completion {
	b := d.pendingSentBinding
	d.pendingSentBinding = nil
	if b == nil {
		return runtime.NormalCompletion(runtime.Undefined)
	}
	switch b.kind {
	case sentVariable:
		if err := d.ctx.Env.Set(b.name, v); err != runtime.ErrNone {
			return d.ctx.Throw("ReferenceError", "%s is not defined", b.name)
		}
		return runtime.NormalCompletion(runtime.Undefined)
	case sentPattern:
		return evaluator.AssignPattern(d.ctx, b.pat, v)
	default:
		return runtime.NormalCompletion(runtime.Undefined)
	}
}

// run drives states forward until a Yield suspends, a Return/
// unhandled Throw/Completed terminates, or an abrupt completion
// escapes the whole machine (an interpreter-side bug, surfaced as an
// internal error rather than a script Throw).
func (d *Driver) run() (runtime.IterResult, runtime.Completion) {
	for {
		if d.state < 0 || d.state >= len(d.machine.states) {
			panic(errors.NewGeneratorError("generator resumed into out-of-range state %d", d.state))
		}
		st := &d.machine.states[d.state]

		next, res, comp, stop := d.runStatements(st)
		if stop {
			return res, comp
		}
		if next >= 0 {
			d.state = next
			continue
		}

		res, comp, done := d.handleTerminator(st.Terminator)
		if done {
			return res, comp
		}
	}
}

// runStatements runs st's non-yielding statement prefix against the
// ordinary evaluator. next >= 0 means a Break/Continue (or a
// propagate() dispatch into a catch/finally) redirected execution to
// that state and the caller should loop; stop=true means the whole
// machine is done and (res, comp) is the final answer; otherwise the
// prefix ran clean and the caller should dispatch st's terminator.
func (d *Driver) runStatements(st *state) (next int, res runtime.IterResult, comp runtime.Completion, stop bool) {
	for _, stmt := range st.Statements {
		c := evaluator.EvalStatement(d.ctx, stmt)
		if !c.IsAbrupt() {
			continue
		}
		switch c.Kind {
		case runtime.Break:
			if target, ok := st.BreakTargets[c.Label]; ok {
				return target, runtime.IterResult{}, runtime.Completion{}, false
			}
			panic(errors.NewGeneratorError("break to unresolved label %q escaped generator state %d", c.Label, st.ID))
		case runtime.Continue:
			if target, ok := st.ContinueTargets[c.Label]; ok {
				return target, runtime.IterResult{}, runtime.Completion{}, false
			}
			panic(errors.NewGeneratorError("continue to unresolved label %q escaped generator state %d", c.Label, st.ID))
		default: // Return, Throw
			r := d.propagate(c)
			if r.IsAbrupt() {
				ires, fc := d.finishAbrupt(r)
				return -1, ires, fc, true
			}
			return d.state, runtime.IterResult{}, runtime.Completion{}, false
		}
	}
	return -1, runtime.IterResult{}, runtime.Completion{}, false
}

// propagate unwinds the try-frame stack against an escaping Return or
// Throw (§4.7.1 "TryExit... re-raise after running the finally body").
// It transitions d.state into a catch/finally dispatch state when one
// intercepts c, returning a Normal completion in that case; it returns
// c itself (Return or Throw) once the stack is exhausted.
func (d *Driver) propagate(c runtime.Completion) runtime.Completion {
	for d.frames.Len() > 0 {
		frame := d.frames.Back()

		if c.Kind == runtime.Throw && frame.catch != nil && frame.catchOpen {
			frame.catchOpen = false
			d.frames.Set(d.frames.Len()-1, frame)
			d.pendingThrow = c.Value
			d.hasPendingThrow = true
			d.state = frame.catch.State
			return runtime.NormalCompletion(runtime.Undefined)
		}

		d.frames.PopBack()
		if frame.hasFinally {
			abrupt := c
			d.pendingAbrupt = &abrupt
			d.state = frame.finallyState
			return runtime.NormalCompletion(runtime.Undefined)
		}
	}
	return c
}

// handleTerminator dispatches st's terminator once its statement
// prefix ran to completion without escaping.
func (d *Driver) handleTerminator(term terminator) (runtime.IterResult, runtime.Completion, bool) {
	switch t := term.(type) {
	case termCompleted:
		d.status = statusCompleted
		return runtime.IterResult{Value: runtime.Undefined, Done: true}, runtime.Completion{}, true

	case termReturn:
		v := runtime.Undefined
		if t.Value != nil {
			val, c := evaluator.EvalExpression(d.ctx, t.Value)
			if c.IsAbrupt() {
				if r := d.propagate(c); r.IsAbrupt() {
					res, comp := d.finishAbrupt(r)
					return res, comp, true
				}
				return runtime.IterResult{}, runtime.Completion{}, false
			}
			v = val
		}
		if c := d.propagate(runtime.ReturnCompletion(v)); c.IsAbrupt() {
			res, comp := d.finishAbrupt(c)
			return res, comp, true
		}
		return runtime.IterResult{}, runtime.Completion{}, false

	case termThrow:
		val, c := evaluator.EvalExpression(d.ctx, t.Value)
		if c.IsAbrupt() {
			if r := d.propagate(c); r.IsAbrupt() {
				res, comp := d.finishAbrupt(r)
				return res, comp, true
			}
			return runtime.IterResult{}, runtime.Completion{}, false
		}
		if c := d.propagate(runtime.ThrowCompletion(val)); c.IsAbrupt() {
			res, comp := d.finishAbrupt(c)
			return res, comp, true
		}
		return runtime.IterResult{}, runtime.Completion{}, false

	case termGoto:
		d.state = t.State
		return runtime.IterResult{}, runtime.Completion{}, false

	case termConditionalGoto:
		v, c := evaluator.EvalExpression(d.ctx, t.Cond)
		if c.IsAbrupt() {
			res, comp := d.finishAbrupt(c)
			return res, comp, true
		}
		if runtime.ToBoolean(v) {
			d.state = t.TrueState
		} else {
			d.state = t.FalseState
		}
		return runtime.IterResult{}, runtime.Completion{}, false

	case termSwitchDispatch:
		return d.dispatchSwitch(t)

	case termTryEnter:
		frame := tryFrame{afterState: t.AfterState, hasFinally: t.HasFinally, finallyState: t.FinallyState}
		if t.Catch != nil {
			ci := *t.Catch
			frame.catch = &ci
			frame.catchOpen = true
		}
		d.frames.PushBack(frame)
		d.state = t.TryState
		return runtime.IterResult{}, runtime.Completion{}, false

	case termEnterCatch:
		if t.Param != nil {
			v := runtime.Undefined
			if d.hasPendingThrow {
				v = d.pendingThrow
			}
			d.hasPendingThrow = false
			if c := evaluator.AssignPattern(d.ctx, t.Param, v); c.IsAbrupt() {
				res, comp := d.finishAbrupt(c)
				return res, comp, true
			}
		}
		d.hasPendingThrow = false
		d.state = t.BodyState
		return runtime.IterResult{}, runtime.Completion{}, false

	case termEnterFinally:
		d.state = t.BodyState
		return runtime.IterResult{}, runtime.Completion{}, false

	case termTryExit:
		if d.pendingAbrupt != nil {
			abrupt := *d.pendingAbrupt
			d.pendingAbrupt = nil
			if c := d.propagate(abrupt); c.IsAbrupt() {
				res, comp := d.finishAbrupt(c)
				return res, comp, true
			}
			return runtime.IterResult{}, runtime.Completion{}, false
		}
		// Normal exit: the frame TryEnter pushed is still on the stack
		// (an abrupt exit already popped it in propagate).
		if d.frames.Len() > 0 {
			d.frames.PopBack()
		}
		d.state = t.AfterState
		return runtime.IterResult{}, runtime.Completion{}, false

	case termYield:
		return d.handleYield(t)

	default:
		panic(errors.NewGeneratorError("unhandled generator terminator %T", term))
	}
}

func (d *Driver) dispatchSwitch(t termSwitchDispatch) (runtime.IterResult, runtime.Completion, bool) {
	disc, c := evaluator.EvalExpression(d.ctx, t.Discriminant)
	if c.IsAbrupt() {
		res, comp := d.finishAbrupt(c)
		return res, comp, true
	}
	for _, cs := range t.Cases {
		testVal, c := evaluator.EvalExpression(d.ctx, cs.Test)
		if c.IsAbrupt() {
			res, comp := d.finishAbrupt(c)
			return res, comp, true
		}
		if runtime.StrictEquals(disc, testVal) {
			d.state = cs.State
			return runtime.IterResult{}, runtime.Completion{}, false
		}
	}
	if t.HasDefault {
		d.state = t.DefaultState
	} else {
		d.state = t.AfterState
	}
	return runtime.IterResult{}, runtime.Completion{}, false
}

// handleYield evaluates the yielded expression (plain yield), or opens
// the delegate iterable and steps it once (yield*), suspending the
// driver either way.
func (d *Driver) handleYield(t termYield) (runtime.IterResult, runtime.Completion, bool) {
	var val runtime.Value
	if t.Value != nil {
		v, c := evaluator.EvalExpression(d.ctx, t.Value)
		if c.IsAbrupt() {
			res, comp := d.finishAbrupt(c)
			return res, comp, true
		}
		val = v
	} else {
		val = runtime.Undefined
	}

	if !t.IsDelegate {
		d.pendingSentBinding = t.SentBinding
		d.state = t.Resume
		d.status = statusSuspendedYield
		return runtime.IterResult{Value: val, Done: false}, runtime.Completion{}, true
	}

	iter, c := evaluator.OpenIterator(d.ctx, val)
	if c.IsAbrupt() {
		res, comp := d.finishAbrupt(c)
		return res, comp, true
	}
	d.delegating = true
	d.delegateIter = iter
	d.delegateBinding = t.SentBinding
	d.delegateResume = t.Resume

	stepVal, done, c := evaluator.IteratorStep(d.ctx, iter)
	if c.IsAbrupt() {
		d.delegating = false
		res, comp := d.finishAbrupt(c)
		return res, comp, true
	}
	if done {
		d.delegating = false
		if c := d.applyDelegateResult(stepVal); c.IsAbrupt() {
			res, comp := d.finishAbrupt(c)
			return res, comp, true
		}
		d.state = t.Resume
		d.status = statusExecuting
		return runtime.IterResult{}, runtime.Completion{}, false
	}
	d.status = statusSuspendedYield
	return runtime.IterResult{Value: stepVal, Done: false}, runtime.Completion{}, true
}

// applyDelegateResult installs a completed yield*'s final value via
// the same sent_binding machinery a plain yield uses.
func (d *Driver) applyDelegateResult(v runtime.Value) runtime.Completion {
	d.pendingSentBinding = d.delegateBinding
	d.delegateBinding = nil
	return d.applySentBinding(v)
}

// resumeDelegation forwards a Next/Return/Throw call received while
// `yield*` is delegating to its sub-iterator, per one of sent/ret/thr
// being non-nil (§4.8 "close the delegate, forward return/throw").
func (d *Driver) resumeDelegation(sent runtime.Value, ret *runtime.Value, thr *runtime.Value) (runtime.IterResult, runtime.Completion) {
	iter := d.delegateIter

	switch {
	case thr != nil:
		fn, ok, c := evaluator.IteratorMethod(d.ctx, iter, "throw")
		if c.IsAbrupt() {
			d.delegating = false
			return d.finishAbrupt(c)
		}
		if !ok {
			d.delegating = false
			if rfn, rok, c := evaluator.IteratorMethod(d.ctx, iter, "return"); c.IsAbrupt() {
				return d.finishAbrupt(c)
			} else if rok {
				d.ctx.Realm.Call(rfn, iter, nil)
			}
			d.status = statusExecuting
			if c := d.propagate(runtime.ThrowCompletion(*thr)); c.IsAbrupt() {
				return d.finishAbrupt(c)
			}
			return d.run()
		}
		value, done, escaped := d.callDelegateMethod(fn, iter, *thr)
		if escaped.IsAbrupt() {
			d.delegating = false
			d.status = statusExecuting
			if c := d.propagate(escaped); c.IsAbrupt() {
				return d.finishAbrupt(c)
			}
			return d.run()
		}
		return d.continueDelegation(value, done)

	case ret != nil:
		fn, ok, c := evaluator.IteratorMethod(d.ctx, iter, "return")
		if c.IsAbrupt() {
			d.delegating = false
			return d.finishAbrupt(c)
		}
		if !ok {
			d.delegating = false
			d.status = statusExecuting
			if c := d.propagate(runtime.ReturnCompletion(*ret)); c.IsAbrupt() {
				return d.finishAbrupt(c)
			}
			return d.run()
		}
		value, done, escaped := d.callDelegateMethod(fn, iter, *ret)
		if escaped.IsAbrupt() {
			d.delegating = false
			d.status = statusExecuting
			if c := d.propagate(escaped); c.IsAbrupt() {
				return d.finishAbrupt(c)
			}
			return d.run()
		}
		if done {
			d.delegating = false
			d.status = statusExecuting
			if c := d.propagate(runtime.ReturnCompletion(value)); c.IsAbrupt() {
				return d.finishAbrupt(c)
			}
			return d.run()
		}
		return runtime.IterResult{Value: value, Done: false}, runtime.NormalCompletion(runtime.Undefined)

	default:
		value, done, c := d.callDelegateNext(iter, sent)
		if c.IsAbrupt() {
			d.delegating = false
			return d.finishAbrupt(c)
		}
		return d.continueDelegation(value, done)
	}
}

// continueDelegation handles the common "step landed, was it done"
// branch shared by Next/Throw delegation forwarding.
func (d *Driver) continueDelegation(value runtime.Value, done bool) (runtime.IterResult, runtime.Completion) {
	if !done {
		return runtime.IterResult{Value: value, Done: false}, runtime.NormalCompletion(runtime.Undefined)
	}
	d.delegating = false
	if c := d.applyDelegateResult(value); c.IsAbrupt() {
		return d.finishAbrupt(c)
	}
	d.state = d.delegateResume
	d.status = statusExecuting
	return d.run()
}

// callDelegateNext calls iterator.next(sent) and unpacks the result,
// forwarding the caller's sent value (unlike evaluator.IteratorStep,
// which always calls next() with no arguments).
func (d *Driver) callDelegateNext(iter runtime.Value, sent runtime.Value) (runtime.Value, bool, runtime.Completion) {
	nextFn, c := runtime.GetProperty(d.ctx.Store, d.ctx.Realm, iter.AsObject(), "next", iter)
	if c.IsAbrupt() {
		return runtime.Undefined, false, c
	}
	return d.callDelegateMethod(nextFn, iter, sent)
}

// callDelegateMethod calls fn(arg) against iter as `this` and unpacks
// the {value, done} iterator result.
func (d *Driver) callDelegateMethod(fn runtime.Value, iter runtime.Value, arg runtime.Value) (runtime.Value, bool, runtime.Completion) {
	result := d.ctx.Realm.Call(fn, iter, []runtime.Value{arg})
	if result.IsAbrupt() {
		return runtime.Undefined, false, result
	}
	step := result.Value
	if !step.IsObject() {
		return runtime.Undefined, false, d.ctx.Throw("TypeError", "Iterator result is not an object")
	}
	doneVal, c := runtime.GetProperty(d.ctx.Store, d.ctx.Realm, step.AsObject(), "done", step)
	if c.IsAbrupt() {
		return runtime.Undefined, false, c
	}
	if runtime.ToBoolean(doneVal) {
		v, c := runtime.GetProperty(d.ctx.Store, d.ctx.Realm, step.AsObject(), "value", step)
		return v, true, c
	}
	v, c := runtime.GetProperty(d.ctx.Store, d.ctx.Realm, step.AsObject(), "value", step)
	return v, false, c
}
