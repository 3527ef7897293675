package regex

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-ecma/internal/interp/runtime"
)

// Compiled lazily compiles (and caches on the object's RegExpData) the
// Pattern backing a RegExp instance, so repeated exec()/test() calls on
// the same literal reuse one compiled engine (§4.9).
func Compiled(store *runtime.Store, handle runtime.Handle) (*Pattern, error) {
	obj := store.Get(handle)
	if obj == nil || obj.RegExpData == nil {
		return nil, nil
	}
	if p, ok := obj.RegExpData.Compiled.(*Pattern); ok && p != nil {
		return p, nil
	}
	p, err := Compile(obj.RegExpData.Source, obj.RegExpData.Flags)
	if err != nil {
		return nil, err
	}
	obj.RegExpData.Compiled = p
	return p, nil
}

// Exec implements RegExp.prototype.exec (§4.9 "exec"): advances
// lastIndex for `g`/`y`, producing a match array with `index`, `input`,
// `groups`, and (when the `d` flag is set) per-group `indices`, or Null
// on no match.
func Exec(ctx runtime.NativeContext, handle runtime.Handle, objectPrototype runtime.Handle, input string) (runtime.Value, runtime.Completion) {
	obj := ctx.Store().Get(handle)
	if obj == nil || obj.RegExpData == nil {
		return runtime.Undefined, ctx.ThrowTypeError("not a RegExp object")
	}
	p, err := Compiled(ctx.Store(), handle)
	if err != nil {
		return runtime.Undefined, ctx.ThrowTypeError("Invalid regular expression: %s", err.Error())
	}

	start := 0
	useLastIndex := p.Global || p.Sticky
	if useLastIndex {
		start = obj.RegExpData.LastIndex
	}
	if start < 0 || start > len([]rune(input)) {
		obj.RegExpData.LastIndex = 0
		return runtime.Null, runtime.NormalCompletion(runtime.Undefined)
	}

	m, err := p.FindFrom(input, start, p.Sticky)
	if err != nil {
		return runtime.Undefined, ctx.ThrowTypeError("regular expression match failed: %s", err.Error())
	}
	if m == nil {
		if useLastIndex {
			obj.RegExpData.LastIndex = 0
		}
		return runtime.Null, runtime.NormalCompletion(runtime.Undefined)
	}
	if useLastIndex {
		if m.End == m.Index {
			obj.RegExpData.LastIndex = m.End + 1
		} else {
			obj.RegExpData.LastIndex = m.End
		}
	}
	return buildMatchArray(ctx, p, m, input, objectPrototype), runtime.NormalCompletion(runtime.Undefined)
}

// buildMatchArray assembles the `{0: full, 1: group1, ..., index,
// input, groups}` array the spec's exec/match/matchAll/split/replace
// methods all share.
func buildMatchArray(ctx runtime.NativeContext, p *Pattern, m *MatchResult, input string, objectPrototype runtime.Handle) runtime.Value {
	values := make([]runtime.Value, 0, len(m.Groups))
	for _, g := range m.Groups {
		if g.Present {
			values = append(values, runtime.String(g.Text))
		} else {
			values = append(values, runtime.Undefined)
		}
	}
	arrVal := ctx.NewArray(values)
	arrObj := ctx.Store().Get(arrVal.AsObject())
	arrObj.Properties.Set("index", runtime.DataDescriptorPtr(runtime.Number(float64(m.Index)), true, true, true))
	arrObj.Properties.Set("input", runtime.DataDescriptorPtr(runtime.String(input), true, true, true))

	hasNamed := false
	for _, g := range m.Groups {
		if g.Name != "" {
			hasNamed = true
			break
		}
	}
	groupsVal := runtime.Undefined
	if hasNamed {
		gh := ctx.Store().NewOrdinaryObject(runtime.NoHandle, false)
		gObj := ctx.Store().Get(gh)
		for _, g := range m.Groups {
			if g.Name == "" {
				continue
			}
			v := runtime.Undefined
			if g.Present {
				v = runtime.String(g.Text)
			}
			gObj.Properties.Set(g.Name, runtime.DataDescriptorPtr(v, true, true, true))
		}
		groupsVal = runtime.Object(gh)
	}
	arrObj.Properties.Set("groups", runtime.DataDescriptorPtr(groupsVal, true, true, true))

	if p.HasIndices {
		indicesVals := make([]runtime.Value, 0, len(m.Groups))
		for _, g := range m.Groups {
			if !g.Present {
				indicesVals = append(indicesVals, runtime.Undefined)
				continue
			}
			pair := ctx.NewArray([]runtime.Value{runtime.Number(float64(g.Start)), runtime.Number(float64(g.End))})
			indicesVals = append(indicesVals, pair)
		}
		indicesArr := ctx.NewArray(indicesVals)
		arrObj.Properties.Set("indices", runtime.DataDescriptorPtr(indicesArr, true, true, true))
	}
	return arrVal
}

// Test implements RegExp.prototype.test (§4.9 "test"): exec plus a
// boolean coercion, sharing lastIndex-advance semantics.
func Test(ctx runtime.NativeContext, handle runtime.Handle, objectPrototype runtime.Handle, input string) (bool, runtime.Completion) {
	v, c := Exec(ctx, handle, objectPrototype, input)
	if c.IsAbrupt() {
		return false, c
	}
	return !v.IsNull(), runtime.NormalCompletion(runtime.Undefined)
}

// MatchAllStrings implements @@match/@@matchAll's full-scan behaviour
// (§4.9 "@@match... global returns an array of full matches"):
// repeatedly execs from lastIndex, collecting whole-match strings
// until no match remains, resetting lastIndex to 0 first.
func MatchAllStrings(ctx runtime.NativeContext, handle runtime.Handle, input string) ([]string, runtime.Completion) {
	obj := ctx.Store().Get(handle)
	p, err := Compiled(ctx.Store(), handle)
	if err != nil {
		return nil, ctx.ThrowTypeError("Invalid regular expression: %s", err.Error())
	}
	obj.RegExpData.LastIndex = 0
	var out []string
	for {
		m, err := p.FindFrom(input, obj.RegExpData.LastIndex, p.Sticky)
		if err != nil {
			return nil, ctx.ThrowTypeError("regular expression match failed: %s", err.Error())
		}
		if m == nil {
			break
		}
		out = append(out, m.Text)
		if m.End == m.Index {
			obj.RegExpData.LastIndex = m.End + 1
		} else {
			obj.RegExpData.LastIndex = m.End
		}
		if obj.RegExpData.LastIndex > len([]rune(input)) {
			break
		}
	}
	return out, runtime.NormalCompletion(runtime.Undefined)
}

// MatchAllResults collects @@matchAll's match results (§4.9) eagerly
// into a slice. It builds no iterator, and nothing in this repository
// calls it.
func MatchAllResults(ctx runtime.NativeContext, handle runtime.Handle, objectPrototype runtime.Handle, input string) ([]runtime.Value, runtime.Completion) {
	obj := ctx.Store().Get(handle)
	p, err := Compiled(ctx.Store(), handle)
	if err != nil {
		return nil, ctx.ThrowTypeError("Invalid regular expression: %s", err.Error())
	}
	pos := 0
	var out []runtime.Value
	for {
		m, err := p.FindFrom(input, pos, false)
		if err != nil {
			return nil, ctx.ThrowTypeError("regular expression match failed: %s", err.Error())
		}
		if m == nil {
			break
		}
		out = append(out, buildMatchArray(ctx, p, m, input, objectPrototype))
		if !p.Global {
			break
		}
		if m.End == m.Index {
			pos = m.End + 1
		} else {
			pos = m.End
		}
		if pos > len([]rune(input)) {
			break
		}
	}
	_ = obj
	return out, runtime.NormalCompletion(runtime.Undefined)
}

// Search implements @@search (§4.9 "@@search"): returns the index of
// the first match or -1, saving and restoring lastIndex around the
// call since search ignores `g`/`y` state.
func Search(ctx runtime.NativeContext, handle runtime.Handle, input string) (int, runtime.Completion) {
	obj := ctx.Store().Get(handle)
	p, err := Compiled(ctx.Store(), handle)
	if err != nil {
		return -1, ctx.ThrowTypeError("Invalid regular expression: %s", err.Error())
	}
	saved := obj.RegExpData.LastIndex
	obj.RegExpData.LastIndex = 0
	m, err := p.FindFrom(input, 0, false)
	obj.RegExpData.LastIndex = saved
	if err != nil {
		return -1, ctx.ThrowTypeError("regular expression match failed: %s", err.Error())
	}
	if m == nil {
		return -1, runtime.NormalCompletion(runtime.Undefined)
	}
	return m.Index, runtime.NormalCompletion(runtime.Undefined)
}

// Replace implements @@replace's literal-replacement-string path
// (§4.9 "$$, $&, $`, $', $<name>, $n, $nn"); replacement is the already-
// resolved substitution template. When p.Global is set every match is
// replaced, otherwise only the first.
func Replace(ctx runtime.NativeContext, handle runtime.Handle, input, replacement string) (string, runtime.Completion) {
	p, err := Compiled(ctx.Store(), handle)
	if err != nil {
		return "", ctx.ThrowTypeError("Invalid regular expression: %s", err.Error())
	}
	var b strings.Builder
	pos := 0
	last := 0
	for {
		m, err := p.FindFrom(input, pos, false)
		if err != nil {
			return "", ctx.ThrowTypeError("regular expression match failed: %s", err.Error())
		}
		if m == nil {
			break
		}
		runes := []rune(input)
		b.WriteString(string(runes[last:m.Index]))
		b.WriteString(expandReplacement(replacement, m, input))
		last = m.End
		if !p.Global {
			break
		}
		if m.End == m.Index {
			pos = m.End + 1
		} else {
			pos = m.End
		}
		if pos > len(runes) {
			break
		}
	}
	runes := []rune(input)
	if last <= len(runes) {
		b.WriteString(string(runes[last:]))
	}
	return b.String(), runtime.NormalCompletion(runtime.Undefined)
}

// expandReplacement resolves `$$`, `$&`, `` $` ``, `$'`, `$<name>`,
// `$n`, `$nn` against one match (§4.9 "@@replace").
func expandReplacement(tpl string, m *MatchResult, input string) string {
	runes := []rune(tpl)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		if runes[i] != '$' || i+1 >= len(runes) {
			b.WriteRune(runes[i])
			continue
		}
		next := runes[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '&':
			b.WriteString(m.Text)
			i++
		case next == '`':
			b.WriteString(string([]rune(input)[:m.Index]))
			i++
		case next == '\'':
			b.WriteString(string([]rune(input)[m.End:]))
			i++
		case next == '<':
			end := indexRune(runes, '>', i+2)
			if end > 0 {
				name := string(runes[i+2 : end])
				for _, g := range m.Groups {
					if g.Name == name && g.Present {
						b.WriteString(g.Text)
					}
				}
				i = end
			} else {
				b.WriteRune(next)
				i++
			}
		case isDigit(next):
			j := i + 1
			for j < len(runes) && isDigit(runes[j]) && j-i <= 2 {
				j++
			}
			numStr := string(runes[i+1 : j])
			n, _ := strconv.Atoi(numStr)
			if n > 0 && n < len(m.Groups) {
				if m.Groups[n].Present {
					b.WriteString(m.Groups[n].Text)
				}
				i = j - 1
			} else if len(numStr) == 2 {
				n1, _ := strconv.Atoi(numStr[:1])
				if n1 > 0 && n1 < len(m.Groups) {
					if m.Groups[n1].Present {
						b.WriteString(m.Groups[n1].Text)
					}
					i = i + 1
				} else {
					b.WriteByte('$')
				}
			} else {
				b.WriteByte('$')
			}
		default:
			b.WriteByte('$')
		}
	}
	return b.String()
}

// Split implements @@split (§4.9 "@@split"): splits input on every
// match, carefully advancing one position past a zero-width match so
// the loop always makes progress.
func Split(ctx runtime.NativeContext, handle runtime.Handle, input string, limit int) ([]string, runtime.Completion) {
	p, err := Compiled(ctx.Store(), handle)
	if err != nil {
		return nil, ctx.ThrowTypeError("Invalid regular expression: %s", err.Error())
	}
	runes := []rune(input)
	if len(runes) == 0 {
		if ok, _ := p.Test(""); ok {
			return []string{}, runtime.NormalCompletion(runtime.Undefined)
		}
		return []string{""}, runtime.NormalCompletion(runtime.Undefined)
	}
	var out []string
	last := 0
	pos := 0
	for pos < len(runes) {
		m, err := p.FindFrom(input, pos, false)
		if err != nil {
			return nil, ctx.ThrowTypeError("regular expression match failed: %s", err.Error())
		}
		if m == nil {
			break
		}
		if m.End == last {
			pos = m.Index + 1
			continue
		}
		if m.Index >= len(runes) {
			break
		}
		out = append(out, string(runes[last:m.Index]))
		for _, g := range m.Groups[1:] {
			if g.Present {
				out = append(out, g.Text)
			} else {
				out = append(out, "")
			}
		}
		last = m.End
		if m.End == m.Index {
			pos = m.End + 1
		} else {
			pos = m.End
		}
		if limit >= 0 && len(out) >= limit {
			return out[:limit], runtime.NormalCompletion(runtime.Undefined)
		}
	}
	out = append(out, string(runes[last:]))
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, runtime.NormalCompletion(runtime.Undefined)
}
