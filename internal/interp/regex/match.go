package regex

import "github.com/dlclark/regexp2"

// GroupMatch is one capture group's result (§4.9 "produces a match
// array with index, input, groups").
type GroupMatch struct {
	Present bool
	Start   int
	End     int
	Text    string
	Name    string
}

// MatchResult is one match of a Pattern against an input string.
type MatchResult struct {
	Index  int // start offset in runes (code points) of input, not UTF-16 code units
	End    int
	Text   string
	Groups []GroupMatch // index 0 is the whole match
}

// FindFrom finds the next match starting the search no earlier than
// from (a rune index into input); when anchored is true (sticky
// semantics) only a match beginning exactly at from counts.
func (p *Pattern) FindFrom(input string, from int, anchored bool) (*MatchResult, error) {
	runes := []rune(input)
	if from > len(runes) {
		return nil, nil
	}
	if p.Engine == EngineFancy {
		return p.findFancy(input, runes, from, anchored)
	}
	return p.findRE2(input, runes, from, anchored)
}

func (p *Pattern) findFancy(input string, runes []rune, from int, anchored bool) (*MatchResult, error) {
	search := string(runes[from:])
	m, err := p.fancy.FindStringMatch(search)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	if anchored && m.Index != 0 {
		return nil, nil
	}
	return p.buildFancyResult(m, from), nil
}

func (p *Pattern) buildFancyResult(m *regexp2.Match, offset int) *MatchResult {
	groups := m.Groups()
	result := &MatchResult{
		Index: offset + utf16ToRuneOffset(m.String(), m.Index, true),
		Text:  m.String(),
	}
	result.End = result.Index + len([]rune(m.String()))
	result.Groups = make([]GroupMatch, 0, len(groups))
	for i, g := range groups {
		gm := GroupMatch{Name: groupName(p, i)}
		if len(g.Captures) > 0 {
			cap := g.Captures[len(g.Captures)-1]
			gm.Present = true
			gm.Text = cap.String()
			gm.Start = offset + cap.Index
			gm.End = gm.Start + cap.Length
		}
		result.Groups = append(result.Groups, gm)
	}
	return result
}

func groupName(p *Pattern, idx int) string {
	if idx < len(p.GroupNames) {
		return p.GroupNames[idx]
	}
	return ""
}

// utf16ToRuneOffset is a no-op placeholder kept for clarity at the
// call site above: regexp2 already reports rune-based indices for Go
// strings, so byte/UTF-16 reconciliation is unnecessary here. Retained
// as a named seam in case a future engine reports UTF-16 offsets.
func utf16ToRuneOffset(_ string, idx int, _ bool) int { return idx }

func (p *Pattern) findRE2(input string, runes []rune, from int, anchored bool) (*MatchResult, error) {
	search := string(runes[from:])
	loc := p.re2.FindStringSubmatchIndex(search)
	if loc == nil {
		return nil, nil
	}
	if anchored && loc[0] != 0 {
		return nil, nil
	}
	searchRunes := []rune(search)
	byteToRune := make(map[int]int, len(searchRunes)+1)
	pos := 0
	for i, r := range search {
		byteToRune[i] = pos
		_ = r
		pos++
	}
	byteToRune[len(search)] = len(searchRunes)

	result := &MatchResult{
		Index: from + byteToRune[loc[0]],
	}
	result.End = from + byteToRune[loc[1]]
	result.Text = search[loc[0]:loc[1]]
	names := p.re2.SubexpNames()
	groupCount := len(loc) / 2
	result.Groups = make([]GroupMatch, 0, groupCount)
	for i := 0; i < groupCount; i++ {
		s, e := loc[2*i], loc[2*i+1]
		gm := GroupMatch{}
		if i < len(names) {
			gm.Name = names[i]
		}
		if s >= 0 {
			gm.Present = true
			gm.Text = search[s:e]
			gm.Start = from + byteToRune[s]
			gm.End = from + byteToRune[e]
		}
		result.Groups = append(result.Groups, gm)
	}
	return result, nil
}

// Test reports whether the pattern matches anywhere in input.
func (p *Pattern) Test(input string) (bool, error) {
	m, err := p.FindFrom(input, 0, false)
	return m != nil, err
}
