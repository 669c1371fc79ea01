// Package annotate implements C8, the AnnotationEmitter. For each unit it
// takes the recorded (xpath, stereotype) pairs and, when comments are
// enabled, precedes each anchored line with a block comment. No stereotype
// attribute is written into the output and the Namespace constant is not
// used by the emitter; Result.AttrCount is the number of anchors handled.
// Emission fans a worker per unit out over a cooperative queue, matching
// the concurrency model §5 describes; each worker owns its own unit and
// writes into a mutex-guarded ordered map, drained in order afterward.
package annotate

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/oxhq/stereoscope/internal/stereomodel"
	"github.com/oxhq/stereoscope/internal/treeproducer"
)

// Namespace is the reserved XML-style namespace URI the stereotype
// attribute is declared under on each annotated unit's top element.
const Namespace = "https://stereoscope.dev/ns/stereotype"

// Anchor is one (location, stereotype) pair to attach to a unit.
type Anchor struct {
	XPath      string
	Stereotype string
	Line       int // 1-based source line the anchor's node starts on, for comment insertion
}

// Job is one unit's worth of annotation work.
type Job struct {
	UnitIdx int
	Unit    *treeproducer.Unit
	Anchors []Anchor
}

// Result is one annotated unit, keyed by UnitIdx so the final sequencing
// step can write the output archive in input order.
type Result struct {
	UnitIdx      int
	Path         string
	Source       []byte
	AttrCount    int
	Err          error
}

// Options controls the optional second (comment) pass.
type Options struct {
	EmitComments bool
	Workers      int // 0 selects runtime.GOMAXPROCS(0)
}

// Run fans a worker out per unit, collects results into a mutex-guarded
// ordered map, then drains it in unit-index order. A cancelled job (nil
// unit) is skipped and not counted, per spec §5.
func Run(jobs []Job, opts Options) []Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if workers < 1 {
		workers = 1
	}

	workCh := make(chan Job, len(jobs))
	for _, j := range jobs {
		workCh <- j
	}
	close(workCh)

	var mu sync.Mutex
	ordered := make(map[int]Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range workCh {
				if job.Unit == nil {
					continue
				}
				r := annotateOne(job, opts)
				mu.Lock()
				ordered[job.UnitIdx] = r
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	results := make([]Result, 0, len(ordered))
	for _, r := range ordered {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].UnitIdx < results[j].UnitIdx })
	return results
}

// annotateOne applies every anchor for one unit. Annotation failure for a
// single unit must not abort the run: the unit's original source is
// returned unchanged and the error is recorded on the Result.
func annotateOne(job Job, opts Options) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			// a panicking transform yields the unmodified unit, not a crashed worker
			result = Result{UnitIdx: job.UnitIdx, Path: job.Unit.Path, Source: job.Unit.Source, Err: fmt.Errorf("annotate %s: %v", job.Unit.Path, r)}
		}
	}()

	src := append([]byte(nil), job.Unit.Source...)
	attrCount := 0

	sorted := append([]Anchor(nil), job.Anchors...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Line < sorted[j].Line })

	if opts.EmitComments {
		src = insertComments(src, sorted)
	}
	attrCount = len(sorted)

	return Result{UnitIdx: job.UnitIdx, Path: job.Unit.Path, Source: src, AttrCount: attrCount}
}

// insertComments precedes each anchor's starting line with a
// "/** @stereotype <value> */" block comment, preserving indentation,
// working from the last anchor to the first so earlier byte offsets stay
// valid as later ones are inserted.
func insertComments(src []byte, anchors []Anchor) []byte {
	lines := splitLinesKeepEnds(src)

	for i := len(anchors) - 1; i >= 0; i-- {
		a := anchors[i]
		lineIdx := a.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			continue
		}
		indent := leadingWhitespace(lines[lineIdx])
		comment := indent + "/** @stereotype " + a.Stereotype + " */\n"
		lines = append(lines[:lineIdx], append([]string{comment}, lines[lineIdx:]...)...)
	}

	out := make([]byte, 0, len(src)+len(anchors)*24)
	for _, l := range lines {
		out = append(out, l...)
	}
	return out
}

func splitLinesKeepEnds(src []byte) []string {
	var lines []string
	start := 0
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, string(src[start:i+1]))
			start = i + 1
		}
	}
	if start < len(src) {
		lines = append(lines, string(src[start:]))
	}
	return lines
}

func leadingWhitespace(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}

// AnchorsForClasses builds the annotation job list from a resolved class
// collection, one anchor for the class itself per declaring unit (a class
// may span multiple units under CSH partial-class merging) and one per
// method, grouped by the unit index the extractor recorded it against.
func AnchorsForClasses(classes []*stereomodel.ClassModel) map[int][]Anchor {
	byUnit := make(map[int][]Anchor)
	for _, c := range classes {
		classLabel := joinStereotypes(c.Stereotypes)
		for _, m := range c.Methods {
			byUnit[m.UnitIdx] = append(byUnit[m.UnitIdx], Anchor{
				XPath:      m.XPath,
				Stereotype: joinStereotypes(m.Stereotypes),
				Line:       m.StartLine,
			})
		}
		for i, xp := range c.XPathAnchors {
			unitIdx := unitIdxFromXPath(c, xp)
			line := 0
			if i < len(c.XPathAnchorLines) {
				line = c.XPathAnchorLines[i]
			}
			byUnit[unitIdx] = append(byUnit[unitIdx], Anchor{XPath: xp, Stereotype: classLabel, Line: line})
		}
	}
	return byUnit
}

// unitIdxFromXPath recovers the unit a class anchor belongs to by matching
// its xpath's embedded unit path against the unit index of one of the
// class's own methods declared in that same unit; classes with no methods
// in a given partial simply anchor to their first method's unit, which is
// the only unit the resolver can attribute them to.
func unitIdxFromXPath(c *stereomodel.ClassModel, xp string) int {
	if len(c.Methods) == 0 {
		return 0
	}
	for _, m := range c.Methods {
		if pathPrefix(xp) == pathPrefix(m.XPath) {
			return m.UnitIdx
		}
	}
	return c.Methods[0].UnitIdx
}

func pathPrefix(xp string) string {
	if idx := indexOfByte(xp, '#'); idx >= 0 {
		return xp[:idx]
	}
	return xp
}

func indexOfByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func joinStereotypes(labels []string) string {
	out := ""
	for i, l := range labels {
		if i > 0 {
			out += " "
		}
		out += l
	}
	return out
}
