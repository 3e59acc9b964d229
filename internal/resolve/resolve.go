// Package resolve is the cross-module resolver: it turns the
// unqualified-name placeholders the per-language extractors leave behind
// (a callee FunctionId with Line == 0) into real call-graph edges, following
// the five-step resolution policy's "Resolution policy" note: same-
// file exact name, module-qualified candidates, trait/impl method tables,
// observer implementation tables, callback targets.
package resolve

import (
	"sort"
	"strings"
	"time"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/internal/closures"
	"github.com/ingoeichhorst/debtgraph/internal/observer"
	"github.com/ingoeichhorst/debtgraph/internal/traits"
	"github.com/ingoeichhorst/debtgraph/internal/validate"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// ModuleBoundary is one file's module record.
type ModuleBoundary struct {
	ModulePath    string
	FilePath      string
	ParentModule  string
	Submodules    []string
	PublicExports map[string]model.FunctionId // exported bare name -> definition
}

// Resolver owns the module-boundary tables and performs the link pass.
type Resolver struct {
	fileToModule map[string]string
	boundaries   map[string]*ModuleBoundary

	// sameFile indexes every defined (non-placeholder) function by
	// (file, bare name) for step 1 of the resolution policy.
	sameFile map[string][]model.FunctionId

	// globalByName indexes every exported function by its bare name across
	// all modules, the practical form module-qualified resolution takes
	// once extraction has already erased package-alias prefixes (the
	// extractors emit selector calls as bare method/function names).
	globalByName map[string][]model.FunctionId

	traits   *traits.Registry
	observer *observer.Registry
	closures *closures.Tracker

	debugger *validate.Debugger
}

// WithDebugger attaches a debugger to record every resolution attempt
// made during Link; passing nil disables recording.
func (r *Resolver) WithDebugger(d *validate.Debugger) *Resolver {
	r.debugger = d
	return r
}

// Unresolved records one callee placeholder the linker could not match
// (Candidates == 0) or linked to the first of several candidates
// (Candidates > 1), surfaced to the validator/debugger.
type Unresolved struct {
	Caller     model.FunctionId
	PlaceholderName string
	Candidates int
}

// NewResolver builds an empty resolver; call DiscoverFile for each file, then
// Link once after every file has been discovered.
func NewResolver(t *traits.Registry, o *observer.Registry, c *closures.Tracker) *Resolver {
	return &Resolver{
		fileToModule: make(map[string]string),
		boundaries:   make(map[string]*ModuleBoundary),
		sameFile:     make(map[string][]model.FunctionId),
		globalByName: make(map[string][]model.FunctionId),
		traits:       t,
		observer:     o,
		closures:     c,
	}
}

// DiscoverFile registers one file's module boundary and its exported
// functions. modulePath is the Go package path or the
// dotted Python package path derived from the file's directory.
func (r *Resolver) DiscoverFile(filePath, modulePath string) *ModuleBoundary {
	b, ok := r.boundaries[modulePath]
	if !ok {
		b = &ModuleBoundary{ModulePath: modulePath, FilePath: filePath, PublicExports: make(map[string]model.FunctionId)}
		r.boundaries[modulePath] = b
		if parent := parentModulePath(modulePath); parent != "" {
			b.ParentModule = parent
			if parentBoundary, ok := r.boundaries[parent]; ok {
				parentBoundary.Submodules = appendUnique(parentBoundary.Submodules, modulePath)
			}
		}
	}
	r.fileToModule[filePath] = modulePath
	return b
}

func parentModulePath(modulePath string) string {
	idx := strings.LastIndex(modulePath, "/")
	if idx < 0 {
		return ""
	}
	return modulePath[:idx]
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// IndexFunctions walks every defined function in the graph and populates the same-file
// and global-by-name indexes plus each module boundary's public_exports,
// using isExported to decide which definitions count as exported.
func (r *Resolver) IndexFunctions(graph *callgraph.Graph, isExported func(model.FunctionId) bool) {
	for _, id := range graph.FindAllFunctions() {
		if id.Unresolved() {
			continue
		}
		bareName := bareFunctionName(id.Name)
		fileKey := id.File + "\x00" + bareName
		r.sameFile[fileKey] = append(r.sameFile[fileKey], id)

		if !isExported(id) {
			continue
		}
		r.globalByName[bareName] = append(r.globalByName[bareName], id)
		if modulePath, ok := r.fileToModule[id.File]; ok {
			if b, ok := r.boundaries[modulePath]; ok {
				if _, exists := b.PublicExports[bareName]; !exists {
					b.PublicExports[bareName] = id
				}
			}
		}
	}
}

// bareFunctionName strips a "Type.method" or "outer.inner" qualifier down to
// its final segment, the form module-qualified candidate lookup matches
// against once the receiver-type qualifier is stripped.
func bareFunctionName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// Link runs the five-step resolution policy over every unresolved callee
// edge in the graph, reassigning each to its highest-confidence candidate
// via callgraph.Graph.ReplaceCallee. Calls that remain unresolved, and
// ambiguous calls linked to the first of several candidates, are returned
// for the validator/debugger.
func (r *Resolver) Link(graph *callgraph.Graph) []Unresolved {
	var unresolved []Unresolved

	placeholders := make(map[string]model.FunctionId)
	for _, id := range graph.FindAllFunctions() {
		if id.Unresolved() {
			placeholders[id.String()] = id
		}
	}

	for _, ph := range placeholders {
		callers := graph.GetCallers(ph)
		if len(callers) == 0 {
			if r.debugger != nil {
				r.debugger.Record(validate.Attempt{
					PlaceholderName: ph.Name,
					Strategy:        validate.StrategyExact,
					Failure:         validate.Failure{Kind: validate.FailureNotApplicable},
				})
			}
			continue
		}

		start := time.Now()
		candidates, strategy := r.resolveCandidatesDetailed(ph, callers[0])
		elapsed := time.Since(start)

		if len(candidates) == 0 {
			unresolved = append(unresolved, Unresolved{Caller: callers[0], PlaceholderName: ph.Name, Candidates: 0})
			if r.debugger != nil {
				r.debugger.Record(validate.Attempt{
					Caller: callers[0], PlaceholderName: ph.Name, Strategy: strategy,
					Failure: validate.Failure{Kind: validate.FailureNoCandidates}, Duration: elapsed,
				})
			}
			continue
		}

		best := candidates[0]
		graph.ReplaceCallee(ph, best)
		if len(candidates) > 1 {
			unresolved = append(unresolved, Unresolved{Caller: callers[0], PlaceholderName: ph.Name, Candidates: len(candidates)})
			if r.debugger != nil {
				r.debugger.Record(validate.Attempt{
					Caller: callers[0], PlaceholderName: ph.Name, Strategy: strategy,
					CandidateCount: len(candidates), Succeeded: true,
					Failure:  validate.Failure{Kind: validate.FailureAmbiguous, Detail: best.String()},
					Duration: elapsed,
				})
			}
		} else if r.debugger != nil {
			r.debugger.Record(validate.Attempt{
				Caller: callers[0], PlaceholderName: ph.Name, Strategy: strategy,
				CandidateCount: 1, Succeeded: true, Duration: elapsed,
			})
		}
	}

	sort.Slice(unresolved, func(i, j int) bool {
		return unresolved[i].Caller.String() < unresolved[j].Caller.String()
	})
	return unresolved
}

// resolveCandidatesDetailed runs the ordered five-step policy: same-file
// exact name, module-qualified (global-by-name) candidates, trait/impl
// method tables, observer implementation tables, callback targets. The
// first non-empty step wins. It also reports which debugger Strategy bucket the
// winning step belongs to: same-file/module-qualified name lookups are
// Exact, trait/observer method-table lookups are Fuzzy (they match by
// method name across a set of implementations rather than one precise
// definition site), and function-pointer/closure resolution is NameOnly
// (it has no type information at all, only the variable name).
func (r *Resolver) resolveCandidatesDetailed(ph model.FunctionId, caller model.FunctionId) ([]model.FunctionId, validate.Strategy) {
	bareName := bareFunctionName(ph.Name)

	if sameFile, ok := r.sameFile[ph.File+"\x00"+bareName]; ok && len(sameFile) > 0 {
		return sortedCopy(sameFile), validate.StrategyExact
	}

	if global, ok := r.globalByName[bareName]; ok && len(global) > 0 {
		return sortedCopy(global), validate.StrategyExact
	}

	if implType, method, ok := splitQualified(ph.Name); ok && r.traits != nil {
		if id, ok := r.traits.MethodID(implType, method); ok {
			return []model.FunctionId{id}, validate.StrategyFuzzy
		}
		var out []model.FunctionId
		for _, impl := range r.traits.Implementations(implType) {
			if id, ok := r.traits.MethodID(impl, method); ok {
				out = append(out, id)
			}
		}
		if len(out) > 0 {
			return sortedCopy(out), validate.StrategyFuzzy
		}
	}

	if r.observer != nil {
		if impls := r.observer.Implementations("", bareName); len(impls) > 0 {
			return sortedCopy(impls), validate.StrategyFuzzy
		}
	}

	if r.closures != nil {
		key := caller.String() + "|" + bareName
		if fp, ok := r.closures.FunctionPointers[key]; ok && len(fp.PossibleTargets) > 0 {
			return sortedCopy(fp.PossibleTargets), validate.StrategyNameOnly
		}
	}

	return nil, validate.StrategyNameOnly
}

func splitQualified(name string) (string, string, bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", "", false
	}
	return name[:idx], name[idx+1:], true
}

func sortedCopy(in []model.FunctionId) []model.FunctionId {
	out := make([]model.FunctionId, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// ApplyObserverDispatches materializes every detected observer-iteration
// call site into Direct edges against the registry's known
// implementations, independent of the placeholder-resolution pass above
// (dispatch calls are never emitted as unresolved placeholders; they are
// resolved eagerly since the extractor already knows the method name).
func ApplyObserverDispatches(graph *callgraph.Graph, reg *observer.Registry, dispatches []observer.Dispatch) {
	for _, d := range dispatches {
		for _, impl := range reg.ResolveEdges(d) {
			graph.AddCall(d.Caller, impl, model.CallDirect)
		}
	}
}
