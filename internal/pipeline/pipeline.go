// Package pipeline orchestrates one debtgraph analysis run end to end:
// discover -> parse -> extract (parallel per file) -> merge -> resolve ->
// coverage join -> purity fixed point -> classify -> score -> filter ->
// render, advancing the workflow state machine at each
// phase boundary.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ingoeichhorst/debtgraph/internal/cache"
	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/internal/closures"
	"github.com/ingoeichhorst/debtgraph/internal/correlate"
	"github.com/ingoeichhorst/debtgraph/internal/coverage"
	"github.com/ingoeichhorst/debtgraph/internal/debt"
	"github.com/ingoeichhorst/debtgraph/internal/discovery"
	"github.com/ingoeichhorst/debtgraph/internal/extract/goext"
	"github.com/ingoeichhorst/debtgraph/internal/extract/pyext"
	"github.com/ingoeichhorst/debtgraph/internal/filterrank"
	"github.com/ingoeichhorst/debtgraph/internal/history"
	"github.com/ingoeichhorst/debtgraph/internal/metrics"
	"github.com/ingoeichhorst/debtgraph/internal/observer"
	"github.com/ingoeichhorst/debtgraph/internal/output"
	"github.com/ingoeichhorst/debtgraph/internal/parsefrontend"
	"github.com/ingoeichhorst/debtgraph/internal/purity"
	"github.com/ingoeichhorst/debtgraph/internal/resolve"
	"github.com/ingoeichhorst/debtgraph/internal/scoring"
	"github.com/ingoeichhorst/debtgraph/internal/traits"
	"github.com/ingoeichhorst/debtgraph/internal/validate"
	"github.com/ingoeichhorst/debtgraph/internal/workflow"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
	"github.com/ingoeichhorst/debtgraph/pkg/version"
)

// Pipeline runs one analysis over a project directory.
type Pipeline struct {
	verbose    bool
	writer     io.Writer
	cfg        scoring.Config
	jsonOutput bool
	onProgress ProgressFunc

	coveragePath string
	cacheDir     string
	topN         int

	parser     goParser
	tsParser   pythonParser
	correlator *correlate.Correlator
}

// New creates a Pipeline. If cfg is nil, scoring.DefaultConfig is used. If
// onProgress is nil, a no-op is used. The Tree-sitter parser is created
// lazily on first Python target; if it cannot be created, Python analysis
// is skipped with a diagnostic.
func New(w io.Writer, verbose bool, cfg *scoring.Config, jsonOutput bool, onProgress ProgressFunc) *Pipeline {
	c := scoring.DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if onProgress == nil {
		onProgress = func(string, string) {}
	}
	return &Pipeline{
		verbose:    verbose,
		writer:     w,
		cfg:        c,
		jsonOutput: jsonOutput,
		onProgress: onProgress,
		parser:     &parsefrontend.GoPackagesParser{},
		correlator: correlate.New(nil),
	}
}

// SetCoveragePath points the run at an LCOV tracefile.
func (p *Pipeline) SetCoveragePath(path string) { p.coveragePath = path }

// SetCacheDir enables the optional purity cache under dir.
func (p *Pipeline) SetCacheDir(dir string) { p.cacheDir = dir }

// SetTopN bounds the number of function items kept in the final result.
func (p *Pipeline) SetTopN(n int) { p.topN = n }

// Run executes Analyze and renders the result to the pipeline's writer.
func (p *Pipeline) Run(dir string) error {
	result, err := p.Analyze(dir)
	if err != nil {
		return err
	}
	if p.jsonOutput {
		return output.RenderJSON(p.writer, output.BuildJSONReport(result))
	}
	output.RenderAnalysis(p.writer, result, p.verbose)
	return nil
}

// extraction is the merged product of the per-file extraction fan-out.
type extraction struct {
	graph         *callgraph.Graph
	closures      *closures.Tracker
	metrics       map[string]metrics.FuncMetrics
	dispatches    []observer.Dispatch
	fieldBindings []observer.FieldBinding
	fieldCounts   map[string]int

	goPkgs  []*parsefrontend.ParsedPackage
	pyFiles []*parsefrontend.ParsedTreeSitterFile
}

// Analyze runs the full pipeline and returns the accumulated result.
func (p *Pipeline) Analyze(dir string) (*model.AnalysisResult, error) {
	machine := workflow.NewMachine()
	result := &model.AnalysisResult{Version: version.Version}

	// Phase: discovery.
	p.progress(machine, "Scanning files...")
	walker := discovery.NewWalker()
	scan, err := walker.Discover(dir)
	if err != nil {
		return nil, err
	}
	langs := discovery.DetectProjectLanguages(dir)
	if len(langs) == 0 {
		return nil, &model.ExitError{Code: 1, Message: fmt.Sprintf("no recognized source files found in %s (supported: Go, Python)", dir)}
	}

	// Phase: call graph.
	p.advance(machine, workflow.CallGraphBuilding, "Building call graph...")
	defer func() {
		if p.tsParser != nil {
			p.tsParser.Close()
			p.tsParser = nil
		}
	}()
	ext, diags, err := p.extract(dir, scan, langs)
	if err != nil {
		return nil, err
	}
	defer parsefrontend.CloseAll(ext.pyFiles)
	result.Diagnostics = append(result.Diagnostics, diags...)

	traitReg := p.buildTraits(ext)
	traitReg.MarkDispatchable(ext.graph)

	obsReg := buildObserverRegistry(ext.graph, ext.fieldBindings)

	debugger := validate.NewDebugger()
	resolver := resolve.NewResolver(traitReg, obsReg, ext.closures).WithDebugger(debugger)
	discoverModules(resolver, scan)
	resolver.IndexFunctions(ext.graph, func(id model.FunctionId) bool {
		return ext.metrics[id.String()].Visibility != model.VisPrivate
	})
	unresolved := resolver.Link(ext.graph)
	resolve.ApplyObserverDispatches(ext.graph, obsReg, ext.dispatches)
	for _, u := range unresolved {
		result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
			File:     u.Caller.File,
			Severity: model.SeverityInfo,
			Reason:   fmt.Sprintf("unresolved call to %q from %s (%d candidates)", u.PlaceholderName, u.Caller.Name, u.Candidates),
			Hint:     "resolution attempts are recorded in the debug report",
		})
	}
	p.advance(machine, workflow.CallGraphComplete, "Call graph complete")

	// Phase: coverage.
	p.advance(machine, workflow.CoverageLoading, "Loading coverage...")
	covSource, covDiag := p.loadCoverage()
	if covDiag != nil {
		result.Diagnostics = append(result.Diagnostics, *covDiag)
	}
	covMap := coverage.NewPropagator(ext.graph, covSource).PropagateAll()
	if overall, ok := coverage.OverallCoverage(covMap); ok {
		result.OverallCoverage = overall
		result.HasOverallCoverage = true
	}
	p.advance(machine, workflow.CoverageComplete, "Coverage joined")

	// Phase: purity.
	p.advance(machine, workflow.PurityAnalyzing, "Analyzing purity...")
	purityLevels := p.analyzePurity(dir, scan, ext)
	p.advance(machine, workflow.PurityComplete, "Purity complete")

	// Phase: context (repository history / churn signal).
	p.advance(machine, workflow.ContextLoading, "Loading repository history...")
	churn := history.Load(dir, 0)
	p.advance(machine, workflow.ContextComplete, "Context loaded")

	// Phase: scoring.
	p.advance(machine, workflow.ScoringInProgress, "Scoring functions...")
	aggregator := debt.NewAggregator()
	classifier := debt.NewClassifier(ext.graph, ext.metrics, covMap, traitReg, ext.closures, obsReg, ext.fieldCounts, p.cfg)
	items, isTest := p.scoreAll(dir, ext, classifier, aggregator, covMap, purityLevels, churn)
	p.advance(machine, workflow.ScoringComplete, "Scoring complete")

	// Phase: filtering.
	p.advance(machine, workflow.FilteringInProgress, "Filtering and ranking...")
	kept, stats := filterrank.Filter(items, isTest, p.cfg)
	ranked := filterrank.Rank(kept)
	if p.topN > 0 {
		ranked = filterrank.TopN(ranked, p.topN)
	}
	result.FunctionItems = ranked
	result.FilterStats = stats
	result.TotalDebtScore = filterrank.TotalDebtScore(ranked)
	result.TotalLinesOfCode = totalLines(ext.graph)

	report := validate.Validate(ext.graph)
	for _, issue := range report.Issues {
		result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
			Severity: model.SeverityWarning,
			Reason:   fmt.Sprintf("%s: %s", issue.Kind, issue.Description),
		})
	}
	if p.verbose {
		for _, warn := range report.Warnings {
			result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
				Severity: model.SeverityInfo,
				Reason:   fmt.Sprintf("%s: %s", warn.Kind, warn.Description),
			})
		}
		fmt.Fprint(p.writer, debugger.TextReport())
	}

	p.advance(machine, workflow.Complete, "Done")
	return result, nil
}

func (p *Pipeline) progress(machine *workflow.Machine, detail string) {
	p.onProgress(machine.Current().TUIStageIndex().String(), detail)
}

// advance moves the workflow machine and reports progress; an illegal
// transition is a programming error, surfaced loudly in verbose mode but
// never fatal to the run.
func (p *Pipeline) advance(machine *workflow.Machine, to workflow.Phase, detail string) {
	if err := machine.Advance(to); err != nil && p.verbose {
		fmt.Fprintf(p.writer, "Warning: %v\n", err)
	}
	p.progress(machine, detail)
}

// extract fans per-file extraction out over a work pool: Go packages
// are one unit (go/packages loads a whole module), each Python file is its
// own unit, and every worker merges into the shared concurrent graph.
func (p *Pipeline) extract(dir string, scan *model.ScanResult, langs []model.Language) (*extraction, []model.Diagnostic, error) {
	ext := &extraction{
		graph:       callgraph.New(),
		closures:    closures.NewTracker(),
		metrics:     make(map[string]metrics.FuncMetrics),
		fieldCounts: make(map[string]int),
	}
	var diags []model.Diagnostic
	var mu sync.Mutex

	hasGo, hasPython := false, false
	for _, l := range langs {
		switch l {
		case model.LangGo:
			hasGo = true
		case model.LangPython:
			hasPython = true
		}
	}

	g := new(errgroup.Group)

	if hasGo {
		g.Go(func() error {
			pkgs, warnings, err := p.parser.Parse(dir)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				diags = append(diags, model.Diagnostic{
					Severity: model.SeverityError,
					Reason:   fmt.Sprintf("Go parsing failed: %v", err),
					Hint:     "run `go build ./...` to see the underlying errors",
				})
				return nil
			}
			for _, warning := range warnings {
				diags = append(diags, model.Diagnostic{Severity: model.SeverityWarning, Reason: warning})
			}
			ext.goPkgs = pkgs
			res := goext.Extract(pkgs)
			ext.graph.Merge(res.Graph)
			ext.closures.Merge(res.Closures)
			for k, v := range res.Metrics {
				ext.metrics[k] = v
			}
			for k, v := range res.FieldCounts {
				ext.fieldCounts[k] = v
			}
			diags = append(diags, res.Diagnostics...)
			return nil
		})
	}

	if hasPython {
		tsParser := p.tsParser
		if tsParser == nil {
			created, err := parsefrontend.NewTreeSitterParser()
			if err != nil {
				mu.Lock()
				diags = append(diags, model.Diagnostic{
					Severity: model.SeverityWarning,
					Reason:   fmt.Sprintf("Tree-sitter unavailable, skipping Python analysis: %v", err),
				})
				mu.Unlock()
				hasPython = false
			} else {
				tsParser = created
				p.tsParser = created
			}
		}

		if hasPython {
			var pyFiles []model.DiscoveredFile
			for _, df := range scan.Files {
				if df.Language == model.LangPython && (df.Class == model.ClassSource || df.Class == model.ClassTest) {
					pyFiles = append(pyFiles, df)
				}
			}
			for _, df := range pyFiles {
				df := df
				g.Go(func() error {
					parsed, err := tsParser.ParseTargetFiles(&model.AnalysisTarget{
						Language: model.LangPython,
						Files:    []model.DiscoveredFile{df},
					})
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						// One unreadable file never aborts the run.
						diags = append(diags, model.Diagnostic{
							File:     df.RelPath,
							Severity: model.SeverityError,
							Reason:   fmt.Sprintf("parse failed: %v", err),
							Hint:     "file skipped; analysis continues",
						})
						return nil
					}
					ext.pyFiles = append(ext.pyFiles, parsed...)
					res := pyext.Extract(parsed)
					ext.graph.Merge(res.Graph)
					ext.closures.Merge(res.Closures)
					for k, v := range res.Metrics {
						ext.metrics[k] = v
					}
					ext.dispatches = append(ext.dispatches, res.Dispatches...)
					ext.fieldBindings = append(ext.fieldBindings, res.FieldBindings...)
					for k, v := range res.FieldCounts {
						ext.fieldCounts[k] = v
					}
					return nil
				})
			}
		}
	}

	_ = g.Wait()

	if ext.graph.IsEmpty() {
		return nil, diags, &model.ExitError{Code: 1, Message: "no inputs: every source file failed to parse"}
	}
	return ext, diags, nil
}

func (p *Pipeline) buildTraits(ext *extraction) *traits.Registry {
	reg := traits.NewRegistry()
	if len(ext.goPkgs) > 0 {
		merge := traits.BuildFromGo(ext.goPkgs)
		mergeTraitRegistries(reg, merge)
	}
	if len(ext.pyFiles) > 0 {
		merge := traits.BuildFromPython(ext.pyFiles)
		mergeTraitRegistries(reg, merge)
	}
	return reg
}

func mergeTraitRegistries(dst, src *traits.Registry) {
	src.ForEachImpl(func(implType, method string, id model.FunctionId) {
		dst.RegisterImpl(implType, method, id)
	})
	src.ForEachTrait(func(traitName, implType string) {
		dst.RegisterTraitImpl(traitName, implType)
	})
}

// buildObserverRegistry registers every receiver-qualified method in the
// graph as a dispatch candidate under its class name, so the unknown-
// interface fallback ("every *.m implementation") has a table to resolve
// against, plus every class.field -> interface binding discovered during
// extraction (typed collection attributes) so the registered-interface
// confidence band in observer.NewDispatch is reachable end-to-end.
func buildObserverRegistry(graph *callgraph.Graph, fieldBindings []observer.FieldBinding) *observer.Registry {
	reg := observer.NewRegistry()
	for _, id := range graph.FindAllFunctions() {
		idx := strings.LastIndex(id.Name, ".")
		if idx <= 0 || strings.HasPrefix(id.Name, "<closure") {
			continue
		}
		class, method := id.Name[:idx], id.Name[idx+1:]
		reg.RegisterImplementation(class, method, id)
		reg.RegisterClassInterface(class, class)
	}
	for _, b := range fieldBindings {
		reg.RegisterObserverField(b.Class, b.Field, b.Interface)
	}
	return reg
}

func discoverModules(resolver *resolve.Resolver, scan *model.ScanResult) {
	for _, df := range scan.Files {
		if df.Class != model.ClassSource && df.Class != model.ClassTest {
			continue
		}
		modulePath := filepath.ToSlash(filepath.Dir(df.RelPath))
		if modulePath == "." {
			modulePath = ""
		}
		if df.Language == model.LangPython {
			modulePath = strings.ReplaceAll(modulePath, "/", ".")
		}
		resolver.DiscoverFile(df.RelPath, modulePath)
	}
}

func (p *Pipeline) loadCoverage() (coverage.Source, *model.Diagnostic) {
	if p.coveragePath == "" {
		return coverage.NoCoverage{}, nil
	}
	f, err := os.Open(p.coveragePath)
	if err != nil {
		return coverage.NoCoverage{}, &model.Diagnostic{
			File:     p.coveragePath,
			Severity: model.SeverityWarning,
			Reason:   fmt.Sprintf("cannot read coverage file: %v", err),
			Hint:     "analysis continues without coverage",
		}
	}
	defer f.Close()
	src, err := coverage.ParseLCOV(f)
	if err != nil {
		return coverage.NoCoverage{}, &model.Diagnostic{
			File:     p.coveragePath,
			Severity: model.SeverityWarning,
			Reason:   fmt.Sprintf("cannot parse LCOV tracefile: %v", err),
			Hint:     "analysis continues without coverage",
		}
	}
	return src, nil
}

// analyzePurity gathers local signals per language, consults the optional
// purity cache, and runs the fixed-point propagation.
func (p *Pipeline) analyzePurity(dir string, scan *model.ScanResult, ext *extraction) map[string]model.PurityLevel {
	signals := make(map[string]purity.LocalSignals)
	if len(ext.goPkgs) > 0 {
		for k, v := range purity.AnalyzeGo(ext.goPkgs) {
			signals[k] = v
		}
	}
	if len(ext.pyFiles) > 0 {
		for k, v := range purity.AnalyzePython(ext.pyFiles) {
			signals[k] = v
		}
	}

	var levels map[string]model.PurityLevel
	if p.cacheDir != "" {
		cached := p.loadCachedPurity(dir, scan, ext)
		levels = purity.NewAnalyzer(ext.graph).PropagateWithCache(signals, cached)
		p.persistPurity(dir, scan, ext, levels)
	} else {
		levels = purity.NewAnalyzer(ext.graph).Propagate(signals)
	}
	return levels
}

// loadCachedPurity reads through the purity cache for every resolved
// function, keeping only entries whose source hash and deps hash still
// match what's on disk now; a cache miss (corrupt file, version mismatch,
// or a stale entry) simply contributes nothing and the caller recomputes
// it locally.
func (p *Pipeline) loadCachedPurity(dir string, scan *model.ScanResult, ext *extraction) map[string]model.PurityLevel {
	store, err := cache.Open(p.cacheDir)
	if err != nil {
		if p.verbose {
			fmt.Fprintf(p.writer, "Warning: purity cache unavailable: %v\n", err)
		}
		return nil
	}
	defer store.Close()

	fileHashes, depsHash := hashSources(scan)
	cached := make(map[string]model.PurityLevel)
	for _, id := range ext.graph.FindAllFunctions() {
		if id.Unresolved() {
			continue
		}
		sourceHash, ok := fileHashes[projectRelPath(dir, id.File)]
		if !ok {
			continue
		}
		entry, ok := store.GetPurity(id, sourceHash, depsHash)
		if !ok {
			continue
		}
		cached[id.String()] = entry.Result
	}
	return cached
}

// persistPurity writes the final purity classifications through the cache.
// The deps hash is a run-level digest of the sorted source-file list: any
// file added or removed conservatively invalidates every entry on the next
// run.
func (p *Pipeline) persistPurity(dir string, scan *model.ScanResult, ext *extraction, levels map[string]model.PurityLevel) {
	store, err := cache.Open(p.cacheDir)
	if err != nil {
		if p.verbose {
			fmt.Fprintf(p.writer, "Warning: purity cache unavailable: %v\n", err)
		}
		return
	}
	defer store.Close()

	fileHashes, depsHash := hashSources(scan)
	for _, id := range ext.graph.FindAllFunctions() {
		if id.Unresolved() {
			continue
		}
		level, ok := levels[id.String()]
		if !ok {
			continue
		}
		sourceHash, ok := fileHashes[projectRelPath(dir, id.File)]
		if !ok {
			continue
		}
		entry := cache.PurityEntry{
			Result:     level,
			SourceHash: sourceHash,
			DepsHash:   depsHash,
			FileMtime:  fileMtime(filepath.Join(dir, projectRelPath(dir, id.File))),
		}
		if err := store.PutPurity(id, entry); err != nil && p.verbose {
			fmt.Fprintf(p.writer, "Warning: purity cache write: %v\n", err)
		}
	}
}

func hashSources(scan *model.ScanResult) (map[string]string, string) {
	hashes := make(map[string]string)
	var paths []string
	for _, df := range scan.Files {
		if df.Class != model.ClassSource && df.Class != model.ClassTest {
			continue
		}
		paths = append(paths, df.RelPath)
		content, err := os.ReadFile(df.Path)
		if err != nil {
			continue
		}
		sum := sha256.Sum256(content)
		hashes[df.RelPath] = hex.EncodeToString(sum[:8])
	}
	sort.Strings(paths)
	sum := sha256.Sum256([]byte(strings.Join(paths, "\n")))
	return hashes, hex.EncodeToString(sum[:8])
}

// projectRelPath normalizes a function's file path (absolute for go/packages
// loads, already-relative for Python files) to the repo-relative,
// slash-separated form the churn and cache tables are keyed by.
func projectRelPath(dir, file string) string {
	if filepath.IsAbs(file) {
		if rel, err := filepath.Rel(dir, file); err == nil {
			file = rel
		}
	}
	return filepath.ToSlash(file)
}

func fileMtime(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.ModTime().UnixMilli()
}

// scoreAll builds one UnifiedDebtItem per resolved function node.
func (p *Pipeline) scoreAll(
	dir string,
	ext *extraction,
	classifier *debt.Classifier,
	aggregator *debt.Aggregator,
	covMap map[string]model.TransitiveCoverage,
	purityLevels map[string]model.PurityLevel,
	churn history.Signal,
) ([]model.UnifiedDebtItem, map[string]bool) {
	var items []model.UnifiedDebtItem
	isTest := make(map[string]bool)
	hasCoverageData := p.coveragePath != ""

	ids := ext.graph.FindAllFunctions()

	// First pass: classify everything and seed the aggregator so stage 10
	// sees complete category totals regardless of iteration order.
	debtTypes := make(map[string]model.DebtType, len(ids))
	for _, id := range ids {
		if id.Unresolved() {
			continue
		}
		dt := classifier.Classify(id)
		key := id.String()
		debtTypes[key] = dt
		seedAggregator(aggregator, key, dt, covMap[key])
	}

	for _, id := range ids {
		if id.Unresolved() {
			continue
		}
		key := id.String()
		info := ext.graph.GetFunctionInfo(id)
		if info == nil {
			continue
		}
		m := ext.metrics[key]
		cov := covMap[key]
		level := purityLevels[key]
		dt := debtTypes[key]

		callees := ext.graph.GetCallees(id)
		callers := ext.graph.GetCallers(id)
		role := scoring.ClassifyRole(id, info, m.Cognitive, len(callees), level)

		fanOutQuality, avgPurity, sizeQuality := orchestrationInputs(ext.graph, callees, purityLevels)

		in := scoring.Input{
			IsEntryPoint:              info.IsEntryPoint,
			IsTest:                    info.IsTest,
			Cyclomatic:                info.Cyclomatic,
			Length:                    info.Length,
			Cognitive:                 m.Cognitive,
			Nesting:                   m.Nesting,
			TokenEntropy:              m.TokenEntropy,
			PatternRepetition:         m.PatternRepetition,
			HasEntropy:                m.HasEntropy,
			Role:                      role,
			Purity:                    level,
			Coverage:                  cov,
			CoverageAvailable:         hasCoverageData,
			UpstreamCount:             len(callers),
			DebtKind:                  dt.Kind,
			DebtRiskScore:             dt.RiskScore,
			DebtAdjustment:            aggregator.Totals(key).DebtAdjustment(),
			FanOutQuality:             fanOutQuality,
			AvgCalleePurityMultiplier: avgPurity,
			AvgCalleeSizeQuality:      sizeQuality,
			ContextualRiskMultiplier:  churn.ContextualRiskMultiplier(projectRelPath(dir, id.File)),
		}
		sc := scoring.Score(in, p.cfg)

		// Stage 1's trivial short-circuit emits no item at all: the score
		// is zero and no stage ran.
		if sc.FinalScore == 0 && !sc.HasPurityFactor {
			continue
		}

		item := model.UnifiedDebtItem{
			Location:        model.Location{File: id.File, Function: id.Name, Line: id.Line},
			DebtType:        dt,
			Score:           sc,
			Role:            role,
			Recommendation:  recommendFor(dt, role, cov),
			ExpectedImpact:  expectedImpact(dt, info, cov, p.cfg),
			Coverage:        cov,
			UpstreamCount:   len(callers),
			UpstreamNames:   toRefs(callers),
			DownstreamCount: len(callees),
			DownstreamNames: toRefs(callees),
			Cyclomatic:      info.Cyclomatic,
			Cognitive:       m.Cognitive,
			Length:          info.Length,
			Nesting:         m.Nesting,
			IsPure:          level == model.StrictlyPure || level == model.LocallyPure,
			PurityLevel:     level,
			Tier:            model.TierFromScore(sc.FinalScore),
		}
		if dt.Kind == model.DebtGodObject {
			item.GodObjectMethods = dt.GodObject.Methods
			item.GodObjectFields = dt.GodObject.Fields
			item.GodObjectResponsibilities = dt.GodObject.Responsibilities
		}
		if evidence := history.EvidenceFor(churn, projectRelPath(dir, id.File)); evidence != "" && dt.Kind == model.DebtRisk {
			item.ContextSuggestion = fmt.Sprintf("file %s changes frequently; prioritize a regression test before refactoring", evidence)
			item.HasContextSuggestion = true
		}

		// Pattern-correlation post-pass on anti-pattern detections: context
		// may suppress the finding or adjust its severity before insertion.
		if isAntiPatternKind(dt.Kind) {
			finding := p.correlator.Apply(correlate.Context{
				Item:            item,
				ModuleType:      correlate.ClassifyModule(item.Location.File),
				IsTest:          info.IsTest,
				IsBusinessLogic: role == model.RolePureLogic || role == model.RoleOrchestrator,
			})
			if finding == nil {
				continue
			}
			if finding.AdjustedSeverity != item.Score.FinalScore {
				item.Score.FinalScore = finding.AdjustedSeverity
				item.Tier = model.TierFromScore(finding.AdjustedSeverity)
			}
			if !item.HasContextSuggestion && finding.Reasoning != "" {
				item.ContextSuggestion = finding.Reasoning
				item.HasContextSuggestion = true
			}
		}

		items = append(items, item)
		isTest[item.Location.String()] = info.IsTest
	}

	return items, isTest
}

// isAntiPatternKind selects the anti-pattern kinds the correlation rules
// know how to contextualize.
func isAntiPatternKind(kind model.DebtKind) bool {
	switch kind {
	case model.DebtBlockingIO, model.DebtNestedLoops, model.DebtAllocationInefficiency,
		model.DebtStringConcatenation, model.DebtSuboptimalDataStructure,
		model.DebtCollectionInefficiency, model.DebtResourceLeak, model.DebtAsyncMisuse:
		return true
	}
	return false
}

// seedAggregator records the classified debt's category contribution.
// Complexity drives the base score directly, so it is never added here.
func seedAggregator(agg *debt.Aggregator, key string, dt model.DebtType, cov model.TransitiveCoverage) {
	switch dt.Kind {
	case model.DebtTestingGap:
		agg.Add(key, debt.CategoryTesting, (1-cov.Transitive)*float64(dt.TestingGap.Cyclomatic))
	case model.DebtGodObject:
		agg.Add(key, debt.CategoryOrganization, dt.GodObject.Score*10)
	case model.DebtDeadCode, model.DebtOrphanedFunctions, model.DebtUtilitiesSprawl:
		agg.Add(key, debt.CategoryOrganization, float64(dt.DeadCode.Cyclomatic))
	case model.DebtNestedLoops, model.DebtBlockingIO, model.DebtResourceLeak, model.DebtAllocationInefficiency:
		agg.Add(key, debt.CategoryResource, float64(dt.NestedLoops.Depth)*2)
	case model.DebtDuplication, model.DebtTestDuplication:
		agg.Add(key, debt.CategoryDuplication, float64(dt.Duplication.TotalLines))
	}
}

// orchestrationInputs derives stage 12's composition-quality inputs from
// the callee set (see DESIGN.md for the resolved weighting).
func orchestrationInputs(graph *callgraph.Graph, callees []model.FunctionId, purityLevels map[string]model.PurityLevel) (fanOutQuality, avgPurity, sizeQuality float64) {
	if len(callees) == 0 {
		return 0, 1, 0
	}

	// Fan-out quality grows with delegation breadth, saturating at 8 callees.
	fanOutQuality = float64(len(callees)-2) / 6
	if fanOutQuality < 0 {
		fanOutQuality = 0
	}
	if fanOutQuality > 1 {
		fanOutQuality = 1
	}

	var puritySum, lengthSum float64
	for _, callee := range callees {
		puritySum += purityLevels[callee.String()].Multiplier()
		if info := graph.GetFunctionInfo(callee); info != nil {
			lengthSum += float64(info.Length)
		}
	}
	avgPurity = puritySum / float64(len(callees))
	avgLength := lengthSum / float64(len(callees))

	// Small callees read as well-factored delegation; 50+ lines average
	// reads as an orchestrator in name only.
	sizeQuality = 1 - avgLength/50
	if sizeQuality < 0 {
		sizeQuality = 0
	}
	if sizeQuality > 1 {
		sizeQuality = 1
	}
	return fanOutQuality, avgPurity, sizeQuality
}

func toRefs(ids []model.FunctionId) []model.DependencyRef {
	if len(ids) == 0 {
		return nil
	}
	out := make([]model.DependencyRef, len(ids))
	for i, id := range ids {
		out[i] = model.DependencyRef{FunctionId: id, Name: id.Name}
	}
	return out
}

func recommendFor(dt model.DebtType, role model.FunctionRole, cov model.TransitiveCoverage) string {
	switch dt.Kind {
	case model.DebtTestingGap:
		return fmt.Sprintf("add tests: %.0f%% transitive coverage with cyclomatic %d", cov.Transitive*100, dt.TestingGap.Cyclomatic)
	case model.DebtComplexityHotspot:
		return fmt.Sprintf("refactor: cyclomatic %d / cognitive %d exceed thresholds", dt.ComplexityHotspot.Cyclomatic, dt.ComplexityHotspot.Cognitive)
	case model.DebtTestComplexityHotspot:
		return fmt.Sprintf("simplify test: cyclomatic %d / cognitive %d exceed test thresholds", dt.ComplexityHotspot.Cyclomatic, dt.ComplexityHotspot.Cognitive)
	case model.DebtDeadCode:
		return fmt.Sprintf("remove or wire up: %s dead code", dt.DeadCode.Visibility)
	case model.DebtGodObject:
		return fmt.Sprintf("split type: %d methods across %d responsibility clusters", dt.GodObject.Methods, dt.GodObject.Responsibilities)
	case model.DebtNestedLoops:
		return fmt.Sprintf("flatten loops: nesting depth %d", dt.NestedLoops.Depth)
	case model.DebtErrorSwallowing:
		return fmt.Sprintf("handle or propagate the error: %s", dt.ErrorSwallowing.Pattern)
	default:
		if role == model.RoleOrchestrator {
			return "monitor: orchestrator with residual risk"
		}
		return "monitor: residual risk"
	}
}

func expectedImpact(dt model.DebtType, info *callgraph.NodeInfo, cov model.TransitiveCoverage, cfg scoring.Config) model.ImpactMetrics {
	switch dt.Kind {
	case model.DebtTestingGap:
		improvement := (0.8 - cov.Transitive) * 100
		if improvement < 0 {
			improvement = 0
		}
		return model.ImpactMetrics{CoverageImprovement: improvement, RiskReduction: improvement / 10}
	case model.DebtComplexityHotspot, model.DebtTestComplexityHotspot:
		reduction := dt.ComplexityHotspot.Cyclomatic - cfg.ComplexityWeights.MaxCyclomatic
		if reduction < 0 {
			reduction = 0
		}
		return model.ImpactMetrics{ComplexityReduction: reduction, RiskReduction: float64(reduction)}
	case model.DebtDeadCode:
		return model.ImpactMetrics{LinesReduction: info.Length}
	case model.DebtGodObject:
		return model.ImpactMetrics{ComplexityReduction: dt.GodObject.Responsibilities, LinesReduction: dt.GodObject.Lines / 2}
	default:
		return model.ImpactMetrics{}
	}
}

// totalLines sums every defined function's length; closures are part of
// their enclosing function's span and placeholders have no span at all.
func totalLines(graph *callgraph.Graph) int {
	total := 0
	for _, id := range graph.FindAllFunctions() {
		if id.Unresolved() || strings.HasPrefix(id.Name, "<closure") {
			continue
		}
		if info := graph.GetFunctionInfo(id); info != nil {
			total += info.Length
		}
	}
	return total
}
