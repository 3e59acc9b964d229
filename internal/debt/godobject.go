package debt

import (
	"strings"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// God-object thresholds. Documented defaults, see DESIGN.md.
const (
	godObjectMethodThreshold       = 20
	godObjectResponsibilityThreshold = 5
)

// responsibilityVerbs are the verb prefixes used to cluster a type's
// methods into rough "responsibilities", a cheap stand-in for true cohesion
// analysis in the same spirit as the extractors' name-prefix call
// classification (handle_/process_, etc.).
var responsibilityVerbs = []string{
	"get", "set", "is", "has", "create", "new", "build", "update", "delete",
	"remove", "add", "list", "find", "load", "save", "parse", "render",
	"validate", "handle", "process", "run", "execute", "compute", "convert",
}

// TypeProfile is one type/class's aggregated method-table evidence.
type TypeProfile struct {
	Name             string
	Methods          int
	Responsibilities int
	Lines            int
	IDs              []model.FunctionId
}

// GodObjectIndex maps a bare type/class name to its aggregated profile,
// built once per run over the completed call graph.
type GodObjectIndex struct {
	profiles map[string]*TypeProfile
}

// BuildGodObjectIndex scans every function node's qualified name for a
// "Type.method" receiver qualifier and aggregates method counts, rough
// responsibility-cluster counts (distinct verb prefixes seen), and total
// line counts per type.
func BuildGodObjectIndex(graph *callgraph.Graph) *GodObjectIndex {
	idx := &GodObjectIndex{profiles: make(map[string]*TypeProfile)}
	for _, id := range graph.FindAllFunctions() {
		typeName, method, ok := splitReceiver(id.Name)
		if !ok {
			continue
		}
		p, exists := idx.profiles[typeName]
		if !exists {
			p = &TypeProfile{Name: typeName}
			idx.profiles[typeName] = p
		}
		p.Methods++
		p.IDs = append(p.IDs, id)
		if info := graph.GetFunctionInfo(id); info != nil {
			p.Lines += info.Length
		}
		if verbCount(method) {
			p.Responsibilities++
		}
	}
	for _, p := range idx.profiles {
		if p.Responsibilities >= godObjectResponsibilityThreshold {
			p.Responsibilities = dedupeVerbCount(p)
		}
	}
	return idx
}

func splitReceiver(name string) (string, string, bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", "", false
	}
	typeName := name[:idx]
	if strings.HasPrefix(typeName, "<closure") {
		return "", "", false
	}
	return typeName, name[idx+1:], true
}

func verbCount(method string) bool {
	lower := strings.ToLower(method)
	for _, v := range responsibilityVerbs {
		if strings.HasPrefix(lower, v) {
			return true
		}
	}
	return false
}

// dedupeVerbCount recomputes a precise distinct-verb-prefix count for a
// type, used only once the cheap running counter saturates the threshold.
func dedupeVerbCount(p *TypeProfile) int {
	seen := make(map[string]bool)
	for _, id := range p.IDs {
		_, method, ok := splitReceiver(id.Name)
		if !ok {
			continue
		}
		lower := strings.ToLower(method)
		for _, v := range responsibilityVerbs {
			if strings.HasPrefix(lower, v) {
				seen[v] = true
				break
			}
		}
	}
	return len(seen)
}

// Profile returns typeName's aggregated profile, or nil if it has no
// receiver-qualified methods in the graph.
func (idx *GodObjectIndex) Profile(typeName string) *TypeProfile {
	return idx.profiles[typeName]
}

// IsGodObject reports whether typeName crosses the method-count or
// responsibility-cluster thresholds.
func (idx *GodObjectIndex) IsGodObject(typeName string) bool {
	p, ok := idx.profiles[typeName]
	if !ok {
		return false
	}
	return p.Methods >= godObjectMethodThreshold || p.Responsibilities >= godObjectResponsibilityThreshold
}
