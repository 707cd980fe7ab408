package analysis

import "github.com/allium-lang/allium/internal/typedast"

// DepGraph is the predicate dependence graph: one vertex per user predicate
// and an edge p -> q iff q occurs in one of p's bodies. Builtin predicates
// never appear as vertices.
type DepGraph struct {
	edges map[string]map[string]bool
}

// BuildDepGraph walks every implication and handler body of the program.
func BuildDepGraph(p *typedast.Program) *DepGraph {
	g := &DepGraph{edges: map[string]map[string]bool{}}
	for i := range p.Predicates {
		pred := &p.Predicates[i]
		g.edges[pred.Decl.Name] = map[string]bool{}
		for j := range pred.Impls {
			g.addEdges(p, pred.Decl.Name, pred.Impls[j].Body)
		}
		for j := range pred.Handlers {
			for k := range pred.Handlers[j].Impls {
				g.addEdges(p, pred.Decl.Name, pred.Handlers[j].Impls[k].Body)
			}
		}
	}
	return g
}

func (g *DepGraph) addEdges(p *typedast.Program, from string, e typedast.Expr) {
	switch e := e.(type) {
	case typedast.PredicateRef:
		if _, ok := p.ResolvePredicate(e.Name); ok {
			g.edges[from][e.Name] = true
		}
	case typedast.EffectCtorRef:
		g.addEdges(p, from, e.Cont)
	case typedast.Conjunction:
		g.addEdges(p, from, e.Left)
		g.addEdges(p, from, e.Right)
	}
}

// DependsOn reports whether q is reachable from p.
func (g *DepGraph) DependsOn(p, q string) bool {
	visited := map[string]bool{}
	var walk func(string) bool
	walk = func(cur string) bool {
		if visited[cur] {
			return false
		}
		visited[cur] = true
		for next := range g.edges[cur] {
			if next == q || walk(next) {
				return true
			}
		}
		return false
	}
	return walk(p)
}

// Recursive reports whether p depends on itself.
func (g *DepGraph) Recursive(p string) bool {
	return g.DependsOn(p, p)
}
