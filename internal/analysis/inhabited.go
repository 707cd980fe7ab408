// Package analysis implements the static analyses that run between semantic
// analysis and execution: type inhabitability, the predicate dependence
// graph, and the ground-mode analysis for input-only parameters.
package analysis

import "github.com/allium-lang/allium/internal/typedast"

// Inhabited computes, for every type in the program, whether at least one
// value of that type can be constructed. A type is inhabited if it has a
// constructor all of whose parameter types are inhabited; the builtin types
// Int and String are inhabited by their literals. Computed to least fixed
// point.
func Inhabited(p *typedast.Program) map[typedast.TypeRef]bool {
	inhabited := map[typedast.TypeRef]bool{
		typedast.TypeInt:    true,
		typedast.TypeString: true,
	}
	for changed := true; changed; {
		changed = false
		for i := range p.Types {
			t := &p.Types[i]
			tr := typedast.TypeRef(t.Name)
			if inhabited[tr] {
				continue
			}
			for j := range t.Ctors {
				all := true
				for _, param := range t.Ctors[j].Params {
					if !inhabited[param] {
						all = false
						break
					}
				}
				if all {
					inhabited[tr] = true
					changed = true
					break
				}
			}
		}
	}
	return inhabited
}
