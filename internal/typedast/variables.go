package typedast

// ScopeEntry is one variable of an implication: its name and type.
type ScopeEntry struct {
	Name string
	Type TypeRef
}

// ImplicationVariables computes the implication's variable list: the ordered
// sequence of variables defined anywhere in its head or body, in
// first-occurrence order. Lowering assigns each variable its position in
// this list as its runtime index.
func ImplicationVariables(impl *Implication) []ScopeEntry {
	c := &varCollector{seen: map[string]bool{}}
	for _, a := range impl.Head.Args {
		c.value(a)
	}
	c.expr(impl.Body)
	return c.vars
}

// EffectImplicationVariables computes the variable list of a handler clause.
func EffectImplicationVariables(impl *EffectImplication) []ScopeEntry {
	c := &varCollector{seen: map[string]bool{}}
	for _, a := range impl.Args {
		c.value(a)
	}
	c.expr(impl.Body)
	return c.vars
}

type varCollector struct {
	seen map[string]bool
	vars []ScopeEntry
}

func (c *varCollector) value(v Value) {
	switch v := v.(type) {
	case Variable:
		if !c.seen[v.Name] {
			c.seen[v.Name] = true
			c.vars = append(c.vars, ScopeEntry{Name: v.Name, Type: v.Type})
		}
	case ConstructorRef:
		for _, a := range v.Args {
			c.value(a)
		}
	}
}

func (c *varCollector) expr(e Expr) {
	switch e := e.(type) {
	case PredicateRef:
		for _, a := range e.Args {
			c.value(a)
		}
	case EffectCtorRef:
		for _, a := range e.Args {
			c.value(a)
		}
		c.expr(e.Cont)
	case Conjunction:
		c.expr(e.Left)
		c.expr(e.Right)
	}
}
