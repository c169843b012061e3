package graph

// Handler receives a node whose infection state just changed.
type Handler interface {
	Handle(n *Node)
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(n *Node)

// Handle calls f(n).
func (f HandlerFunc) Handle(n *Node) { f(n) }

// Chain returns a Handler that calls each non-nil handler in order.
func Chain(handlers ...Handler) Handler {
	return HandlerFunc(func(n *Node) {
		for _, h := range handlers {
			if h != nil {
				h.Handle(n)
			}
		}
	})
}

// infectionProcedure keeps the infected index in step with infections.
// The index is updated before the caller's handler runs, and a node that
// is already indexed is not added twice.
type infectionProcedure struct {
	index   map[string]*Node
	handler Handler
}

func (p *infectionProcedure) Handle(n *Node) {
	if _, ok := p.index[n.Name()]; !ok {
		p.index[n.Name()] = n
	}
	if p.handler != nil {
		p.handler.Handle(n)
	}
}

// recoveryProcedure removes recovered nodes from the infected index, then
// runs the caller's handler.
type recoveryProcedure struct {
	index   map[string]*Node
	handler Handler
}

func (p *recoveryProcedure) Handle(n *Node) {
	delete(p.index, n.Name())
	if p.handler != nil {
		p.handler.Handle(n)
	}
}
