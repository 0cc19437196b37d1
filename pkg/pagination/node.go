package pagination

// Node carries the fields every paged record has: the id the cursor is taken
// from, and the 1-based position assigned by the fetcher.
type Node struct {
	ID    string `json:"id"`
	Index int    `json:"-"`
}

// Base returns the node itself. Types embedding Node satisfy Entity through it.
func (n *Node) Base() *Node {
	return n
}

// Entity is implemented by pointers to record types that embed Node.
type Entity interface {
	Base() *Node
}

// EntityPtr constrains P to *T where *T is an Entity.
type EntityPtr[T any] interface {
	*T
	Entity
}
