package inspect

// Node is one element of the snapshot tree.
type Node struct {
	// Type is the element kind, such as "connection" or "capability".
	Type string `json:"type"`

	ID string `json:"id,omitempty"`

	// State holds element specific values.
	State map[string]interface{} `json:"state,omitempty"`

	Children []*Node `json:"children,omitempty"`

	// Content is a printable value, with control characters escaped.
	Content string `json:"content,omitempty"`
}

func NewNode(nodeType string) *Node {
	return &Node{
		Type:  nodeType,
		State: make(map[string]interface{}),
	}
}

// WithID sets the node ID and returns the node for chaining.
func (n *Node) WithID(id string) *Node {
	n.ID = id
	return n
}

// WithState adds a state key-value pair and returns the node for chaining.
func (n *Node) WithState(key string, value interface{}) *Node {
	if n.State == nil {
		n.State = make(map[string]interface{})
	}
	n.State[key] = value
	return n
}

// AddChild adds a child node and returns the parent for chaining.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

// WithContent sets the node content and returns the node for chaining.
func (n *Node) WithContent(content string) *Node {
	n.Content = content
	return n
}

// Find returns the first node of type nodeType with the given ID, searching
// depth first.
func (n *Node) Find(nodeType, id string) *Node {
	if n == nil {
		return nil
	}
	if n.Type == nodeType && n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(nodeType, id); found != nil {
			return found
		}
	}
	return nil
}
