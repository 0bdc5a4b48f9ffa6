package model

// Graph is the exported view of a solution: entries, folder nesting and
// project references. It is what `slnkit graph --json` prints.
type Graph struct {
	Solution string                `json:"solution"`
	Nodes    map[string]*GraphNode `json:"nodes"`
	Edges    []*GraphEdge          `json:"edges"`
	Cycles   [][]string            `json:"cycles,omitempty"` // Node IDs per reference cycle
}

// NewGraph creates a new empty graph.
func NewGraph(solution string) *Graph {
	return &Graph{
		Solution: solution,
		Nodes:    make(map[string]*GraphNode),
		Edges:    make([]*GraphEdge, 0),
	}
}

// GraphNode represents a solution entry in the exported graph.
type GraphNode struct {
	ID       string                 `json:"id"`
	Label    string                 `json:"label"`
	Type     string                 `json:"type"`             // "project" or "folder"
	Parent   string                 `json:"parent,omitempty"` // ID of the containing folder
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// GraphEdge is a project reference from Source to Target.
type GraphEdge struct {
	Source   string                 `json:"source"`
	Target   string                 `json:"target"`
	Type     string                 `json:"type"` // "reference"
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AddNode adds a node to the graph. If a node with the same ID exists, it updates it.
func (g *Graph) AddNode(node *GraphNode) {
	if node.Metadata == nil {
		node.Metadata = make(map[string]interface{})
	}
	g.Nodes[node.ID] = node
}

// AddEdge adds an edge to the graph.
func (g *Graph) AddEdge(edge *GraphEdge) {
	if edge.Metadata == nil {
		edge.Metadata = make(map[string]interface{})
	}
	g.Edges = append(g.Edges, edge)
}
