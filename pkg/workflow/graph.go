package workflow

import (
	"context"

	"github.com/ritzau/slnkit/pkg/cycles"
	"github.com/ritzau/slnkit/pkg/graph"
	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/model"
	"github.com/ritzau/slnkit/pkg/solution"
)

// GraphResult is a solution with its reference graph
type GraphResult struct {
	Solution   *solution.Solution
	References *graph.ReferenceGraph
	Cycles     []cycles.ReferenceCycle
}

// Graph loads the solution and resolves the references between its projects
func (r *Runner) Graph(ctx context.Context) (*GraphResult, error) {
	s, err := r.loadSolution()
	if err != nil {
		return nil, err
	}

	rg, err := graph.Build(s, s.Projects(), solution.NewRefCache())
	if err != nil {
		return nil, err
	}
	result := &GraphResult{Solution: s, References: rg, Cycles: cycles.FindReferenceCycles(rg)}

	logging.InfoContext(ctx, "solution graph",
		"solution", s.Path(), "projects", len(s.Projects()), "folders", len(s.Folders()),
		"references", len(rg.Edges()), "cycles", len(result.Cycles))
	return result, nil
}

// Export converts the result to the graph printed as JSON
func (g *GraphResult) Export() *model.Graph {
	out := model.NewGraph(g.Solution.Path())

	for _, n := range g.Solution.Nodes() {
		node := &model.GraphNode{ID: n.ID, Label: n.Name, Type: "project"}
		if n.IsFolder() {
			node.Type = "folder"
		}
		if parent, ok := g.Solution.ParentOf(n); ok {
			node.Parent = parent.ID
		}
		out.AddNode(node)

		if !n.IsFolder() {
			node.Metadata["path"] = n.Path
			node.Metadata["language"] = n.Type.Language.String()
			node.Metadata["framework"] = n.Type.Framework.String()
		}
	}

	for _, e := range g.References.Edges() {
		out.AddEdge(&model.GraphEdge{Source: e[0], Target: e[1], Type: "reference"})
	}
	for _, c := range g.Cycles {
		out.Cycles = append(out.Cycles, c.IDs)
	}
	return out
}
