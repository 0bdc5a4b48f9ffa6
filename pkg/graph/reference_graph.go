// Package graph holds the project reference graph of a solution.
package graph

import (
	"errors"
	"os"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/slnkit/pkg/model"
	"github.com/ritzau/slnkit/pkg/solution"
)

// ProjectNode represents a project in the reference graph
type ProjectNode struct {
	ID   string // Solution entry id
	Name string
	Path string
}

// ReferenceGraph is the project-level reference graph
type ReferenceGraph struct {
	graph     *simple.DirectedGraph
	nodes     map[string]*ProjectNode // Map from entry id to node
	ids       map[string]int64        // Map from entry id to graph ID
	byGraphID map[int64]string
	nextID    int64
}

// NewReferenceGraph creates an empty reference graph
func NewReferenceGraph() *ReferenceGraph {
	return &ReferenceGraph{
		graph:     simple.NewDirectedGraph(),
		nodes:     make(map[string]*ProjectNode),
		ids:       make(map[string]int64),
		byGraphID: make(map[int64]string),
	}
}

// AddProject adds a project to the graph
func (rg *ReferenceGraph) AddProject(n model.Node) {
	if _, exists := rg.nodes[n.ID]; exists {
		return
	}

	rg.nodes[n.ID] = &ProjectNode{ID: n.ID, Name: n.Name, Path: n.Path}
	rg.ids[n.ID] = rg.nextID
	rg.byGraphID[rg.nextID] = n.ID
	rg.graph.AddNode(simple.Node(rg.nextID))
	rg.nextID++
}

// AddReference adds an edge from source to target. Both are added if missing.
// Self references are ignored.
func (rg *ReferenceGraph) AddReference(source, target model.Node) {
	rg.AddProject(source)
	rg.AddProject(target)

	sourceID := rg.ids[source.ID]
	targetID := rg.ids[target.ID]
	if sourceID == targetID {
		return
	}

	if !rg.graph.HasEdgeFromTo(sourceID, targetID) {
		rg.graph.SetEdge(rg.graph.NewEdge(rg.graph.Node(sourceID), rg.graph.Node(targetID)))
	}
}

// GetNode returns a project node by entry id
func (rg *ReferenceGraph) GetNode(id string) (*ProjectNode, bool) {
	node, exists := rg.nodes[id]
	return node, exists
}

// GetNodeByGraphID returns a project node by its graph ID
func (rg *ReferenceGraph) GetNodeByGraphID(id int64) *ProjectNode {
	return rg.nodes[rg.byGraphID[id]]
}

// Graph returns the underlying directed graph
func (rg *ReferenceGraph) Graph() *simple.DirectedGraph {
	return rg.graph
}

// Nodes returns all project nodes ordered by name
func (rg *ReferenceGraph) Nodes() []*ProjectNode {
	nodes := make([]*ProjectNode, 0, len(rg.nodes))
	for _, node := range rg.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// Edges returns all references as [source id, target id] pairs
func (rg *ReferenceGraph) Edges() [][2]string {
	var edges [][2]string
	iter := rg.graph.Edges()
	for iter.Next() {
		edge := iter.Edge()
		edges = append(edges, [2]string{rg.byGraphID[edge.From().ID()], rg.byGraphID[edge.To().ID()]})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// GetReferences returns the ids of the projects id references
func (rg *ReferenceGraph) GetReferences(id string) []string {
	gid, exists := rg.ids[id]
	if !exists {
		return nil
	}

	var refs []string
	iter := rg.graph.From(gid)
	for iter.Next() {
		refs = append(refs, rg.byGraphID[iter.Node().ID()])
	}
	sort.Strings(refs)
	return refs
}

// Build creates the reference graph of the given projects. Only references
// between projects of the solution become edges; projects whose file is
// missing have no outgoing edges.
func Build(s *solution.Solution, projects []model.Node, cache *solution.RefCache) (*ReferenceGraph, error) {
	rg := NewReferenceGraph()
	for _, p := range projects {
		rg.AddProject(p)
	}
	for _, p := range projects {
		refs, err := s.References(p, cache)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, r := range refs {
			rg.AddReference(p, r)
		}
	}
	return rg, nil
}
