// Package cycles finds circular project references.
package cycles

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/slnkit/pkg/graph"
)

// ReferenceCycle is a set of projects that reference each other circularly
type ReferenceCycle struct {
	IDs   []string // Entry ids, ordered by name
	Names []string
}

// FindReferenceCycles returns every strongly connected component with more
// than one project.
func FindReferenceCycles(rg *graph.ReferenceGraph) []ReferenceCycle {
	cycles := make([]ReferenceCycle, 0)
	for _, scc := range topo.TarjanSCC(rg.Graph()) {
		if len(scc) < 2 {
			continue
		}

		nodes := make([]*graph.ProjectNode, 0, len(scc))
		for _, n := range scc {
			if node := rg.GetNodeByGraphID(n.ID()); node != nil {
				nodes = append(nodes, node)
			}
		}
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

		var cycle ReferenceCycle
		for _, node := range nodes {
			cycle.IDs = append(cycle.IDs, node.ID)
			cycle.Names = append(cycle.Names, node.Name)
		}
		cycles = append(cycles, cycle)
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Names[0] < cycles[j].Names[0] })
	return cycles
}
