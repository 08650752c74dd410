// Package layout derives deterministic 2-D positions for every person in a
// snapshot of the family tree, plus the visual edges between them. It is a
// pure function of its input: it never mutates the records, never fails,
// and produces identical output for identical input.
package layout

import (
	"github.com/jasepellerin/family-tree/models"
)

// Node geometry and spacing, in abstract pixel units. The horizontal and
// vertical steps exceed the node box plus margin, so grid-aligned
// placements never collide.
const (
	NodeWidth  = 160.0
	NodeHeight = 100.0

	nodeMargin    = 20.0
	horizontalGap = 40.0
	verticalGap   = 60.0
	componentGap  = 120.0

	xStep = NodeWidth + horizontalGap
	yStep = NodeHeight + verticalGap
)

// EdgeKind distinguishes parent→child edges from partner/spouse edges.
type EdgeKind string

const (
	EdgeKindDirected   EdgeKind = "directed"
	EdgeKindUndirected EdgeKind = "undirected"
)

// Node is a positioned person. X and Y locate the top-left corner of the
// node's bounding box.
type Node struct {
	ID     string        `json:"id"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Person models.Person `json:"person"`
}

// Edge is a visual connection between two positioned nodes.
type Edge struct {
	ID       string   `json:"id"`
	SourceID string   `json:"source_id"`
	TargetID string   `json:"target_id"`
	Kind     EdgeKind `json:"kind"`
}

// Layout is the full rendering input: one node per person and the
// de-duplicated edge set.
type Layout struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Compute lays out the given snapshot. Every person receives exactly one
// position; no two node bounding boxes overlap; disconnected family
// clusters are placed left-to-right with a fixed gap between them.
// Relationship ids that do not resolve to a person in the snapshot are
// treated as absent.
func Compute(people []models.Person) *Layout {
	result := &Layout{Nodes: []Node{}, Edges: []Edge{}}
	if len(people) == 0 {
		return result
	}

	index := make(map[string]*models.Person, len(people))
	for i := range people {
		index[people[i].ID] = &people[i]
	}

	positions := make(map[string]point, len(people))
	offsetX := 0.0

	for _, comp := range components(people, index) {
		grid := newGrid()
		layoutComponent(grid, comp, index)

		minX, maxX := grid.extentX()
		shift := offsetX - minX
		for _, id := range comp {
			pos := grid.positions[id]
			positions[id] = point{X: pos.X + shift, Y: pos.Y}
		}
		offsetX += (maxX - minX) + NodeWidth + componentGap
	}

	for i := range people {
		pos := positions[people[i].ID]
		result.Nodes = append(result.Nodes, Node{
			ID:     people[i].ID,
			X:      pos.X,
			Y:      pos.Y,
			Person: people[i],
		})
	}
	result.Edges = buildEdges(people, positions)
	return result
}

// components splits the snapshot into connected components, treating all
// four relationship kinds as undirected edges. Components and their
// members come out in collection order, so the decomposition is
// deterministic.
func components(people []models.Person, index map[string]*models.Person) [][]string {
	visited := make(map[string]bool, len(people))
	var comps [][]string

	for i := range people {
		start := people[i].ID
		if visited[start] {
			continue
		}
		comp := []string{}
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			comp = append(comp, id)
			for _, next := range neighbors(index[id]) {
				if _, exists := index[next]; !exists {
					continue // dangling reference, treated as absent
				}
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// neighbors returns all directly related ids in stored set order.
func neighbors(p *models.Person) []string {
	out := make([]string, 0, len(p.ParentIDs)+len(p.ChildIDs)+len(p.PartnerIDs)+len(p.SpouseIDs))
	out = append(out, p.ParentIDs...)
	out = append(out, p.ChildIDs...)
	out = append(out, p.PartnerIDs...)
	out = append(out, p.SpouseIDs...)
	return out
}

// buildEdges emits one directed edge per (parent, child) pair and one
// undirected edge per unordered partner/spouse pair. Undirected edges are
// de-duplicated by emitting only from the lexicographically smaller id.
// Edges whose endpoints were not positioned are skipped.
func buildEdges(people []models.Person, positions map[string]point) []Edge {
	edges := []Edge{}
	emitted := make(map[string]bool)

	for i := range people {
		p := &people[i]
		if _, ok := positions[p.ID]; !ok {
			continue
		}
		for _, childID := range p.ChildIDs {
			if _, ok := positions[childID]; !ok {
				continue
			}
			edges = append(edges, Edge{
				ID:       p.ID + "->" + childID,
				SourceID: p.ID,
				TargetID: childID,
				Kind:     EdgeKindDirected,
			})
		}
	}

	for i := range people {
		p := &people[i]
		if _, ok := positions[p.ID]; !ok {
			continue
		}
		pairIDs := append(p.PartnerIDs.Clone(), p.SpouseIDs...)
		for _, otherID := range pairIDs {
			if p.ID >= otherID {
				continue
			}
			if _, ok := positions[otherID]; !ok {
				continue
			}
			edgeID := p.ID + "--" + otherID
			if emitted[edgeID] {
				continue // pair present as both partner and spouse
			}
			emitted[edgeID] = true
			edges = append(edges, Edge{
				ID:       edgeID,
				SourceID: p.ID,
				TargetID: otherID,
				Kind:     EdgeKindUndirected,
			})
		}
	}
	return edges
}
