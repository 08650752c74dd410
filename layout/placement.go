package layout

import (
	"github.com/jasepellerin/family-tree/models"
)

type point struct {
	X float64
	Y float64
}

// grid tracks committed node positions for one component and resolves
// collisions. Every coordinate goes through Place before it is committed,
// so no two committed boxes ever overlap.
type grid struct {
	positions map[string]point
	order     []string
}

func newGrid() *grid {
	return &grid{positions: make(map[string]point)}
}

func (g *grid) Has(id string) bool {
	_, ok := g.positions[id]
	return ok
}

// collides reports whether a box at (x, y), inflated by the padding
// margin, overlaps any committed box.
func (g *grid) collides(x, y float64) bool {
	for _, id := range g.order {
		p := g.positions[id]
		dx := x - p.X
		if dx < 0 {
			dx = -dx
		}
		dy := y - p.Y
		if dy < 0 {
			dy = -dy
		}
		if dx < NodeWidth+nodeMargin && dy < NodeHeight+nodeMargin {
			return true
		}
	}
	return false
}

// Place commits the node at the requested coordinate, or at the first
// non-colliding probe if it is taken: below, right, left, above, each a
// further whole node step per round. Committed boxes are finite, so the
// probe always terminates.
func (g *grid) Place(id string, x, y float64) point {
	if !g.collides(x, y) {
		return g.commit(id, x, y)
	}
	for step := 1.0; ; step++ {
		candidates := [4]point{
			{X: x, Y: y + step*yStep}, // below
			{X: x + step*xStep, Y: y}, // right
			{X: x - step*xStep, Y: y}, // left
			{X: x, Y: y - step*yStep}, // above
		}
		for _, c := range candidates {
			if !g.collides(c.X, c.Y) {
				return g.commit(id, c.X, c.Y)
			}
		}
	}
}

func (g *grid) commit(id string, x, y float64) point {
	pos := point{X: x, Y: y}
	g.positions[id] = pos
	g.order = append(g.order, id)
	return pos
}

// extentX returns the minimum and maximum committed x coordinates.
func (g *grid) extentX() (minX, maxX float64) {
	for i, id := range g.order {
		p := g.positions[id]
		if i == 0 || p.X < minX {
			minX = p.X
		}
		if i == 0 || p.X > maxX {
			maxX = p.X
		}
	}
	return minX, maxX
}

// nextOpenX returns the x coordinate one step right of the widest extent
// placed so far.
func (g *grid) nextOpenX() float64 {
	if len(g.order) == 0 {
		return 0
	}
	_, maxX := g.extentX()
	return maxX + xStep
}

// layoutComponent positions every member of one connected component:
// hierarchical pass from the chosen root, then the straggler fixed-point
// loop for members the hierarchy walk did not reach.
func layoutComponent(g *grid, comp []string, index map[string]*models.Person) {
	inComp := make(map[string]bool, len(comp))
	for _, id := range comp {
		inComp[id] = true
	}

	c := &componentLayout{grid: g, index: index, inComp: inComp}
	c.placeSubtree(c.root(comp), 0, 0)
	c.placeStragglers(comp)
}

type componentLayout struct {
	grid   *grid
	index  map[string]*models.Person
	inComp map[string]bool
}

// root picks the hierarchy root: the first component member (collection
// order) with no resolvable parents, else the first member. A component
// made of a cycle or of partner links alone still yields a root.
func (c *componentLayout) root(comp []string) string {
	for _, id := range comp {
		hasParent := false
		for _, pid := range c.index[id].ParentIDs {
			if _, exists := c.index[pid]; exists {
				hasParent = true
				break
			}
		}
		if !hasParent {
			return id
		}
	}
	return comp[0]
}

// resolved filters a relationship set down to ids that exist in the
// snapshot and belong to this component.
func (c *componentLayout) resolved(ids models.IDList) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, exists := c.index[id]; exists && c.inComp[id] {
			out = append(out, id)
		}
	}
	return out
}

// placeSubtree assigns the nominal position, puts partners/spouses
// directly to the right at the same depth, then recurses into children
// spread evenly and centered under the parent. Cycles are bounded by the
// already-placed check.
func (c *componentLayout) placeSubtree(id string, x, y float64) {
	if c.grid.Has(id) {
		return
	}
	p := c.index[id]
	pos := c.grid.Place(id, x, y)

	adjX := pos.X
	partners := append(c.resolved(p.PartnerIDs), c.resolved(p.SpouseIDs)...)
	for _, partnerID := range partners {
		if c.grid.Has(partnerID) {
			continue
		}
		adjX += xStep
		c.grid.Place(partnerID, adjX, pos.Y)
	}

	kids := []string{}
	for _, kid := range c.resolved(p.ChildIDs) {
		if !c.grid.Has(kid) {
			kids = append(kids, kid)
		}
	}
	for i, kid := range kids {
		childX := pos.X + (float64(i)-float64(len(kids)-1)/2)*xStep
		c.placeSubtree(kid, childX, pos.Y+yStep)
	}
}

// placeStragglers positions component members the hierarchy walk did not
// reach. Each pass anchors stragglers to an already-positioned relation,
// preferring a parent, then a child, then a partner/spouse; a pass that
// places nobody dumps the remainder right of the widest extent so the
// loop always terminates.
func (c *componentLayout) placeStragglers(comp []string) {
	remaining := []string{}
	for _, id := range comp {
		if !c.grid.Has(id) {
			remaining = append(remaining, id)
		}
	}

	for len(remaining) > 0 {
		next := []string{}
		progress := false
		for _, id := range remaining {
			if c.placeByAnchor(id) {
				progress = true
			} else {
				next = append(next, id)
			}
		}
		if !progress {
			for _, id := range next {
				c.grid.Place(id, c.grid.nextOpenX(), 0)
			}
			return
		}
		remaining = next
	}
}

// placeByAnchor places one straggler relative to its first positioned
// relation, or reports false when it has none yet.
func (c *componentLayout) placeByAnchor(id string) bool {
	p := c.index[id]

	for _, parentID := range c.resolved(p.ParentIDs) {
		if c.grid.Has(parentID) {
			anchor := c.grid.positions[parentID]
			c.grid.Place(id, anchor.X, anchor.Y+yStep)
			return true
		}
	}

	for _, childID := range c.resolved(p.ChildIDs) {
		if !c.grid.Has(childID) {
			continue
		}
		anchor := c.grid.positions[childID]
		x := anchor.X
		// shift sideways when the child already has another positioned
		// parent directly above
		for _, otherParent := range c.resolved(c.index[childID].ParentIDs) {
			if otherParent != id && c.grid.Has(otherParent) {
				x += xStep
				break
			}
		}
		c.grid.Place(id, x, anchor.Y-yStep)
		return true
	}

	partners := append(c.resolved(p.PartnerIDs), c.resolved(p.SpouseIDs)...)
	for _, partnerID := range partners {
		if c.grid.Has(partnerID) {
			anchor := c.grid.positions[partnerID]
			c.grid.Place(id, anchor.X+xStep, anchor.Y)
			return true
		}
	}

	return false
}
