package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasepellerin/family-tree/models"
	"github.com/jasepellerin/family-tree/tree"
)

// checkNoOverlap asserts that no two node bounding boxes overlap.
func checkNoOverlap(t *testing.T, l *Layout) {
	t.Helper()
	for i := 0; i < len(l.Nodes); i++ {
		for j := i + 1; j < len(l.Nodes); j++ {
			a, b := l.Nodes[i], l.Nodes[j]
			dx := a.X - b.X
			if dx < 0 {
				dx = -dx
			}
			dy := a.Y - b.Y
			if dy < 0 {
				dy = -dy
			}
			overlap := dx < NodeWidth && dy < NodeHeight
			assert.False(t, overlap, "nodes %s and %s overlap: (%f,%f) vs (%f,%f)", a.ID, b.ID, a.X, a.Y, b.X, b.Y)
		}
	}
}

func nodeByID(t *testing.T, l *Layout, id string) Node {
	t.Helper()
	for _, n := range l.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("no node with id %s", id)
	return Node{}
}

func TestComputeEmptyCollection(t *testing.T) {
	l := Compute(nil)
	require.NotNil(t, l)
	assert.Empty(t, l.Nodes)
	assert.Empty(t, l.Edges)

	l = Compute([]models.Person{})
	assert.Empty(t, l.Nodes)
	assert.Empty(t, l.Edges)
}

func TestComputeSinglePerson(t *testing.T) {
	s := tree.NewStore()
	alice := s.AddPerson(models.Person{FirstName: "Alice"})

	l := Compute(s.Snapshot())
	require.Len(t, l.Nodes, 1)
	assert.Empty(t, l.Edges)
	assert.Equal(t, alice.ID, l.Nodes[0].ID)
	assert.Equal(t, 0.0, l.Nodes[0].X)
	assert.Equal(t, 0.0, l.Nodes[0].Y)
}

func TestComputeFamilyScenario(t *testing.T) {
	s := tree.NewStore()
	alice := s.AddPerson(models.Person{FirstName: "Alice"})
	bob := s.AddPerson(models.Person{FirstName: "Bob"})
	carol := s.AddPerson(models.Person{FirstName: "Carol"})
	require.True(t, s.AddRelationship(alice.ID, bob.ID, models.RelationshipChild))
	require.True(t, s.AddRelationship(alice.ID, carol.ID, models.RelationshipPartner))

	l := Compute(s.Snapshot())
	require.Len(t, l.Nodes, 3)
	require.Len(t, l.Edges, 2)

	aliceNode := nodeByID(t, l, alice.ID)
	bobNode := nodeByID(t, l, bob.ID)
	carolNode := nodeByID(t, l, carol.ID)

	// Bob sits one generation below Alice
	assert.Equal(t, aliceNode.Y+yStep, bobNode.Y)
	assert.Equal(t, aliceNode.X, bobNode.X)

	// Carol sits at the same depth, directly to Alice's right
	assert.Equal(t, aliceNode.Y, carolNode.Y)
	assert.Equal(t, aliceNode.X+xStep, carolNode.X)

	var directed, undirected int
	for _, e := range l.Edges {
		switch e.Kind {
		case EdgeKindDirected:
			directed++
			assert.Equal(t, alice.ID, e.SourceID)
			assert.Equal(t, bob.ID, e.TargetID)
		case EdgeKindUndirected:
			undirected++
		}
	}
	assert.Equal(t, 1, directed)
	assert.Equal(t, 1, undirected)

	checkNoOverlap(t, l)

	// deleting Alice splits Bob and Carol into separate clusters
	require.True(t, s.DeletePerson(alice.ID))
	l = Compute(s.Snapshot())
	require.Len(t, l.Nodes, 2)
	assert.Empty(t, l.Edges)
	checkNoOverlap(t, l)
}

func TestComputeDeterministic(t *testing.T) {
	s := tree.NewStore()
	var prev models.Person
	for i := 0; i < 12; i++ {
		p := s.AddPerson(models.Person{FirstName: fmt.Sprintf("P%d", i)})
		if i%3 != 0 {
			require.True(t, s.AddRelationship(prev.ID, p.ID, models.RelationshipChild))
		}
		prev = p
	}

	snapshot := s.Snapshot()
	first := Compute(snapshot)
	second := Compute(snapshot)
	assert.Equal(t, first, second, "identical input must produce identical layout")
}

func TestComputeSurvivesRelationshipCycle(t *testing.T) {
	s := tree.NewStore()
	a := s.AddPerson(models.Person{FirstName: "A"})
	b := s.AddPerson(models.Person{FirstName: "B"})
	c := s.AddPerson(models.Person{FirstName: "C"})
	// a is their own ancestor through the cycle a -> b -> c -> a
	require.True(t, s.AddRelationship(a.ID, b.ID, models.RelationshipChild))
	require.True(t, s.AddRelationship(b.ID, c.ID, models.RelationshipChild))
	require.True(t, s.AddRelationship(c.ID, a.ID, models.RelationshipChild))

	l := Compute(s.Snapshot())
	assert.Len(t, l.Nodes, 3, "every person gets exactly one position")
	assert.Len(t, l.Edges, 3)
	checkNoOverlap(t, l)
}

func TestComputeIgnoresDanglingReferences(t *testing.T) {
	people := []models.Person{
		{ID: "a", ChildIDs: models.IDList{"ghost", "b"}, ParentIDs: models.IDList{}, PartnerIDs: models.IDList{"phantom"}, SpouseIDs: models.IDList{}},
		{ID: "b", ParentIDs: models.IDList{"a"}, ChildIDs: models.IDList{}, PartnerIDs: models.IDList{}, SpouseIDs: models.IDList{}},
	}

	l := Compute(people)
	require.Len(t, l.Nodes, 2)
	require.Len(t, l.Edges, 1, "edges to missing endpoints are skipped")
	assert.Equal(t, "a->b", l.Edges[0].ID)
	checkNoOverlap(t, l)
}

func TestStragglerAnchoredBelowParent(t *testing.T) {
	s := tree.NewStore()
	a := s.AddPerson(models.Person{FirstName: "A"})
	b := s.AddPerson(models.Person{FirstName: "B"})
	c := s.AddPerson(models.Person{FirstName: "C"})
	// b is placed as a's partner without descending; c is reached only
	// through b and must be anchored below it
	require.True(t, s.AddRelationship(a.ID, b.ID, models.RelationshipPartner))
	require.True(t, s.AddRelationship(b.ID, c.ID, models.RelationshipChild))

	l := Compute(s.Snapshot())
	require.Len(t, l.Nodes, 3)

	bNode := nodeByID(t, l, b.ID)
	cNode := nodeByID(t, l, c.ID)
	assert.Equal(t, bNode.Y+yStep, cNode.Y, "straggler child sits one generation below its parent")
	assert.Equal(t, bNode.X, cNode.X)
	checkNoOverlap(t, l)
}

func TestStragglerAnchoredAbovePositionedChild(t *testing.T) {
	s := tree.NewStore()
	a := s.AddPerson(models.Person{FirstName: "A"})
	b := s.AddPerson(models.Person{FirstName: "B"})
	p := s.AddPerson(models.Person{FirstName: "P"})
	// a (the root) has partner b; p is b's parent and is only reachable
	// upward from b
	require.True(t, s.AddRelationship(a.ID, b.ID, models.RelationshipPartner))
	require.True(t, s.AddRelationship(p.ID, b.ID, models.RelationshipChild))

	l := Compute(s.Snapshot())
	require.Len(t, l.Nodes, 3)

	bNode := nodeByID(t, l, b.ID)
	pNode := nodeByID(t, l, p.ID)
	assert.Equal(t, bNode.Y-yStep, pNode.Y, "parent straggler sits one generation above its child")
	checkNoOverlap(t, l)
}

func TestDisconnectedComponentsAreSeparated(t *testing.T) {
	s := tree.NewStore()
	a1 := s.AddPerson(models.Person{FirstName: "A1"})
	a2 := s.AddPerson(models.Person{FirstName: "A2"})
	b1 := s.AddPerson(models.Person{FirstName: "B1"})
	b2 := s.AddPerson(models.Person{FirstName: "B2"})
	require.True(t, s.AddRelationship(a1.ID, a2.ID, models.RelationshipChild))
	require.True(t, s.AddRelationship(b1.ID, b2.ID, models.RelationshipChild))

	l := Compute(s.Snapshot())
	require.Len(t, l.Nodes, 4)

	firstMaxX := nodeByID(t, l, a1.ID).X
	if x := nodeByID(t, l, a2.ID).X; x > firstMaxX {
		firstMaxX = x
	}
	for _, id := range []string{b1.ID, b2.ID} {
		assert.GreaterOrEqual(t, nodeByID(t, l, id).X, firstMaxX+NodeWidth+componentGap,
			"second cluster must start past the first cluster's extent")
	}
	checkNoOverlap(t, l)
}

func TestWideFamilyNoOverlap(t *testing.T) {
	s := tree.NewStore()
	root := s.AddPerson(models.Person{FirstName: "Root"})
	spouse := s.AddPerson(models.Person{FirstName: "Spouse"})
	require.True(t, s.AddRelationship(root.ID, spouse.ID, models.RelationshipSpouse))

	for i := 0; i < 6; i++ {
		kid := s.AddPerson(models.Person{FirstName: fmt.Sprintf("Kid%d", i)})
		require.True(t, s.AddRelationship(root.ID, kid.ID, models.RelationshipChild))
		require.True(t, s.AddRelationship(spouse.ID, kid.ID, models.RelationshipChild))
		for j := 0; j < 2; j++ {
			grandkid := s.AddPerson(models.Person{FirstName: fmt.Sprintf("Grandkid%d_%d", i, j)})
			require.True(t, s.AddRelationship(kid.ID, grandkid.ID, models.RelationshipChild))
		}
	}

	snapshot := s.Snapshot()
	l := Compute(snapshot)
	assert.Len(t, l.Nodes, len(snapshot), "layout is total: one node per person")
	checkNoOverlap(t, l)

	// still deterministic at this size
	assert.Equal(t, l, Compute(snapshot))
}

func TestUndirectedEdgeDeduplicated(t *testing.T) {
	s := tree.NewStore()
	a := s.AddPerson(models.Person{FirstName: "A"})
	b := s.AddPerson(models.Person{FirstName: "B"})
	// both partner and spouse links between the same pair
	require.True(t, s.AddRelationship(a.ID, b.ID, models.RelationshipPartner))
	require.True(t, s.AddRelationship(a.ID, b.ID, models.RelationshipSpouse))

	l := Compute(s.Snapshot())
	assert.Len(t, l.Edges, 1, "a pair linked as partner and spouse yields one undirected edge")
	assert.Equal(t, EdgeKindUndirected, l.Edges[0].Kind)
}
