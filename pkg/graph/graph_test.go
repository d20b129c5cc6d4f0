package graph

import "testing"

func TestGraphBasics(t *testing.T) {
	g := NewGraph()

	g.EnsureNode("frodo", "Frodo Baggins")
	g.EnsureNode("sam", "Samwise Gamgee")
	g.EnsureNode("shire", "The Shire")

	if g.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3", g.NodeCount())
	}

	g.AddLink("frodo", "sam")
	g.AddLink("frodo", "shire")
	g.AddLink("frodo", "shire")

	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", g.EdgeCount())
	}
	if w := g.Outbound["frodo"]["shire"].Weight; w != 2 {
		t.Errorf("Repeated link weight = %d, want 2", w)
	}

	neighbors := g.Neighbors("frodo")
	if len(neighbors) != 2 {
		t.Errorf("Frodo neighbors = %d, want 2", len(neighbors))
	}
	if neighbors[0].ID != "sam" {
		t.Errorf("Neighbors should follow insertion order, got %s first", neighbors[0].ID)
	}
}

func TestEnsureNodeKeepsExisting(t *testing.T) {
	g := NewGraph()

	n := g.EnsureNode("a", "First")
	n.Size = 3
	again := g.EnsureNode("a", "Second")

	if again.Title != "First" || again.Size != 3 {
		t.Errorf("EnsureNode replaced existing node: %+v", again)
	}
}

func TestOrphanNodes(t *testing.T) {
	g := NewGraph()

	g.EnsureNode("connected", "Connected")
	g.EnsureNode("orphan", "Orphan")
	g.EnsureNode("target", "Target")

	g.AddLink("connected", "target")

	orphans := g.OrphanNodes()
	if len(orphans) != 1 {
		t.Fatalf("Orphan count = %d, want 1", len(orphans))
	}
	if orphans[0].ID != "orphan" {
		t.Errorf("Orphan ID = %s, want 'orphan'", orphans[0].ID)
	}
}

func TestDegreeCentrality(t *testing.T) {
	g := NewGraph()

	g.EnsureNode("hub", "Hub")
	g.EnsureNode("a", "A")
	g.EnsureNode("b", "B")
	g.EnsureNode("c", "C")

	// Hub connects to all
	g.AddLink("hub", "a")
	g.AddLink("hub", "b")
	g.AddLink("hub", "c")

	centrality := g.DegreeCentrality()

	if centrality["hub"] <= centrality["a"] {
		t.Error("Hub should have higher centrality than leaf nodes")
	}
}

func TestSubgraph(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"a", "b", "c", "d", "x"} {
		g.EnsureNode(id, id)
	}
	// a -> b -> c -> d, x isolated
	g.AddLink("a", "b")
	g.AddLink("b", "c")
	g.AddLink("c", "d")

	one := g.Subgraph("b", 1)
	if one.NodeCount() != 3 {
		t.Errorf("Depth 1 around b = %d nodes, want 3", one.NodeCount())
	}
	if one.EdgeCount() != 2 {
		t.Errorf("Depth 1 around b = %d edges, want 2", one.EdgeCount())
	}

	two := g.Subgraph("b", 2)
	if two.NodeCount() != 4 {
		t.Errorf("Depth 2 around b = %d nodes, want 4", two.NodeCount())
	}

	if g.Subgraph("missing", 2) != nil {
		t.Error("Subgraph of unknown node should be nil")
	}
}

func TestDataOrder(t *testing.T) {
	g := NewGraph()
	g.EnsureNode("z", "Z")
	g.EnsureNode("a", "A")
	g.AddLink("z", "a")
	g.AddLink("a", "z")

	data := g.Data()
	if len(data.Nodes) != 2 || data.Nodes[0].ID != "z" {
		t.Errorf("Nodes out of order: %+v", data.Nodes)
	}
	if len(data.Edges) != 2 || data.Edges[0].Source != "z" {
		t.Errorf("Edges out of order: %+v", data.Edges)
	}

	g.Clear()
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Error("Clear should empty the graph")
	}
}
