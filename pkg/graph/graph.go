// Package graph provides the document link graph handed to visualization
// consumers. It is a snapshot view; the backlink index stays the source of truth.
package graph

// Node is a document in the graph. Size is its incoming link count;
// Centrality is its degree centrality in the whole graph.
type Node struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Size       int     `json:"size"`
	Centrality float64 `json:"centrality"`
}

// Edge is a resolved link between two documents. Weight counts the link
// occurrences collapsed into it.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Data is the plain node/edge list consumed by graph renderers.
type Data struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// LinkGraph is a directed document graph
type LinkGraph struct {
	// Node storage: ID -> Node
	Nodes map[string]*Node

	// Adjacency lists: SourceID -> TargetID -> Edge
	Outbound map[string]map[string]*Edge
	Inbound  map[string]map[string]*Edge

	// Insertion order keeps Data() stable
	nodeOrder []string
	edgeOrder []*Edge
}

// NewGraph creates an empty graph
func NewGraph() *LinkGraph {
	return &LinkGraph{
		Nodes:    make(map[string]*Node),
		Outbound: make(map[string]map[string]*Edge),
		Inbound:  make(map[string]map[string]*Edge),
	}
}

// EnsureNode adds a node if it doesn't exist, returns existing node otherwise
func (g *LinkGraph) EnsureNode(id, title string) *Node {
	if existing, exists := g.Nodes[id]; exists {
		return existing
	}

	node := &Node{ID: id, Title: title}
	g.Nodes[id] = node
	g.nodeOrder = append(g.nodeOrder, id)
	return node
}

// AddLink records one link occurrence from source to target. Repeated links
// between the same pair increase the edge weight.
func (g *LinkGraph) AddLink(sourceID, targetID string) *Edge {
	if edge := g.Outbound[sourceID][targetID]; edge != nil {
		edge.Weight++
		return edge
	}

	edge := &Edge{Source: sourceID, Target: targetID, Weight: 1}
	if g.Outbound[sourceID] == nil {
		g.Outbound[sourceID] = make(map[string]*Edge)
	}
	g.Outbound[sourceID][targetID] = edge

	// Maintain reverse index
	if g.Inbound[targetID] == nil {
		g.Inbound[targetID] = make(map[string]*Edge)
	}
	g.Inbound[targetID][sourceID] = edge

	g.edgeOrder = append(g.edgeOrder, edge)
	return edge
}

// GetNode retrieves a node by ID
func (g *LinkGraph) GetNode(id string) *Node {
	return g.Nodes[id]
}

// Neighbors returns all nodes connected to the given node (both directions),
// in node insertion order
func (g *LinkGraph) Neighbors(id string) []*Node {
	var result []*Node
	for _, other := range g.nodeOrder {
		if other == id {
			continue
		}
		if g.Outbound[id][other] != nil || g.Inbound[id][other] != nil {
			result = append(result, g.Nodes[other])
		}
	}
	return result
}

// NodeCount returns the number of nodes
func (g *LinkGraph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of distinct source/target pairs
func (g *LinkGraph) EdgeCount() int {
	return len(g.edgeOrder)
}

// DegreeCentrality computes (in+out)/(2*(n-1)) for each node
func (g *LinkGraph) DegreeCentrality() map[string]float64 {
	n := len(g.Nodes)
	result := make(map[string]float64, n)
	if n <= 1 {
		for id := range g.Nodes {
			result[id] = 0.0
		}
		return result
	}

	normalizer := 2.0 * float64(n-1)
	for id := range g.Nodes {
		outDegree := len(g.Outbound[id])
		inDegree := len(g.Inbound[id])
		result[id] = float64(outDegree+inDegree) / normalizer
	}
	return result
}

// Subgraph returns the neighborhood of id up to depth hops, following links
// in both directions. Nil if id is not in the graph.
func (g *LinkGraph) Subgraph(id string, depth int) *LinkGraph {
	if g.Nodes[id] == nil {
		return nil
	}

	dist := map[string]int{id: 0}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] >= depth {
			continue
		}
		for _, nb := range g.Neighbors(cur) {
			if _, seen := dist[nb.ID]; !seen {
				dist[nb.ID] = dist[cur] + 1
				queue = append(queue, nb.ID)
			}
		}
	}

	sub := NewGraph()
	for _, nid := range g.nodeOrder {
		if _, ok := dist[nid]; ok {
			n := g.Nodes[nid]
			*sub.EnsureNode(n.ID, n.Title) = *n
		}
	}
	for _, e := range g.edgeOrder {
		_, okS := dist[e.Source]
		_, okT := dist[e.Target]
		if okS && okT {
			sub.AddLink(e.Source, e.Target).Weight = e.Weight
		}
	}
	return sub
}

// Data flattens the graph into node and edge lists in insertion order
func (g *LinkGraph) Data() Data {
	data := Data{
		Nodes: make([]Node, 0, len(g.nodeOrder)),
		Edges: make([]Edge, 0, len(g.edgeOrder)),
	}
	for _, id := range g.nodeOrder {
		data.Nodes = append(data.Nodes, *g.Nodes[id])
	}
	for _, e := range g.edgeOrder {
		data.Edges = append(data.Edges, *e)
	}
	return data
}

// Clear removes all nodes and edges
func (g *LinkGraph) Clear() {
	g.Nodes = make(map[string]*Node)
	g.Outbound = make(map[string]map[string]*Edge)
	g.Inbound = make(map[string]map[string]*Edge)
	g.nodeOrder = nil
	g.edgeOrder = nil
}

// OrphanNodes returns nodes with no connections
func (g *LinkGraph) OrphanNodes() []*Node {
	var orphans []*Node
	for _, id := range g.nodeOrder {
		if len(g.Outbound[id]) == 0 && len(g.Inbound[id]) == 0 {
			orphans = append(orphans, g.Nodes[id])
		}
	}
	return orphans
}
