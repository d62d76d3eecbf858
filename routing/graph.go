package routing

import (
	"container/heap"
	"net"

	"github.com/mdlayher/ospfd/ospfid"
)

// A VertexKind distinguishes the two kinds of vertex an SPF graph contains,
// RFC 2328 §16.1.
type VertexKind int

// Possible VertexKind values.
const (
	// RouterVertex is a router, keyed by its OSPF Router ID.
	RouterVertex VertexKind = iota
	// NetworkVertex is a transit broadcast/NBMA network, keyed by its
	// Designated Router's Router ID (the Network-LSA's Link State ID).
	NetworkVertex
)

// A Vertex identifies one node of the SPF graph.
type Vertex struct {
	Kind VertexKind
	ID   ospfid.ID
}

// A NextHop is one interface/neighbor a route egresses through.
type NextHop struct {
	// InterfaceID identifies the local interface the route egresses
	// through. It is opaque to routing: callers assign these however
	// their interface table does.
	InterfaceID uint32
	// RouterID is the adjacent router the route transits, the zero ID for
	// a directly attached stub network with no next router.
	RouterID ospfid.ID
}

// An Edge is one directed link from a Vertex to another, carrying the
// TOS-0 metric that link costs in RFC 2328 §16.1's Dijkstra walk, and (for
// edges leaving the root) the NextHop a route through this edge egresses
// through.
type Edge struct {
	To      Vertex
	Cost    uint16
	NextHop NextHop
}

// A Graph is the adjacency list an intra-area SPF run walks: one entry per
// vertex, listing every link that vertex's Router-LSA or Network-LSA
// advertised.
type Graph map[Vertex][]Edge

// A Stub is a leaf RFC 2328 §16.1 step 2 grafts onto the shortest-path tree
// after Dijkstra converges: a stub network link from a Router-LSA, or (for
// OSPFv3) a prefix from an Intra-Area-Prefix-LSA attached to a router or
// transit network already in the tree.
type Stub struct {
	Prefix   *net.IPNet
	Attached Vertex
	Cost     uint16
	NextHop  NextHop
}

// A SPFNode is one vertex's result after Dijkstra converges: its cost from
// root and the set of equal-cost next hops that reach it.
type SPFNode struct {
	Cost     uint16
	NextHops []NextHop
}

// heapItem is one entry in the Dijkstra candidate priority queue.
type heapItem struct {
	vertex Vertex
	cost   uint16
	index  int
}

type vertexHeap []*heapItem

func (h vertexHeap) Len() int           { return len(h) }
func (h vertexHeap) Less(i, j int) bool { return h[i].cost < h[j].cost }
func (h vertexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *vertexHeap) Push(x interface{}) {
	item := x.(*heapItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *vertexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// nextHopsVia computes the next-hop set a route to child should carry when
// reached from parent over edge e: the edge's own next hop when parent is
// root (the first hop onto a directly attached neighbor), otherwise the
// next-hop set already computed for parent, since every hop beyond the
// first just continues along the same egress interface/neighbor.
func nextHopsVia(parent, root Vertex, parentNode *SPFNode, e Edge) []NextHop {
	if parent == root {
		return []NextHop{e.NextHop}
	}
	return append([]NextHop(nil), parentNode.NextHops...)
}

// mergeNextHops adds next hops to an existing equal-cost SPFNode, deduping
// and capping at ecmpMax.
func mergeNextHops(node *SPFNode, add []NextHop, ecmpMax int) {
	for _, nh := range add {
		dup := false
		for _, existing := range node.NextHops {
			if existing == nh {
				dup = true
				break
			}
		}
		if !dup && len(node.NextHops) < ecmpMax {
			node.NextHops = append(node.NextHops, nh)
		}
	}
}

// Dijkstra runs RFC 2328 §16.1's shortest-path-tree algorithm over g rooted
// at root, returning one SPFNode per reachable vertex. ecmpMax bounds how
// many equal-cost next hops are retained per vertex; callers pass at least
// 1. Unreachable vertices are simply absent from the result.
func Dijkstra(g Graph, root Vertex, ecmpMax int) map[Vertex]*SPFNode {
	if ecmpMax < 1 {
		ecmpMax = 1
	}

	result := make(map[Vertex]*SPFNode)
	rootNode := &SPFNode{Cost: 0}
	result[root] = rootNode

	pq := &vertexHeap{{vertex: root, cost: 0}}
	heap.Init(pq)

	visited := make(map[Vertex]bool)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*heapItem)
		if visited[cur.vertex] {
			continue
		}
		visited[cur.vertex] = true

		node := result[cur.vertex]

		for _, e := range g[cur.vertex] {
			if visited[e.To] {
				continue
			}
			newCost := node.Cost + e.Cost

			next, ok := result[e.To]
			switch {
			case !ok || newCost < next.Cost:
				result[e.To] = &SPFNode{
					Cost:     newCost,
					NextHops: nextHopsVia(cur.vertex, root, node, e),
				}
				heap.Push(pq, &heapItem{vertex: e.To, cost: newCost})
			case newCost == next.Cost:
				mergeNextHops(next, nextHopsVia(cur.vertex, root, node, e), ecmpMax)
			}
		}
	}

	delete(result, root)
	return result
}
