// Package profiling provides scoped profiler nodes that renderers report
// draw statistics and timings into.
//
// A frame owns a root Node; each renderer pass gets a child:
//
//	root := profiling.NewNode("frame")
//	prof := root.Child("sky")
//	defer prof.Track()()
//	renderer.Render(data, rs, prof)
//	fmt.Println(root.TopN(5))
//
// All methods accept a nil receiver and do nothing, so callers that do not
// profile pass nil.
package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Node accumulates counters and elapsed time for one named scope.
// Node is safe for concurrent use.
type Node struct {
	name string

	mu        sync.Mutex
	children  []*Node
	drawCalls int
	triangles int
	vertices  int
	elapsed   time.Duration
}

// NewNode creates a root node.
func NewNode(name string) *Node {
	return &Node{name: name}
}

// Name returns the scope name.
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.name
}

// Child returns the child scope with the given name, creating it if needed.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	c := &Node{name: name}
	n.children = append(n.children, c)
	return c
}

// AddDrawCall counts one backend draw call.
func (n *Node) AddDrawCall() {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.drawCalls++
	n.mu.Unlock()
}

// AddTriangles counts triangles submitted.
func (n *Node) AddTriangles(count int) {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.triangles += count
	n.mu.Unlock()
}

// AddVertices counts vertices uploaded.
func (n *Node) AddVertices(count int) {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.vertices += count
	n.mu.Unlock()
}

// Track returns a stop function that adds the elapsed time to the node.
// Usage: defer prof.Track()()
func (n *Node) Track() func() {
	if n == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		n.mu.Lock()
		n.elapsed += d
		n.mu.Unlock()
	}
}

// Stats is a snapshot of one node, with its children's counters included.
type Stats struct {
	Name      string
	DrawCalls int
	Triangles int
	Vertices  int
	Elapsed   time.Duration
	Children  []Stats
}

// Snapshot returns the counters of the node and its subtree.
func (n *Node) Snapshot() Stats {
	if n == nil {
		return Stats{}
	}
	n.mu.Lock()
	s := Stats{
		Name:      n.name,
		DrawCalls: n.drawCalls,
		Triangles: n.triangles,
		Vertices:  n.vertices,
		Elapsed:   n.elapsed,
	}
	children := append([]*Node(nil), n.children...)
	n.mu.Unlock()

	for _, c := range children {
		cs := c.Snapshot()
		s.DrawCalls += cs.DrawCalls
		s.Triangles += cs.Triangles
		s.Vertices += cs.Vertices
		s.Children = append(s.Children, cs)
	}
	return s
}

// Reset clears the counters of the node and its subtree. Children are kept
// so that pointers held by renderers stay valid across frames.
func (n *Node) Reset() {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.drawCalls, n.triangles, n.vertices, n.elapsed = 0, 0, 0, 0
	children := append([]*Node(nil), n.children...)
	n.mu.Unlock()
	for _, c := range children {
		c.Reset()
	}
}

// TopN formats the n direct children with the most elapsed time.
// Example: "sky:1.2ms/4dc, ocean-near:0.8ms/3dc"
func (n *Node) TopN(count int) string {
	s := n.Snapshot()
	list := s.Children
	sort.Slice(list, func(i, j int) bool { return list[i].Elapsed > list[j].Elapsed })
	if count > len(list) {
		count = len(list)
	}
	parts := make([]string, 0, count)
	for _, c := range list[:count] {
		ms := float64(c.Elapsed.Microseconds()) / 1000.0
		parts = append(parts, fmt.Sprintf("%s:%.1fms/%ddc", c.Name, ms, c.DrawCalls))
	}
	return strings.Join(parts, ", ")
}
