package profiling

import (
	"strings"
	"testing"
)

func TestNilNodeIsNoop(t *testing.T) {
	var n *Node
	n.AddDrawCall()
	n.AddTriangles(3)
	n.AddVertices(4)
	n.Track()()
	n.Reset()
	if c := n.Child("x"); c != nil {
		t.Errorf("nil.Child() = %v, want nil", c)
	}
	if s := n.Snapshot(); s.DrawCalls != 0 || s.Name != "" {
		t.Errorf("nil.Snapshot() = %+v", s)
	}
}

func TestSnapshotAggregatesChildren(t *testing.T) {
	root := NewNode("frame")
	sky := root.Child("sky")
	sky.AddDrawCall()
	sky.AddTriangles(10)
	ocean := root.Child("ocean")
	ocean.AddDrawCall()
	ocean.AddDrawCall()
	ocean.AddVertices(30)
	root.AddDrawCall()

	if root.Child("sky") != sky {
		t.Error("Child returned a new node for an existing name")
	}

	s := root.Snapshot()
	if s.DrawCalls != 4 || s.Triangles != 10 || s.Vertices != 30 {
		t.Errorf("Snapshot() = %d dc, %d tris, %d verts; want 4, 10, 30", s.DrawCalls, s.Triangles, s.Vertices)
	}
	if len(s.Children) != 2 {
		t.Errorf("len(Children) = %d, want 2", len(s.Children))
	}

	root.Reset()
	if s := root.Snapshot(); s.DrawCalls != 0 || len(s.Children) != 2 {
		t.Errorf("after Reset: %d dc, %d children", s.DrawCalls, len(s.Children))
	}
}

func TestTopN(t *testing.T) {
	root := NewNode("frame")
	root.Child("a").AddDrawCall()
	root.Child("b").Track()()
	got := root.TopN(5)
	if !strings.Contains(got, "a:") || !strings.Contains(got, "b:") {
		t.Errorf("TopN() = %q, want both children", got)
	}
	if strings.Count(root.TopN(1), ",") != 0 {
		t.Errorf("TopN(1) = %q, want a single entry", root.TopN(1))
	}
}
