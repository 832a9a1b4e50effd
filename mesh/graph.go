package mesh

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDisconnected is returned when some scanner cannot be reached from
	// the root through solved overlaps.
	ErrDisconnected = errors.New("transform graph is disconnected")

	// ErrRootOutOfRange is returned when the root is not a scanner index.
	ErrRootOutOfRange = errors.New("root scanner out of range")
)

// DisconnectedError lists the scanners that could not be placed.
// It matches ErrDisconnected with errors.Is.
type DisconnectedError struct {
	Root        int
	Unreachable []int
}

func (e *DisconnectedError) Error() string {
	return fmt.Sprintf("%v: scanners %v unreachable from scanner %d", ErrDisconnected, e.Unreachable, e.Root)
}

func (e *DisconnectedError) Is(target error) bool {
	return target == ErrDisconnected
}

// graphLink is one directed half of an undirected edge.
type graphLink struct {
	to        int
	transform Transform // maps the neighbor's frame into this node's frame
}

// TransformGraph is an undirected graph over scanner indices whose edges
// carry relative transforms in both directions.
type TransformGraph struct {
	adj [][]graphLink
}

// NewTransformGraph creates a graph with n scanners and no edges.
func NewTransformGraph(n int) *TransformGraph {
	return &TransformGraph{adj: make([][]graphLink, n)}
}

// Len returns the number of scanners.
func (g *TransformGraph) Len() int {
	return len(g.adj)
}

// AddEdge records that t maps scanner j's frame into scanner i's frame.
// The inverse is stored for the j -> i direction.
func (g *TransformGraph) AddEdge(i, j int, t Transform) error {
	if i < 0 || i >= len(g.adj) || j < 0 || j >= len(g.adj) {
		return fmt.Errorf("edge %d-%d out of range for %d scanners", i, j, len(g.adj))
	}
	g.adj[i] = append(g.adj[i], graphLink{to: j, transform: t})
	g.adj[j] = append(g.adj[j], graphLink{to: i, transform: InvertTransform(t)})
	return nil
}

// Neighbors returns the scanners directly linked to i.
func (g *TransformGraph) Neighbors(i int) []int {
	out := make([]int, 0, len(g.adj[i]))
	for _, l := range g.adj[i] {
		out = append(out, l.to)
	}
	return out
}

// BuildTransformGraph creates a graph from solved edges.
func BuildTransformGraph(n int, edges []Edge) (*TransformGraph, error) {
	g := NewTransformGraph(n)
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To, e.Transform); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// poseWalker holds the traversal state. Each pose slot is written exactly
// once, when its scanner is first reached.
type poseWalker struct {
	graph   *TransformGraph
	ctx     context.Context
	queue   []int
	visited []bool
	poses   []Pose
}

// ComposePoses walks the graph breadth-first from root, composing edge
// transforms into absolute poses. The first path that reaches a scanner
// fixes its pose; cycles are ignored.
func (g *TransformGraph) ComposePoses(ctx context.Context, root int) ([]Pose, error) {
	n := len(g.adj)
	if root < 0 || root >= n {
		return nil, fmt.Errorf("%w: %d (have %d scanners)", ErrRootOutOfRange, root, n)
	}

	w := &poseWalker{
		graph:   g,
		ctx:     ctx,
		queue:   make([]int, 0, n),
		visited: make([]bool, n),
		poses:   make([]Pose, n),
	}
	w.place(root, IdentityTransform())
	if err := w.loop(); err != nil {
		return nil, err
	}

	var unreachable []int
	for id, ok := range w.visited {
		if !ok {
			unreachable = append(unreachable, id)
		}
	}
	if len(unreachable) > 0 {
		sort.Ints(unreachable)
		return nil, &DisconnectedError{Root: root, Unreachable: unreachable}
	}
	return w.poses, nil
}

// place fixes the pose of id and queues it for expansion.
func (w *poseWalker) place(id int, t Transform) {
	w.visited[id] = true
	w.poses[id] = Pose{ScannerID: id, Transform: t}
	w.queue = append(w.queue, id)
}

func (w *poseWalker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		cur := w.queue[0]
		w.queue = w.queue[1:]
		parent := w.poses[cur].Transform
		for _, link := range w.graph.adj[cur] {
			if w.visited[link.to] {
				continue
			}
			w.place(link.to, ComposeTransforms(parent, link.transform))
		}
	}
	return nil
}
