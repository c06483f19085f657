package services

import (
	"context"
	"slices"

	"tenor/apperr"
	"tenor/model"

	"cloud.google.com/go/firestore"
)

// DependencyNode is anything that carries dependencyIds and requiredByIds.
type DependencyNode struct {
	ID            string   `json:"id"`
	DependencyIDs []string `json:"dependencyIds"`
	RequiredByIDs []string `json:"requiredByIds"`
}

// Edge means Source depends on Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// BuildAdjacency returns source -> targets. A requiredBy entry on X naming
// Y is the same edge as Y depending on X.
func BuildAdjacency(nodes []DependencyNode, extra []Edge) map[string][]string {
	adj := map[string][]string{}
	add := func(from, to string) {
		if _, ok := adj[to]; !ok {
			adj[to] = nil
		}
		if !slices.Contains(adj[from], to) {
			adj[from] = append(adj[from], to)
		}
	}
	for _, n := range nodes {
		if _, ok := adj[n.ID]; !ok {
			adj[n.ID] = nil
		}
		for _, d := range n.DependencyIDs {
			add(n.ID, d)
		}
		for _, r := range n.RequiredByIDs {
			add(r, n.ID)
		}
	}
	for _, e := range extra {
		add(e.Source, e.Target)
	}
	return adj
}

// HasDependencyCycle runs a depth-first search keeping the current path.
func HasDependencyCycle(adj map[string][]string) bool {
	visited := map[string]bool{}
	onStack := map[string]bool{}

	var visit func(id string) bool
	visit = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, next := range adj[id] {
			if onStack[next] {
				return true
			}
			if !visited[next] && visit(next) {
				return true
			}
		}
		onStack[id] = false
		return false
	}

	ids := make([]string, 0, len(adj))
	for id := range adj {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if !visited[id] && visit(id) {
			return true
		}
	}
	return false
}

// replaceNode swaps in the pending version of a node before a cycle check.
func replaceNode(nodes []DependencyNode, n DependencyNode) []DependencyNode {
	out := make([]DependencyNode, 0, len(nodes)+1)
	for _, existing := range nodes {
		if existing.ID != n.ID {
			out = append(out, existing)
		}
	}
	return append(out, n)
}

// diffIDs returns ids only in next and ids only in prev.
func diffIDs(prev, next []string) (added, removed []string) {
	for _, id := range next {
		if !slices.Contains(prev, id) {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if !slices.Contains(next, id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

var errCircularDependency = apperr.BadRequest("Circular dependency detected.")

type dependencyDoc struct {
	ID            string   `firestore:"-"`
	DependencyIDs []string `firestore:"dependencyIds"`
	RequiredByIDs []string `firestore:"requiredByIds"`
}

func (d *dependencyDoc) SetID(id string) { d.ID = id }

func loadDependencyNodes(ctx context.Context, fb *firestore.Client, projectID string, t model.ItemType) ([]DependencyNode, error) {
	docs, err := listDocs[dependencyDoc](ctx, active(ItemsRef(fb, projectID, t)))
	if err != nil {
		return nil, err
	}
	nodes := make([]DependencyNode, len(docs))
	for i, d := range docs {
		nodes[i] = DependencyNode{ID: d.ID, DependencyIDs: d.DependencyIDs, RequiredByIDs: d.RequiredByIDs}
	}
	return nodes, nil
}

// checkDependencies validates a pending node against the stored graph.
// Unknown ids and self references are BAD_REQUEST.
func checkDependencies(nodes []DependencyNode, pending DependencyNode) error {
	known := map[string]bool{}
	for _, n := range nodes {
		known[n.ID] = true
	}
	for _, ids := range [][]string{pending.DependencyIDs, pending.RequiredByIDs} {
		for _, id := range ids {
			if id == pending.ID {
				return apperr.BadRequest("An item cannot depend on itself")
			}
			if !known[id] {
				return apperr.BadRequest("Dependency %s not found", id)
			}
		}
	}
	if HasDependencyCycle(BuildAdjacency(replaceNode(nodes, pending), nil)) {
		return errCircularDependency
	}
	return nil
}

// linkDependencies queues the reverse-side updates that keep dependencyIds
// and requiredByIds symmetric when a node changes from prev to next.
func linkDependencies(b *bulk, col *firestore.CollectionRef, prev, next DependencyNode) {
	addedDeps, removedDeps := diffIDs(prev.DependencyIDs, next.DependencyIDs)
	for _, id := range addedDeps {
		b.arrayUnion(col.Doc(id), "requiredByIds", next.ID)
	}
	for _, id := range removedDeps {
		b.arrayRemove(col.Doc(id), "requiredByIds", next.ID)
	}
	addedReq, removedReq := diffIDs(prev.RequiredByIDs, next.RequiredByIDs)
	for _, id := range addedReq {
		b.arrayUnion(col.Doc(id), "dependencyIds", next.ID)
	}
	for _, id := range removedReq {
		b.arrayRemove(col.Doc(id), "dependencyIds", next.ID)
	}
}

func findNode(nodes []DependencyNode, id string) (DependencyNode, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return DependencyNode{}, false
}

// AddDependency records that itemID depends on dependencyID.
func AddDependency(ctx context.Context, fb *firestore.Client, projectID, userID string, t model.ItemType, itemID, dependencyID string) error {
	nodes, err := loadDependencyNodes(ctx, fb, projectID, t)
	if err != nil {
		return err
	}
	prev, ok := findNode(nodes, itemID)
	if !ok {
		return apperr.NotFound("Item not found")
	}
	if slices.Contains(prev.DependencyIDs, dependencyID) {
		return nil
	}
	next := prev
	next.DependencyIDs = append(slices.Clone(prev.DependencyIDs), dependencyID)
	if err := checkDependencies(nodes, next); err != nil {
		return err
	}

	col := ItemsRef(fb, projectID, t)
	b := newBulk(ctx, fb)
	b.arrayUnion(col.Doc(itemID), "dependencyIds", dependencyID)
	linkDependencies(b, col, prev, next)
	if err := b.end(); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, itemID, t, model.ActionUpdate)
	return nil
}

func RemoveDependency(ctx context.Context, fb *firestore.Client, projectID, userID string, t model.ItemType, itemID, dependencyID string) error {
	col := ItemsRef(fb, projectID, t)
	b := newBulk(ctx, fb)
	b.arrayRemove(col.Doc(itemID), "dependencyIds", dependencyID)
	b.arrayRemove(col.Doc(dependencyID), "requiredByIds", itemID)
	if err := b.end(); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, itemID, t, model.ActionUpdate)
	return nil
}

// DependencyGraph is the node and edge list the client lays out.
type DependencyGraph struct {
	Nodes []DependencyNode `json:"nodes"`
	Edges []Edge           `json:"edges"`
}

func GetDependencyGraph(ctx context.Context, fb *firestore.Client, projectID string, t model.ItemType) (DependencyGraph, error) {
	nodes, err := loadDependencyNodes(ctx, fb, projectID, t)
	if err != nil {
		return DependencyGraph{}, err
	}
	return graphOf(nodes), nil
}

func graphOf(nodes []DependencyNode) DependencyGraph {
	adj := BuildAdjacency(nodes, nil)
	ids := make([]string, 0, len(adj))
	for id := range adj {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	g := DependencyGraph{Nodes: nodes, Edges: []Edge{}}
	for _, id := range ids {
		for _, to := range adj[id] {
			g.Edges = append(g.Edges, Edge{Source: id, Target: to})
		}
	}
	return g
}
