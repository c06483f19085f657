package services

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"tenor/apperr"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// document is a model pointer that learns its Firestore id after decoding.
type document[T any] interface {
	*T
	SetID(string)
}

func decode[T any, PT document[T]](snap *firestore.DocumentSnapshot) (T, error) {
	var v T
	if err := snap.DataTo(&v); err != nil {
		return v, fmt.Errorf("decode %s: %w", snap.Ref.Path, err)
	}
	PT(&v).SetID(snap.Ref.ID)
	return v, nil
}

// getDoc reads one document; a missing document becomes a NOT_FOUND error
// with the given message.
func getDoc[T any, PT document[T]](ctx context.Context, ref *firestore.DocumentRef, notFound string) (T, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		var zero T
		if status.Code(err) == codes.NotFound {
			return zero, apperr.NotFound("%s", notFound)
		}
		return zero, err
	}
	return decode[T, PT](snap)
}

func listDocs[T any, PT document[T]](ctx context.Context, q firestore.Query) ([]T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []T{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := decode[T, PT](snap)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func countDocs(ctx context.Context, q firestore.Query) (int, error) {
	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result %T", res["all"])
	}
	return int(v.GetIntegerValue()), nil
}

func exists(ctx context.Context, ref *firestore.DocumentRef) (bool, error) {
	_, err := ref.Get(ctx)
	if err == nil {
		return true, nil
	}
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	return false, err
}

// active filters out soft-deleted documents.
func active(c *firestore.CollectionRef) firestore.Query {
	return c.Where("deleted", "==", false)
}

// bulk collects writes and flushes them on a BulkWriter. BulkWriter takes
// one write per document, so writes to the same document are merged: plain
// field updates are combined and ArrayUnion/ArrayRemove ids are grouped per
// field. A write that cannot be merged moves to a later round, and rounds are
// flushed in order.
type bulk struct {
	ctx    context.Context
	fb     *firestore.Client
	rounds []*bulkRound
}

type bulkRound struct {
	order []string
	docs  map[string]*docWrite
}

type docWrite struct {
	ref     *firestore.DocumentRef
	deleted bool
	data    any
	setOpts []firestore.SetOption
	fields  []firestore.Update
	union   map[string][]any
	remove  map[string][]any
}

func newBulk(ctx context.Context, fb *firestore.Client) *bulk {
	return &bulk{ctx: ctx, fb: fb}
}

func updateKey(u firestore.Update) string {
	if u.Path != "" {
		return u.Path
	}
	return strings.Join(u.FieldPath, ".")
}

func (w *docWrite) hasUpdates() bool {
	return len(w.fields) > 0 || len(w.union) > 0 || len(w.remove) > 0
}

func (w *docWrite) touches(field string) bool {
	if _, ok := w.union[field]; ok {
		return true
	}
	if _, ok := w.remove[field]; ok {
		return true
	}
	return slices.ContainsFunc(w.fields, func(u firestore.Update) bool { return updateKey(u) == field })
}

// pending returns the write for ref that the next operation merges into.
// Writes never move before an earlier round touching the same document.
func (b *bulk) pending(ref *firestore.DocumentRef, fits func(*docWrite) bool) *docWrite {
	last := -1
	for i, r := range b.rounds {
		if _, ok := r.docs[ref.Path]; ok {
			last = i
		}
	}
	if last >= 0 {
		if w := b.rounds[last].docs[ref.Path]; fits(w) {
			return w
		}
	}
	next := last + 1
	if next == len(b.rounds) {
		b.rounds = append(b.rounds, &bulkRound{docs: map[string]*docWrite{}})
	}
	r := b.rounds[next]
	w := &docWrite{ref: ref}
	r.docs[ref.Path] = w
	r.order = append(r.order, ref.Path)
	return w
}

func (b *bulk) set(ref *firestore.DocumentRef, data any, opts ...firestore.SetOption) {
	w := b.pending(ref, func(w *docWrite) bool { return w.data == nil && !w.hasUpdates() })
	w.deleted = false
	w.data, w.setOpts = data, opts
}

func (b *bulk) update(ref *firestore.DocumentRef, updates []firestore.Update) {
	w := b.pending(ref, func(w *docWrite) bool {
		if w.deleted || w.data != nil {
			return false
		}
		for _, u := range updates {
			if w.touches(updateKey(u)) {
				return false
			}
		}
		return true
	})
	w.fields = append(w.fields, updates...)
}

func (b *bulk) arrayUnion(ref *firestore.DocumentRef, field string, ids ...string) {
	b.array(ref, field, ids, true)
}

func (b *bulk) arrayRemove(ref *firestore.DocumentRef, field string, ids ...string) {
	b.array(ref, field, ids, false)
}

func (b *bulk) array(ref *firestore.DocumentRef, field string, ids []string, add bool) {
	w := b.pending(ref, func(w *docWrite) bool {
		if w.deleted || w.data != nil {
			return false
		}
		other := w.remove
		if !add {
			other = w.union
		}
		if _, ok := other[field]; ok {
			return false
		}
		return !slices.ContainsFunc(w.fields, func(u firestore.Update) bool { return updateKey(u) == field })
	})
	target := &w.union
	if !add {
		target = &w.remove
	}
	if *target == nil {
		*target = map[string][]any{}
	}
	for _, id := range ids {
		if !slices.Contains((*target)[field], any(id)) {
			(*target)[field] = append((*target)[field], id)
		}
	}
}

func (b *bulk) delete(ref *firestore.DocumentRef) {
	w := b.pending(ref, func(*docWrite) bool { return true })
	*w = docWrite{ref: ref, deleted: true}
}

func (w *docWrite) updates() []firestore.Update {
	out := slices.Clone(w.fields)
	for _, field := range slices.Sorted(maps.Keys(w.union)) {
		out = append(out, firestore.Update{Path: field, Value: firestore.ArrayUnion(w.union[field]...)})
	}
	for _, field := range slices.Sorted(maps.Keys(w.remove)) {
		out = append(out, firestore.Update{Path: field, Value: firestore.ArrayRemove(w.remove[field]...)})
	}
	return out
}

func (r *bulkRound) flush(ctx context.Context, fb *firestore.Client) error {
	bw := fb.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(r.order))
	for _, path := range r.order {
		w := r.docs[path]
		var (
			job *firestore.BulkWriterJob
			err error
		)
		switch {
		case w.deleted:
			job, err = bw.Delete(w.ref)
		case w.data != nil:
			job, err = bw.Set(w.ref, w.data, w.setOpts...)
		default:
			job, err = bw.Update(w.ref, w.updates())
		}
		if err != nil {
			bw.End()
			return fmt.Errorf("queue write for %s: %w", path, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for _, j := range jobs {
		if _, err := j.Results(); err != nil {
			return err
		}
	}
	return nil
}

// end flushes every round; a failed round stops the later ones.
func (b *bulk) end() error {
	for _, r := range b.rounds {
		if err := r.flush(b.ctx, b.fb); err != nil {
			return err
		}
	}
	b.rounds = nil
	return nil
}
