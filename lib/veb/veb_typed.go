package veb

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/benz9527/xveb/lib/infra"
)

type keyPosition int8

const (
	keyBelow keyPosition = -1 + iota
	keyInside
	keyAbove
)

var _ TypedVEB[int32] = (*typedVEB[int32])(nil)

type typedVEB[T infra.NumericKey] struct {
	tree      *vebTree
	kind      KeyKind
	originKey uint64
}

func (t *typedVEB[T]) rootNode() *vebNode {
	return t.tree.root
}

// locate translates v into the tree key space, relative to the origin.
func (t *typedVEB[T]) locate(v T) (uint64, uint64, keyPosition) {
	key := EncodeKey[T](v)
	if key < t.originKey {
		return key, 0, keyBelow
	}
	rel := key - t.originKey
	if rel >= t.tree.universe {
		return key, rel, keyAbove
	}
	return key, rel, keyInside
}

func (t *typedVEB[T]) restore(rel uint64) T {
	return DecodeKey[T](rel + t.originKey)
}

func (t *typedVEB[T]) Kind() KeyKind {
	return t.kind
}

func (t *typedVEB[T]) Universe() uint64 {
	return t.tree.universe
}

func (t *typedVEB[T]) Len() int64 {
	return t.tree.count
}

func (t *typedVEB[T]) Insert(v T) error {
	key, rel, pos := t.locate(v)
	if pos != keyInside {
		return t.tree.outOfUniverse(v, key, t.originKey)
	}
	t.tree.insertKey(rel)
	return nil
}

func (t *typedVEB[T]) InsertAll(vs ...T) error {
	var es infra.ErrorStack
	for _, v := range vs {
		if err := t.Insert(v); err != nil {
			es = infra.AppendErrorStack(es, err)
		}
	}
	if es == nil {
		return nil
	}
	return es
}

func (t *typedVEB[T]) Contains(v T) bool {
	_, rel, pos := t.locate(v)
	if pos != keyInside || t.tree.root == nil {
		return false
	}
	return t.tree.root.contains(rel)
}

// Successor of a value below the window is the min, above it there is none.
func (t *typedVEB[T]) Successor(v T) (T, bool) {
	var zero T
	_, rel, pos := t.locate(v)
	switch pos {
	case keyBelow:
		return t.Min()
	case keyAbove:
		return zero, false
	default:
	}
	if t.tree.root == nil {
		return zero, false
	}
	succ, ok := t.tree.root.successor(rel)
	if !ok {
		return zero, false
	}
	return t.restore(succ), true
}

// Predecessor of a value above the window is the max, below it there is none.
func (t *typedVEB[T]) Predecessor(v T) (T, bool) {
	var zero T
	_, rel, pos := t.locate(v)
	switch pos {
	case keyBelow:
		return zero, false
	case keyAbove:
		return t.Max()
	default:
	}
	if t.tree.root == nil {
		return zero, false
	}
	pred, ok := t.tree.root.predecessor(rel)
	if !ok {
		return zero, false
	}
	return t.restore(pred), true
}

func (t *typedVEB[T]) Remove(v T) (bool, error) {
	key, rel, pos := t.locate(v)
	if pos != keyInside {
		return false, t.tree.outOfUniverse(v, key, t.originKey)
	}
	return t.tree.removeKey(rel), nil
}

func (t *typedVEB[T]) RemoveAll(vs ...T) (int64, error) {
	var (
		es      infra.ErrorStack
		removed int64
	)
	for _, v := range vs {
		ok, err := t.Remove(v)
		if err != nil {
			es = infra.AppendErrorStack(es, err)
			continue
		}
		if ok {
			removed++
		}
	}
	if es == nil {
		return removed, nil
	}
	return removed, es
}

func (t *typedVEB[T]) Min() (T, bool) {
	rel, ok := t.tree.Min()
	if !ok {
		var zero T
		return zero, false
	}
	return t.restore(rel), true
}

func (t *typedVEB[T]) Max() (T, bool) {
	rel, ok := t.tree.Max()
	if !ok {
		var zero T
		return zero, false
	}
	return t.restore(rel), true
}

func (t *typedVEB[T]) Foreach(action func(idx int64, v T) bool) {
	t.tree.Foreach(func(idx int64, rel uint64) bool {
		return action(idx, t.restore(rel))
	})
}

func (t *typedVEB[T]) Release() {
	t.tree.Release()
}

// NewTypedVEB creates an empty tree of element type T. The universe
// counts the consecutive encoded keys starting at the origin, so
// NewTypedVEB[int32](16) holds the values 0..15.
func NewTypedVEB[T infra.NumericKey](universe uint64, opts ...VEBOption) (TypedVEB[T], error) {
	vopts, err := buildVEBOptions(opts...)
	if err != nil {
		return nil, err
	}

	kind := KindOf[T]()
	var originKey uint64
	switch {
	case vopts.fullRange:
		originKey = lowestKey(kind)
	case vopts.hasOrigin:
		if vopts.originKind != kind {
			return nil, infra.WrapErrorStackWithMessage(
				ErrVEBOriginKindMismatch,
				fmt.Sprintf("[veb] %s origin for a %s tree", vopts.originKind, kind),
			)
		}
		originKey = vopts.originKey
	default:
		var zero T
		originKey = EncodeKey[T](zero)
	}

	tree, err := newVEBTree(universe, vopts)
	if err != nil {
		return nil, err
	}
	tree.logger.Debug("[veb] typed",
		zap.Stringer("kind", kind),
		zap.Uint64("originKey", originKey),
	)
	return &typedVEB[T]{
		tree:      tree,
		kind:      kind,
		originKey: originKey,
	}, nil
}
