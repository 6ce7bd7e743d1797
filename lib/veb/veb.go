package veb

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/benz9527/xveb/lib/infra"
	"github.com/benz9527/xveb/lib/xlog"
)

var (
	ErrVEBInvalidUniverse    = errors.New("[veb] universe size must be at least 1")
	ErrVEBOutOfUniverse      = errors.New("[veb] key out of universe")
	ErrVEBInvalidOption      = errors.New("[veb] invalid option")
	ErrVEBOriginKindMismatch = errors.New("[veb] origin element type mismatch")
	errVEBInvariantViolation = errors.New("[veb] invariant violation")
)

var _ VEB = (*vebTree)(nil)

type vebTree struct {
	root     *vebNode
	builder  *vebNodeBuilder
	logger   xlog.XLogger
	stats    *vebStats
	universe uint64
	count    int64
}

func (tree *vebTree) rootNode() *vebNode {
	return tree.root
}

func (tree *vebTree) Universe() uint64 {
	return tree.universe
}

func (tree *vebTree) Len() int64 {
	return tree.count
}

func (tree *vebTree) outOfUniverse(value any, key, originKey uint64) error {
	err := infra.WrapErrorStackWithMessage(
		ErrVEBOutOfUniverse,
		fmt.Sprintf("[veb] value %v (key %d) outside universe %d from origin key %d",
			value, key, tree.universe, originKey),
	)
	tree.stats.IncreaseOutOfUniverseCount()
	tree.logger.Warn("[veb] reject value", zap.Inline(err))
	return err
}

// insertKey requires key < universe.
func (tree *vebTree) insertKey(key uint64) {
	if tree.root == nil {
		tree.root = tree.builder.newNode(tree.universe)
	}
	clusters := tree.builder.clusters
	added := tree.root.insert(tree.builder, key)
	if added {
		tree.count++
	}
	tree.stats.RecordInsert(added)
	tree.stats.RecordClusterCount(tree.builder.clusters - clusters)
}

// removeKey requires key < universe.
func (tree *vebTree) removeKey(key uint64) bool {
	if tree.root == nil || !tree.root.contains(key) {
		tree.stats.RecordRemove(false)
		return false
	}
	clusters := tree.builder.clusters
	tree.root.remove(tree.builder, key)
	tree.count--
	tree.stats.RecordRemove(true)
	tree.stats.RecordClusterCount(tree.builder.clusters - clusters)
	return true
}

func (tree *vebTree) Insert(key uint64) error {
	if key >= tree.universe {
		return tree.outOfUniverse(key, key, 0)
	}
	tree.insertKey(key)
	return nil
}

func (tree *vebTree) InsertAll(keys ...uint64) error {
	var es infra.ErrorStack
	for _, key := range keys {
		if err := tree.Insert(key); err != nil {
			es = infra.AppendErrorStack(es, err)
		}
	}
	if es == nil {
		return nil
	}
	return es
}

func (tree *vebTree) Contains(key uint64) bool {
	if tree.root == nil || key >= tree.universe {
		return false
	}
	return tree.root.contains(key)
}

// Successor of a key beyond the universe does not exist.
func (tree *vebTree) Successor(key uint64) (uint64, bool) {
	if tree.root == nil || key >= tree.universe {
		return 0, false
	}
	return tree.root.successor(key)
}

// Predecessor of a key beyond the universe is the max.
func (tree *vebTree) Predecessor(key uint64) (uint64, bool) {
	if tree.root == nil {
		return 0, false
	}
	if key >= tree.universe {
		return tree.Max()
	}
	return tree.root.predecessor(key)
}

func (tree *vebTree) Remove(key uint64) (bool, error) {
	if key >= tree.universe {
		return false, tree.outOfUniverse(key, key, 0)
	}
	return tree.removeKey(key), nil
}

func (tree *vebTree) RemoveAll(keys ...uint64) (int64, error) {
	var (
		es      infra.ErrorStack
		removed int64
	)
	for _, key := range keys {
		ok, err := tree.Remove(key)
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

func (tree *vebTree) Min() (uint64, bool) {
	if tree.root == nil || tree.root.isEmpty() {
		return 0, false
	}
	return tree.root.min, true
}

func (tree *vebTree) Max() (uint64, bool) {
	if tree.root == nil || tree.root.isEmpty() {
		return 0, false
	}
	return tree.root.max, true
}

// Foreach walks the keys in ascending order until action returns false.
func (tree *vebTree) Foreach(action func(idx int64, key uint64) bool) {
	key, ok := tree.Min()
	for idx := int64(0); ok; idx++ {
		if !action(idx, key) {
			return
		}
		key, ok = tree.root.successor(key)
	}
}

// Release tears down every node. The tree is empty afterwards and
// the next insert allocates a new root.
func (tree *vebTree) Release() {
	aux := tree.root
	tree.root = nil
	if aux == nil {
		return
	}
	clusters := tree.builder.clusters
	tree.builder.release(aux)
	tree.stats.RecordClusterCount(tree.builder.clusters - clusters)
	tree.stats.RecordRelease(tree.count)
	tree.logger.Debug("[veb] released",
		zap.Uint64("universe", tree.universe),
		zap.Int64("elements", tree.count),
	)
	tree.count = 0
}

func newVEBTree(universe uint64, opts *vebOptions) (*vebTree, error) {
	if universe == 0 {
		return nil, infra.WrapErrorStack(ErrVEBInvalidUniverse)
	}
	tree := &vebTree{
		universe: universe,
	}
	opts.apply(tree)
	tree.root = tree.builder.newNode(universe)
	tree.logger.Debug("[veb] created",
		zap.Uint64("universe", universe),
		zap.Int("levels", vebLevels(universe)),
		zap.Bool("sparseRoot", tree.root.sparse != nil),
	)
	return tree, nil
}

func buildVEBOptions(opts ...VEBOption) (*vebOptions, error) {
	vopts := &vebOptions{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(vopts); err != nil {
			return nil, err
		}
	}
	return vopts, nil
}

// NewVEB creates an empty tree over the keys [0, universe).
// A universe of 1 or 2 is a single base node.
func NewVEB(universe uint64, opts ...VEBOption) (VEB, error) {
	vopts, err := buildVEBOptions(opts...)
	if err != nil {
		return nil, err
	}
	if vopts.hasOrigin || vopts.fullRange {
		return nil, infra.WrapErrorStackWithMessage(ErrVEBInvalidOption, "raw key tree has no origin")
	}
	tree, err := newVEBTree(universe, vopts)
	if err != nil {
		return nil, err
	}
	return tree, nil
}
