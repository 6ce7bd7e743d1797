package veb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInvariantsValidate_Violations(t *testing.T) {
	// Universe 16 splits into 4 clusters of 4. The min 2 stays cached at
	// the root, 5, 8 and 15 live in the clusters 1, 2 and 3.
	newTree := func(t *testing.T) *vebTree {
		tree, err := NewVEB(16)
		require.NoError(t, err)
		require.NoError(t, tree.InsertAll(2, 5, 8, 15))
		require.NoError(t, InvariantsValidate(tree))
		return tree.(*vebTree)
	}

	testcases := []struct {
		name    string
		corrupt func(tree *vebTree)
		errMsg  string
	}{
		{
			name: "max not in the last cluster",
			corrupt: func(tree *vebTree) {
				tree.root.max = 14
			},
			errMsg: "root: max 14 does not match cluster 3",
		},
		{
			name: "summary holds a missing cluster",
			corrupt: func(tree *vebTree) {
				tree.root.dense[2] = nil
			},
			errMsg: "root: summary holds 3 clusters, 2 present",
		},
		{
			name: "element count mismatch",
			corrupt: func(tree *vebTree) {
				tree.count = 9
			},
			errMsg: "tree holds 4 elements, reports 9",
		},
		{
			name: "empty cluster left allocated",
			corrupt: func(tree *vebTree) {
				tree.root.dense[0] = tree.builder.newNode(tree.root.clusterSize)
				tree.root.summary.insert(tree.builder, 0)
			},
			errMsg: "root: cluster 0 left allocated but empty",
		},
		{
			name: "cached min routed into a cluster",
			corrupt: func(tree *vebTree) {
				c := tree.builder.newNode(tree.root.clusterSize)
				c.insert(tree.builder, tree.root.low(tree.root.min))
				tree.root.dense[0] = c
				tree.root.summary.insert(tree.builder, 0)
			},
			errMsg: "root: cluster 0 holds 2 not above the cached min",
		},
		{
			name: "min above max",
			corrupt: func(tree *vebTree) {
				tree.root.min = 15
				tree.root.max = 5
			},
			errMsg: "root: min 15, max 5 in universe 16",
		},
		{
			name: "cluster universe mismatch",
			corrupt: func(tree *vebTree) {
				tree.root.dense[1].universe = 8
			},
			errMsg: "root: cluster 1 universe 8",
		},
		{
			name: "cluster missing from summary",
			corrupt: func(tree *vebTree) {
				tree.root.summary.remove(tree.builder, 1)
				tree.root.summary.insert(tree.builder, 0)
			},
			errMsg: "root: cluster 1 missing from summary",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := newTree(tt)
			tc.corrupt(tree)
			err := InvariantsValidate(tree)
			require.ErrorIs(tt, err, errVEBInvariantViolation)
			require.Contains(tt, err.Error(), tc.errMsg)
		})
	}
}

func TestInvariantsValidate_EmptyAndBaseNodes(t *testing.T) {
	tree, err := NewVEB(16)
	require.NoError(t, err)
	impl := tree.(*vebTree)
	require.NoError(t, InvariantsValidate(tree))

	impl.root.max = 3
	err = InvariantsValidate(tree)
	require.ErrorIs(t, err, errVEBInvariantViolation)
	require.Contains(t, err.Error(), "root: empty node with max 3")
	impl.root.max = vebEmptyMax

	// A released tree has no root to walk, the count still has to agree.
	tree.Release()
	impl.count = 3
	err = InvariantsValidate(tree)
	require.ErrorIs(t, err, errVEBInvariantViolation)
	require.Contains(t, err.Error(), "released tree reports 3 elements")

	base, err := NewVEB(2)
	require.NoError(t, err)
	require.NoError(t, base.InsertAll(0, 1))
	baseImpl := base.(*vebTree)
	baseImpl.root.summary = baseImpl.builder.newNode(2)
	err = InvariantsValidate(base)
	require.ErrorIs(t, err, errVEBInvariantViolation)
	require.Contains(t, err.Error(), "root: base node with children")
}

func TestInvariantsValidate_TypedTree(t *testing.T) {
	tree, err := NewTypedVEB[int32](64, WithVEBOrigin[int32](-32))
	require.NoError(t, err)
	require.NoError(t, tree.InsertAll(-32, -1, 0, 31))
	require.NoError(t, InvariantsValidate(tree))

	tree.(*typedVEB[int32]).tree.count--
	err = InvariantsValidate(tree)
	require.ErrorIs(t, err, errVEBInvariantViolation)
	require.Contains(t, err.Error(), "tree holds 4 elements, reports 3")
}

func TestInvariantsValidate_UnknownTree(t *testing.T) {
	err := InvariantsValidate(42)
	require.ErrorIs(t, err, errVEBInvariantViolation)
	require.Contains(t, err.Error(), "[veb] unknown tree int")
}
