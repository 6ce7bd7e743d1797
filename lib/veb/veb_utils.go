package veb

import (
	"fmt"

	"github.com/benz9527/xveb/lib/infra"
)

// vEB rule validation utilities.

type vebRooted interface {
	rootNode() *vebNode
	Len() int64
}

// InvariantsValidate walks the whole structure of a VEB or a TypedVEB
// and reports the first broken node property, see veb_node.go.
// It visits every allocated node, so it is meant for tests.
func InvariantsValidate(tree any) error {
	rooted, ok := tree.(vebRooted)
	if !ok {
		return infra.WrapErrorStackWithMessage(errVEBInvariantViolation, fmt.Sprintf("[veb] unknown tree %T", tree))
	}
	root := rooted.rootNode()
	if root == nil {
		if rooted.Len() != 0 {
			return violation("released tree reports %d elements", rooted.Len())
		}
		return nil
	}
	count, err := validateNode(root, "root")
	if err != nil {
		return err
	}
	if count != rooted.Len() {
		return violation("tree holds %d elements, reports %d", count, rooted.Len())
	}
	return nil
}

func violation(format string, args ...any) error {
	return infra.WrapErrorStackWithMessage(errVEBInvariantViolation, fmt.Sprintf(format, args...))
}

// validateNode returns the number of elements under node.
func validateNode(node *vebNode, at string) (int64, error) {
	if node.isEmpty() {
		if node.max != vebEmptyMax {
			return 0, violation("%s: empty node with max %d", at, node.max)
		}
		if !node.isBase() && !node.summary.isEmpty() {
			return 0, violation("%s: empty node with non-empty summary", at)
		}
		if slots := node.presentSlots(); len(slots) > 0 {
			return 0, violation("%s: empty node with %d clusters", at, len(slots))
		}
		return 0, nil
	}
	if node.min > node.max || node.max >= node.universe {
		return 0, violation("%s: min %d, max %d in universe %d", at, node.min, node.max, node.universe)
	}
	if node.isBase() {
		if node.dense != nil || node.sparse != nil || node.summary != nil {
			return 0, violation("%s: base node with children", at)
		}
		if node.min == node.max {
			return 1, nil
		}
		return 2, nil
	}
	if node.summary == nil || node.summary.universe != node.clusterSize {
		return 0, violation("%s: summary does not match cluster size %d", at, node.clusterSize)
	}

	slots := node.presentSlots()
	if node.min == node.max {
		if len(slots) > 0 {
			return 0, violation("%s: single element node with %d clusters", at, len(slots))
		}
		return 1, nil
	}
	if len(slots) == 0 {
		return 0, violation("%s: max %d is not in any cluster", at, node.max)
	}

	summaryCount, err := validateNode(node.summary, at+".summary")
	if err != nil {
		return 0, err
	}
	if summaryCount != int64(len(slots)) {
		return 0, violation("%s: summary holds %d clusters, %d present", at, summaryCount, len(slots))
	}

	count := int64(1)
	for _, h := range slots {
		c := node.cluster(h)
		if !node.summary.contains(h) {
			return 0, violation("%s: cluster %d missing from summary", at, h)
		}
		if c.universe != node.clusterSize {
			return 0, violation("%s: cluster %d universe %d", at, h, c.universe)
		}
		if c.isEmpty() {
			return 0, violation("%s: cluster %d left allocated but empty", at, h)
		}
		if node.index(h, c.min) <= node.min {
			return 0, violation("%s: cluster %d holds %d not above the cached min", at, h, node.index(h, c.min))
		}
		n, err := validateNode(c, fmt.Sprintf("%s.cluster[%d]", at, h))
		if err != nil {
			return 0, err
		}
		count += n
	}

	last := node.summary.max
	if node.index(last, node.cluster(last).max) != node.max {
		return 0, violation("%s: max %d does not match cluster %d", at, node.max, last)
	}
	return count, nil
}

func (node *vebNode) presentSlots() []uint64 {
	slots := make([]uint64, 0, 8)
	for h, c := range node.dense {
		if c != nil {
			slots = append(slots, uint64(h))
		}
	}
	for h := range node.sparse {
		slots = append(slots, h)
	}
	return slots
}
