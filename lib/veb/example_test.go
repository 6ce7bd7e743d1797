package veb_test

import (
	"errors"
	"fmt"

	"github.com/benz9527/xveb/lib/veb"
)

func ExampleNewTypedVEB() {
	tree, err := veb.NewTypedVEB[int32](16)
	if err != nil {
		panic(err)
	}
	_ = tree.InsertAll(5, 2, 8, 15)

	succ, _ := tree.Successor(2)
	pred, _ := tree.Predecessor(15)
	fmt.Println(tree.Contains(3), succ, pred)

	_, _ = tree.Remove(5)
	succ, _ = tree.Successor(2)
	fmt.Println(succ)

	err = tree.Insert(16)
	fmt.Println(errors.Is(err, veb.ErrVEBOutOfUniverse))
	// Output:
	// false 5 8
	// 8
	// true
}

func ExampleNewVEB() {
	tree, err := veb.NewVEB(1 << 20)
	if err != nil {
		panic(err)
	}
	_ = tree.InsertAll(1<<19, 3, 77, 1<<20-1)
	tree.Foreach(func(idx int64, key uint64) bool {
		fmt.Println(idx, key)
		return true
	})
	// Output:
	// 0 3
	// 1 77
	// 2 524288
	// 3 1048575
}

func ExampleWithVEBFullRange() {
	tree, err := veb.NewTypedVEB[float64](veb.FullUniverse[float64](), veb.WithVEBFullRange())
	if err != nil {
		panic(err)
	}
	_ = tree.InsertAll(-2.5, 10.25, 0.5)
	_min, _ := tree.Min()
	succ, _ := tree.Successor(0)
	fmt.Println(_min, succ)
	// Output:
	// -2.5 0.5
}
