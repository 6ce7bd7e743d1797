package infra

// NumericKey is the set of element types a typed vEB tree can index.
// Each of them has an order-preserving mapping into the uint64 key space.
// Named (~) types are not allowed, the codec dispatches on the exact
// predeclared type.
type NumericKey interface {
	int32 | float32 | float64
}
