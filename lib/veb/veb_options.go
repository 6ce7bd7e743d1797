package veb

import (
	"github.com/benz9527/xveb/lib/infra"
	"github.com/benz9527/xveb/lib/xlog"
)

const (
	defaultDenseSlotsLimit uint64 = 1 << 12
)

type vebOptions struct {
	logger          xlog.XLogger
	statsName       string
	enableStats     bool
	denseSlotsLimit uint64
	originKey       uint64
	originKind      KeyKind
	hasOrigin       bool
	fullRange       bool
}

func (opts *vebOptions) apply(tree *vebTree) {
	if opts.logger == nil {
		opts.logger = xlog.NewNopXLogger()
	}
	tree.logger = opts.logger.Named("veb")
	if opts.denseSlotsLimit == 0 {
		opts.denseSlotsLimit = defaultDenseSlotsLimit
	}
	tree.builder = &vebNodeBuilder{denseSlotsLimit: opts.denseSlotsLimit}
	if opts.enableStats {
		tree.stats = newVEBStats(opts.statsName, tree.universe)
	}
}

type VEBOption func(opts *vebOptions) error

func WithVEBLogger(logger xlog.XLogger) VEBOption {
	return func(opts *vebOptions) error {
		if logger == nil {
			return infra.WrapErrorStackWithMessage(ErrVEBInvalidOption, "nil logger")
		}
		opts.logger = logger
		return nil
	}
}

// WithVEBStats records the tree operations by the global otel meter
// provider, under the meter VEBStatsName/name.
func WithVEBStats(name string) VEBOption {
	return func(opts *vebOptions) error {
		opts.enableStats = true
		opts.statsName = name
		return nil
	}
}

// WithVEBDenseSlotsLimit sets the largest cluster slot count still kept
// in a slice. Nodes with more slots keep them in a map, populated on demand.
func WithVEBDenseSlotsLimit(limit uint64) VEBOption {
	return func(opts *vebOptions) error {
		if limit == 0 {
			return infra.WrapErrorStackWithMessage(ErrVEBInvalidOption, "zero dense slots limit")
		}
		opts.denseSlotsLimit = limit
		return nil
	}
}

// WithVEBOrigin anchors the key window of a TypedVEB at v.
// It is rejected by NewVEB and by a TypedVEB of another element type.
func WithVEBOrigin[T infra.NumericKey](v T) VEBOption {
	return func(opts *vebOptions) error {
		opts.hasOrigin = true
		opts.fullRange = false
		opts.originKey = EncodeKey[T](v)
		opts.originKind = KindOf[T]()
		return nil
	}
}

// WithVEBFullRange anchors the key window of a TypedVEB at the lowest
// key of its element type. See FullUniverse.
func WithVEBFullRange() VEBOption {
	return func(opts *vebOptions) error {
		opts.hasOrigin = false
		opts.fullRange = true
		return nil
	}
}
