package veb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	VEBStatsName = "xveb/veb"
)

type vebStats struct {
	attrs              metric.MeasurementOption
	insertCount        metric.Int64Counter
	removeCount        metric.Int64Counter
	outOfUniverseCount metric.Int64Counter
	elementCount       metric.Int64UpDownCounter
	clusterCount       metric.Int64UpDownCounter
}

func (stats *vebStats) RecordInsert(added bool) {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1, stats.attrs)
	if added {
		stats.elementCount.Add(context.Background(), 1, stats.attrs)
	}
}

func (stats *vebStats) RecordRemove(removed bool) {
	if stats == nil {
		return
	}
	stats.removeCount.Add(context.Background(), 1, stats.attrs)
	if removed {
		stats.elementCount.Add(context.Background(), -1, stats.attrs)
	}
}

func (stats *vebStats) RecordRelease(elements int64) {
	if stats == nil || elements == 0 {
		return
	}
	stats.elementCount.Add(context.Background(), -elements, stats.attrs)
}

func (stats *vebStats) IncreaseOutOfUniverseCount() {
	if stats == nil {
		return
	}
	stats.outOfUniverseCount.Add(context.Background(), 1, stats.attrs)
}

func (stats *vebStats) RecordClusterCount(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.clusterCount.Add(context.Background(), delta, stats.attrs)
}

func newVEBStats(name string, universe uint64) *vebStats {
	meterName := fmt.Sprintf("%s/%s", VEBStatsName, lo.Ternary(len(name) > 0, name, "default"))
	meter := otel.Meter(meterName)
	return &vebStats{
		attrs: metric.WithAttributeSet(attribute.NewSet(
			attribute.String("veb.universe", strconv.FormatUint(universe, 10)),
		)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"veb.insert.count",
			metric.WithDescription("The number of insert calls accepted by the vEB tree."),
		)),
		removeCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"veb.remove.count",
			metric.WithDescription("The number of remove calls accepted by the vEB tree."),
		)),
		outOfUniverseCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"veb.out_of_universe.count",
			metric.WithDescription("The number of values rejected because their key is outside the universe."),
		)),
		elementCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"veb.element.count",
			metric.WithDescription("The number of elements in the vEB tree."),
		)),
		clusterCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"veb.cluster.count",
			metric.WithDescription("The number of allocated cluster nodes in the vEB tree."),
		)),
	}
}
