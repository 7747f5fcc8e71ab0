package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xordered/rbtree"
)

type rbTreeStats struct {
	nodeCount      metric.Int64UpDownCounter
	insertCount    metric.Int64Counter
	eraseCount     metric.Int64Counter
	rotateCount    metric.Int64Counter
	rebalanceSteps metric.Int64Counter
}

func (stats *rbTreeStats) RecordNodeCount(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.nodeCount.Add(context.Background(), delta)
}

func (stats *rbTreeStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1)
}

func (stats *rbTreeStats) IncreaseEraseCount() {
	if stats == nil {
		return
	}
	stats.eraseCount.Add(context.Background(), 1)
}

func (stats *rbTreeStats) IncreaseRotateCount(dir RBDirection) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("xrbtree.rotate.direction", dir.String()),
	)
	stats.rotateCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

func (stats *rbTreeStats) RecordRebalanceStep(c fmt.Stringer) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("xrbtree.rebalance.case", c.String()),
	)
	stats.rebalanceSteps.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

func newRBTreeStats(name string) *rbTreeStats {
	meterName := RBTreeStatsName
	if name != "" {
		meterName = fmt.Sprintf("%s/%s", RBTreeStatsName, name)
	}
	return &rbTreeStats{
		nodeCount: lo.Must[metric.Int64UpDownCounter](otel.Meter(meterName).
			Int64UpDownCounter(
				"xrbtree.node.count",
				metric.WithDescription("The number of elements in the rbtree."),
			),
		),
		insertCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"xrbtree.insert.count",
				metric.WithDescription("The number of nodes linked into the rbtree."),
			),
		),
		eraseCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"xrbtree.erase.count",
				metric.WithDescription("The number of nodes unlinked from the rbtree."),
			),
		),
		rotateCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"xrbtree.rotate.count",
				metric.WithDescription("The number of rotations while rebalancing."),
			),
		),
		rebalanceSteps: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"xrbtree.rebalance.steps",
				metric.WithDescription("The number of rebalance steps by case."),
			),
		),
	}
}
