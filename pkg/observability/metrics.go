package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Reconciliation outcomes reported to CloudWatch
const (
	OutcomeLinked       = "linked"
	OutcomeAlreadyOwned = "already_owned"
	OutcomeNoDraft      = "no_draft"
	OutcomeStaleDraft   = "stale_draft"
	OutcomeConflict     = "conflict"
)

// Metrics publishes operational counters to CloudWatch. Counts are buffered
// in memory and flushed in the background so the hot path never waits on
// the metrics transport. All methods are safe on a nil receiver, which is
// what tests pass.
type Metrics struct {
	client    *cloudwatch.Client
	namespace string
	logger    *zap.Logger

	mu     sync.Mutex
	counts map[string]float64
	done   chan struct{}
}

// NewMetrics creates a metrics publisher and starts its flush loop
func NewMetrics(client *cloudwatch.Client, namespace string, logger *zap.Logger) *Metrics {
	m := &Metrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
		counts:    make(map[string]float64),
		done:      make(chan struct{}),
	}

	go m.flushLoop()

	return m
}

// IncReconcileOutcome counts one reconciliation attempt by outcome
func (m *Metrics) IncReconcileOutcome(outcome string) {
	m.inc("ReconcileOutcome_" + outcome)
}

// IncSaveFailure counts one failed edit-session save
func (m *Metrics) IncSaveFailure() {
	m.inc("EditSessionSaveFailure")
}

// IncIntakeSubmission counts one anonymous questionnaire submission
func (m *Metrics) IncIntakeSubmission() {
	m.inc("IntakeSubmission")
}

// IncAttachmentRejected counts one upload rejected before transport
func (m *Metrics) IncAttachmentRejected() {
	m.inc("AttachmentRejected")
}

// Pending reports the buffered value for a counter before the next flush.
// Diagnostic accessor; the flush loop resets it.
func (m *Metrics) Pending(name string) float64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

// Close stops the flush loop after a final flush
func (m *Metrics) Close() {
	if m == nil {
		return
	}
	close(m.done)
	m.flush()
}

func (m *Metrics) inc(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.counts[name]++
	m.mu.Unlock()
}

func (m *Metrics) flushLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.flush()
		case <-m.done:
			return
		}
	}
}

func (m *Metrics) flush() {
	m.mu.Lock()
	pending := m.counts
	m.counts = make(map[string]float64)
	m.mu.Unlock()

	if len(pending) == 0 || m.client == nil {
		return
	}

	now := time.Now()
	data := make([]types.MetricDatum, 0, len(pending))
	for name, value := range pending {
		data = append(data, types.MetricDatum{
			MetricName: aws.String(name),
			Value:      aws.Float64(value),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(now),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Warn("Failed to flush metrics", zap.Error(err), zap.Int("count", len(data)))
	}
}
