package evaluation

import (
	"context"
	"sort"
	"time"

	"flagpost/internal/broker"
	"flagpost/internal/constants"
	"flagpost/internal/logger"
	"flagpost/internal/targeting"
	"flagpost/pkg/logging"
	"flagpost/pkg/metrics"
	"flagpost/pkg/models"
)

// DecisionEvents publishes one feature_check envelope per evaluation. Events
// are queued and sent by Run so a slow broker never holds up a request.
type DecisionEvents struct {
	producer broker.Producer
	topic    string
	logger   logger.Logger
	now      func() time.Time
	queue    chan models.MessageEnvelope
}

func NewDecisionEvents(producer broker.Producer, topic string, log logger.Logger) *DecisionEvents {
	return newDecisionEvents(producer, topic, log, constants.DecisionEventQueueSize)
}

func newDecisionEvents(producer broker.Producer, topic string, log logger.Logger, size int) *DecisionEvents {
	return &DecisionEvents{
		producer: producer,
		topic:    topic,
		logger:   log,
		now:      time.Now,
		queue:    make(chan models.MessageEnvelope, size),
	}
}

// PublishFeatureCheck enqueues the event without blocking. When the queue is
// full the event is dropped and counted.
func (d *DecisionEvents) PublishFeatureCheck(ctx context.Context, user *targeting.UserContext, names []string, decisions map[string]targeting.Decision, degraded bool) {
	evt := models.FeatureCheckEvent{
		UserID:      targeting.AnonymousUserID,
		Environment: targeting.DefaultEnvironment,
		Degraded:    degraded,
		EvaluatedAt: d.now().UTC(),
		Decisions:   make([]models.FeatureDecision, 0, len(decisions)),
	}
	if user != nil {
		if user.UserID != "" {
			evt.UserID = user.UserID
		}
		if user.Environment != "" {
			evt.Environment = user.Environment
		}
		evt.Attributes = attributes(*user)
	}

	sorted := make([]string, 0, len(decisions))
	for name := range decisions {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		dec := decisions[name]
		evt.Decisions = append(evt.Decisions, models.FeatureDecision{
			Name:    name,
			Enabled: dec.Enabled,
			Gate:    string(dec.Gate),
		})
	}

	env, err := models.NewMessageEnvelopeBuilder(models.EventTypeFeatureCheck).
		WithSource(constants.ServiceEvaluation).
		WithTraceID(logging.GetTraceID(ctx)).
		WithPayload(evt).
		Build()
	if err != nil {
		metrics.IncDecisionEvent("error")
		d.logger.ErrorwCtx(ctx, "Failed to build decision event", "error", err)
		return
	}

	select {
	case d.queue <- env:
	default:
		metrics.IncDecisionEvent("dropped")
		d.logger.WarnwCtx(ctx, "Decision event queue full, dropping event",
			"topic", d.topic,
			"capacity", cap(d.queue),
		)
	}
}

// Run sends queued events until ctx is done, then flushes whatever is still
// buffered for at most ShutdownTimeout and returns.
func (d *DecisionEvents) Run(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for {
		select {
		case env := <-d.queue:
			d.send(base, env)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(base, constants.ShutdownTimeout)
			d.flush(flushCtx)
			cancel()
			return
		}
	}
}

func (d *DecisionEvents) flush(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			if left := len(d.queue); left > 0 {
				metrics.AddDecisionEvents("dropped", left)
				d.logger.WarnwCtx(ctx, "Decision events left unsent at shutdown", "count", left)
			}
			return
		}
		select {
		case env := <-d.queue:
			d.send(ctx, env)
		default:
			return
		}
	}
}

func (d *DecisionEvents) send(ctx context.Context, env models.MessageEnvelope) {
	ctx = logging.WithTraceID(ctx, env.Metadata.TraceID)
	pubCtx, cancel := context.WithTimeout(ctx, constants.EventPublishTimeout)
	defer cancel()

	if err := d.producer.Publish(pubCtx, d.topic, env); err != nil {
		metrics.IncDecisionEvent("error")
		d.logger.WarnwCtx(ctx, "Failed to publish decision event",
			"topic", d.topic,
			"event_id", env.ID,
			"error", err,
		)
		return
	}
	metrics.IncDecisionEvent("published")
}

func attributes(u targeting.UserContext) map[string]string {
	attrs := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			attrs[k] = v
		}
	}
	set("userType", u.UserType)
	set("location", u.Location)
	set("accountAge", u.AccountAge)
	set("activityLevel", u.ActivityLevel)
	set("planTier", u.PlanTier)
	set("currentPage", u.CurrentPage)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
