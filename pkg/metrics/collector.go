// Package metrics exposes Prometheus collectors for the bot.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lewis-cheung/grocery-bot/internal/state"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	repromptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reprompts_total",
			Help: "Number of times invalid input forced a prompt to be repeated",
		},
		[]string{"state"},
	)
	purchasesRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purchases_recorded_total",
			Help: "Total number of purchase records appended",
		},
	)
	activeConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_conversations",
			Help: "Current number of users with a live conversation state",
		},
	)
	usersByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "users_by_state",
			Help: "Number of users per conversation state",
		},
		[]string{"state"},
	)
)

var trackedStates = []state.State{
	state.StateIdle,
	state.StateItemSelect,
	state.StateNewItemName,
	state.StateNewItemUnit,
	state.StatePurchaseQty,
	state.StatePurchasePrice,
	state.StatePurchaseConfirm,
	state.StatePendingQty,
	state.StateDeleteConfirm,
	state.StateError,
}

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordStateTransition tracks conversation transitions.
func RecordStateTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// RecordReprompt counts an invalid-input reprompt in the given state.
func RecordReprompt(stateName string) {
	if stateName == "" {
		stateName = "unknown"
	}

	repromptsTotal.WithLabelValues(stateName).Inc()
}

// RecordPurchase counts an appended purchase record.
func RecordPurchase() {
	purchasesRecordedTotal.Inc()
}

// StateCollector periodically gathers conversation state counts and emits
// gauge metrics.
type StateCollector struct {
	fsm state.StateMachine
}

// NewStateCollector builds a metrics collector bound to the provided FSM.
func NewStateCollector(fsm state.StateMachine) *StateCollector {
	return &StateCollector{fsm: fsm}
}

// Run polls the FSM every 10 seconds, updating conversation gauges until ctx
// is cancelled.
func (c *StateCollector) Run(ctx context.Context) {
	if c == nil || c.fsm == nil {
		return
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (c *StateCollector) collect(ctx context.Context) error {
	states, err := c.fsm.GetAllStates(ctx)
	if err != nil {
		return err
	}

	activeConversations.Set(float64(len(states)))

	stateCounts := make(map[string]int, len(states))
	for _, st := range states {
		label := "unknown"
		if st != nil && st.CurrentState != "" {
			label = string(st.CurrentState)
		}
		stateCounts[label]++
	}

	usersByState.Reset()

	for _, tracked := range trackedStates {
		label := string(tracked)
		usersByState.WithLabelValues(label).Set(float64(stateCounts[label]))
		delete(stateCounts, label)
	}

	for label, count := range stateCounts {
		usersByState.WithLabelValues(label).Set(float64(count))
	}

	return nil
}
