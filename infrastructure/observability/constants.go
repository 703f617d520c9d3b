package observability

// Metric name prefixes
const (
	MetricPrefix = "lotteryledger"
)

// Metric names
const (
	// Lottery metrics
	LotteryTicketsBoughtTotal      = MetricPrefix + ".lottery.tickets_bought_total"
	LotteryRoundsEndedTotal        = MetricPrefix + ".lottery.rounds_ended_total"
	LotteryPayoutAmountTotal       = MetricPrefix + ".lottery.payout_amount_total"
	LotteryOperationsRejectedTotal = MetricPrefix + ".lottery.operations_rejected_total"

	// NATS metrics
	NATSMessagesReceivedTotal  = MetricPrefix + ".nats.messages_received_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelKind       = "kind"
	LabelEventType  = "event_type"
	LabelRepository = "repository"
	LabelMethod     = "method"
)

// Rejection kinds reported with LotteryOperationsRejectedTotal
const (
	RejectionNotOwner          = "not_owner"
	RejectionInvalidTransition = "invalid_transition"
	RejectionInvalidPayment    = "invalid_payment"
	RejectionInvalidConfig     = "invalid_config"
	RejectionInsufficientFunds = "insufficient_balance"
	RejectionOther             = "other"
)
