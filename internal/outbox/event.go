package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event-per-topic layout).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types emitted by this service.
const (
	EventBookingCreated   = "scheduling.booking.created.v1"
	EventBookingCancelled = "scheduling.booking.cancelled.v1"
)
