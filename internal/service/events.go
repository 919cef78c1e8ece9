package service

// Event names broadcast to live clients
const (
	EventRequestCreated    = "request_created"
	EventRequestUpdated    = "request_updated"
	EventRequestDeleted    = "request_deleted"
	EventRequestSubmitted  = "request_submitted"
	EventRequestApproved   = "request_approved"
	EventRequestRejected   = "request_rejected"
	EventRequestManaged    = "request_managed"
	EventRequestDispatched = "request_dispatched"
	EventReceiptCreated    = "receipt_created"
	EventReceiptUpdated    = "receipt_updated"
	EventReceiptDeleted    = "receipt_deleted"
	EventStockUpdate       = "stock_update"
)

// EventPublisher fans out committed changes. Implementations must not block.
type EventPublisher interface {
	Publish(event string, payload map[string]interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, map[string]interface{}) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
