package queue

import "context"

// TicketChange announces that a ledger transaction touched an event's ticket
// availability. The services publish after commit; the availability worker
// consumes.
type TicketChange struct {
	EventID int
}

type Delivery struct {
	Data TicketChange
	Ack  func()
	Nack func(requeue bool)
}

type TicketFeed interface {
	Publish(ctx context.Context, change TicketChange) error
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

type TicketFeedImpl struct {
	// A buffered Go channel stands in for an external MQ.
	ch chan TicketChange
}

func NewTicketFeed(bufferSize int) TicketFeed {
	return &TicketFeedImpl{
		ch: make(chan TicketChange, bufferSize),
	}
}

func (q *TicketFeedImpl) Publish(ctx context.Context, change TicketChange) error {
	select {
	case q.ch <- change:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *TicketFeedImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-q.ch:
				if !ok {
					return
				}

				delivery := Delivery{
					Data: change,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if !requeue {
							return
						}
						// A full buffer drops the requeue rather than
						// blocking the consumer that called Nack.
						select {
						case q.ch <- change:
						default:
						}
					},
				}
				select {
				case out <- delivery:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
