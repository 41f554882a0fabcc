package model

import "time"

// EventType is the category of an event. An event whose type has been set to
// EventTypeCompleted is over; completed events are the only ones that accept
// reviews. The comparison is case-sensitive everywhere.
type EventType string

const (
	EventTypeExhibition EventType = "Exhibition"
	EventTypeTheater    EventType = "Theater"
	EventTypeFestival   EventType = "Festival"
	EventTypePerforming EventType = "Performing"
	EventTypeCompleted  EventType = "Completed"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeExhibition, EventTypeTheater, EventTypeFestival, EventTypePerforming, EventTypeCompleted:
		return true
	}
	return false
}

type Event struct {
	ID              int       `json:"event_id" db:"event_id"`
	Name            string    `json:"event_name" db:"event_name"`
	Location        string    `json:"location" db:"location"`
	Image           string    `json:"image" db:"image"`
	Description     string    `json:"description" db:"description"`
	EventDate       time.Time `json:"event_date" db:"event_date"`
	EventType       EventType `json:"event_type" db:"event_type"`
	TicketAvailable int       `json:"ticket_available" db:"ticket_available"`
	Price           float64   `json:"price" db:"price"`
	// DiscountedPrice holds the discount applied to the most recent booking
	// of this event, not a per-booking value. Booking.Amount is the
	// authoritative charged price; this column only mirrors the original
	// system's behaviour.
	DiscountedPrice *float64  `json:"discounted_price,omitempty" db:"discounted_price"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type CreateEventParams struct {
	Name            string    `json:"event_name" binding:"required"`
	Location        string    `json:"location" binding:"required"`
	Image           string    `json:"image"`
	Description     string    `json:"description"`
	EventDate       time.Time `json:"event_date" binding:"required"`
	EventType       EventType `json:"event_type" binding:"required"`
	TicketAvailable int       `json:"ticket_available" binding:"min=0"`
	Price           float64   `json:"price" binding:"required,gt=0"`
}

type UpdateEventParams struct {
	Name            *string    `json:"event_name"`
	Location        *string    `json:"location"`
	Image           *string    `json:"image"`
	Description     *string    `json:"description"`
	EventDate       *time.Time `json:"event_date"`
	EventType       *EventType `json:"event_type"`
	TicketAvailable *int       `json:"ticket_available"`
	Price           *float64   `json:"price"`
}

// SearchEventsParams filters the paginated catalog search. Term matches the
// event name case-insensitively; Type, when set, must match exactly.
type SearchEventsParams struct {
	Term   string
	Type   *EventType
	Offset int
	Limit  int
}
