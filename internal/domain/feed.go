package domain

import "time"

// FeedEventKind clasifica los mensajes que llegan por el feed del exchange.
type FeedEventKind int

const (
	FeedOther FeedEventKind = iota
	FeedSnapshot
	FeedDelta
	FeedSubscribed
	FeedError
)

func (k FeedEventKind) String() string {
	switch k {
	case FeedSnapshot:
		return "snapshot"
	case FeedDelta:
		return "delta"
	case FeedSubscribed:
		return "subscribed"
	case FeedError:
		return "error"
	default:
		return "other"
	}
}

// FeedEvent es un mensaje del feed ya decodificado, independiente del wire.
type FeedEvent struct {
	Kind       FeedEventKind
	Type       string // tipo raw del wire
	Ticker     string
	Seq        int64
	ReceivedAt time.Time

	// Snapshot
	Yes []Level
	No  []Level

	// Delta
	Side  Side
	Price int
	Delta int

	// Error / subscribed
	Message string
}
