package events

import "time"

const MatchRequestedEvent = "credit_request.match.requested"

// MatchRequested - задание на подбор предложений для анкеты. OfferID == nil
// означает подбор по всем активным предложениям с подходящим баллом.
type MatchRequested struct {
	JobID       string
	BorrowerID  uint64
	OfferID     *uint64
	RequestedAt time.Time
}

// Name - реализуем интерфейс eventbus.Event
func (e MatchRequested) Name() string {
	return MatchRequestedEvent
}
