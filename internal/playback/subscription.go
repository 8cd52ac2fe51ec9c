package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
//
// Sends never block: a full channel drops the event, except PositionChanged
// which keeps only the latest position. Done is closed when the manager
// stops or the subscriber unsubscribes; events sent before that stay
// buffered and may be drained after Done fires.
type Subscription struct {
	StateChanged         <-chan StateChange
	ItemChanged          <-chan ItemChange
	PlaybackItemChanged  <-chan PlaybackItemChange
	PositionChanged      <-chan PositionChange
	RequestStatusChanged <-chan RequestStatusChange
	RateChanged          <-chan RateChange
	ModeChanged          <-chan ModeChange
	SegmentChanged       <-chan SegmentChange
	Actions              <-chan ActionEvent
	Error                <-chan ErrorEvent
	Done                 <-chan struct{}

	// Internal write channels
	stateCh    chan StateChange
	itemCh     chan ItemChange
	pbItemCh   chan PlaybackItemChange
	positionCh chan PositionChange
	statusCh   chan RequestStatusChange
	rateCh     chan RateChange
	modeCh     chan ModeChange
	segmentCh  chan SegmentChange
	actionCh   chan ActionEvent
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
	closed     bool
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:    make(chan StateChange, eventBufferSize),
		itemCh:     make(chan ItemChange, eventBufferSize),
		pbItemCh:   make(chan PlaybackItemChange, eventBufferSize),
		positionCh: make(chan PositionChange, 1),
		statusCh:   make(chan RequestStatusChange, eventBufferSize),
		rateCh:     make(chan RateChange, eventBufferSize),
		modeCh:     make(chan ModeChange, eventBufferSize),
		segmentCh:  make(chan SegmentChange, eventBufferSize),
		actionCh:   make(chan ActionEvent, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.ItemChanged = s.itemCh
	s.PlaybackItemChanged = s.pbItemCh
	s.PositionChanged = s.positionCh
	s.RequestStatusChanged = s.statusCh
	s.RateChanged = s.rateCh
	s.ModeChanged = s.modeCh
	s.SegmentChanged = s.segmentCh
	s.Actions = s.actionCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
// Callers hold the manager's subscription lock.
func (s *Subscription) close() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.doneCh)
}

func send[T any](ch chan T, e T) {
	select {
	case ch <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendState(e StateChange)                 { send(s.stateCh, e) }
func (s *Subscription) sendItem(e ItemChange)                   { send(s.itemCh, e) }
func (s *Subscription) sendPlaybackItem(e PlaybackItemChange)   { send(s.pbItemCh, e) }
func (s *Subscription) sendRequestStatus(e RequestStatusChange) { send(s.statusCh, e) }
func (s *Subscription) sendRate(e RateChange)                   { send(s.rateCh, e) }
func (s *Subscription) sendMode(e ModeChange)                   { send(s.modeCh, e) }
func (s *Subscription) sendSegment(e SegmentChange)             { send(s.segmentCh, e) }
func (s *Subscription) sendAction(e ActionEvent)                { send(s.actionCh, e) }
func (s *Subscription) sendError(e ErrorEvent)                  { send(s.errorCh, e) }

// sendPosition replaces any unread position with the new one.
func (s *Subscription) sendPosition(e PositionChange) {
	for {
		select {
		case s.positionCh <- e:
			return
		default:
		}
		select {
		case <-s.positionCh:
		default:
		}
	}
}
