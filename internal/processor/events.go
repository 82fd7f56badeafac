package processor

import "fmt"

// MapKind identifies one of the generated output maps.
type MapKind int

const (
	MapNormal MapKind = iota
	MapParallax
	MapSpecular
	MapOcclusion
)

// Maps lists every output map in generation order.
var Maps = []MapKind{MapNormal, MapParallax, MapSpecular, MapOcclusion}

func (k MapKind) String() string {
	switch k {
	case MapNormal:
		return "normal"
	case MapParallax:
		return "parallax"
	case MapSpecular:
		return "specular"
	case MapOcclusion:
		return "occlusion"
	default:
		return fmt.Sprintf("map(%d)", int(k))
	}
}

// EventKind distinguishes processor notifications.
type EventKind int

const (
	// EventProcessed fires after any output map was recomputed.
	EventProcessed EventKind = iota
	// EventIdle fires once normal map generation has left the Computing state.
	EventIdle
)

func (k EventKind) String() string {
	if k == EventIdle {
		return "idle"
	}
	return "processed"
}

// Event is delivered synchronously to every subscriber.
type Event struct {
	Kind EventKind
	Map  MapKind
}

// State is the normal map generation state.
type State int

const (
	StateIdle State = iota
	StateComputing
)

func (s State) String() string {
	if s == StateComputing {
		return "computing"
	}
	return "idle"
}

type subscriber struct {
	fn func(Event)
	id int
}

// Subscribe registers fn for all future events and returns a function that
// removes it again. Subscribers run in registration order on the calling goroutine.
func (p *Processor) Subscribe(fn func(Event)) (unsubscribe func()) {
	p.nextSubID++
	id := p.nextSubID
	p.subscribers = append(p.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range p.subscribers {
			if s.id == id {
				p.subscribers = append(p.subscribers[:i:i], p.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (p *Processor) emit(ev Event) {
	// Subscribers may unsubscribe while being notified.
	subs := append([]subscriber(nil), p.subscribers...)
	for _, s := range subs {
		s.fn(ev)
	}
}
