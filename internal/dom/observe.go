package dom

import "golang.org/x/net/html"

// MutationKind classifies a MutationRecord.
type MutationKind uint8

const (
	ChildList MutationKind = iota + 1
	Attributes
)

// MutationRecord describes one change to the tree.
type MutationRecord struct {
	Kind          MutationKind
	Target        *html.Node
	Added         []*html.Node
	Removed       []*html.Node
	AttributeName string
}

// ObserveOptions selects which changes reach an observer.
type ObserveOptions struct {
	ChildList  bool
	Attributes bool
	// Subtree extends observation from the target to all its descendants.
	Subtree bool
}

// Callback receives the records accumulated since the previous delivery.
type Callback func(records []MutationRecord)

// Unsubscribe stops an observation. Calling it more than once is a no-op.
type Unsubscribe func()

// SubtreeWatcher registers callbacks for changes below a node.
type SubtreeWatcher interface {
	Observe(target *html.Node, cb Callback, opts ObserveOptions) Unsubscribe
}

// maxFlushRounds bounds callback cascades in Flush.
const maxFlushRounds = 64

type observer struct {
	target  *html.Node
	cb      Callback
	opts    ObserveOptions
	pending []MutationRecord
	active  bool
}

func (o *observer) wants(rec MutationRecord) bool {
	switch rec.Kind {
	case ChildList:
		if !o.opts.ChildList {
			return false
		}
	case Attributes:
		if !o.opts.Attributes {
			return false
		}
	default:
		return false
	}
	if rec.Target == o.target {
		return true
	}
	return o.opts.Subtree && isAncestor(o.target, rec.Target)
}

// Observe registers cb for changes matching opts on target. The returned
// function permanently stops the observation and drops undelivered records.
func (d *Document) Observe(target *html.Node, cb Callback, opts ObserveOptions) Unsubscribe {
	if target == nil || cb == nil {
		return func() {}
	}
	o := &observer{target: target, cb: cb, opts: opts, active: true}
	d.observers = append(d.observers, o)
	return func() {
		if !o.active {
			return
		}
		o.active = false
		o.pending = nil
		for i, cur := range d.observers {
			if cur == o {
				d.observers = append(d.observers[:i], d.observers[i+1:]...)
				break
			}
		}
	}
}

// ObserverCount returns the number of active observers.
func (d *Document) ObserverCount() int { return len(d.observers) }

// Flush delivers queued records. Callbacks may mutate the document; records
// they produce are delivered in following rounds until none remain.
func (d *Document) Flush() {
	for round := 0; round < maxFlushRounds; round++ {
		delivered := false
		snapshot := append([]*observer(nil), d.observers...)
		for _, o := range snapshot {
			if !o.active || len(o.pending) == 0 {
				continue
			}
			recs := o.pending
			o.pending = nil
			delivered = true
			o.cb(recs)
		}
		if !delivered {
			return
		}
	}
}

func (d *Document) queue(rec MutationRecord) {
	for _, o := range d.observers {
		if o.active && o.wants(rec) {
			o.pending = append(o.pending, rec)
		}
	}
}
