package plugin

import (
	"sync"
	"sync/atomic"

	"github.com/justyntemme/augo/pkg/au"
)

// Listener table limits.
const (
	MaxPropertyListeners = 64
	MaxRenderNotifiers   = 32
)

type propertyListener struct {
	id       au.PropertyID
	listener au.PropertyListener
	refCon   any
}

type renderNotifier struct {
	observer au.RenderObserver
	refCon   any
}

// snapshotList is a bounded list whose readers never lock. Writers copy the
// current entries under mu and publish the new slice; a published slice is
// never modified again.
type snapshotList[T any] struct {
	mu    sync.Mutex
	limit int
	cur   atomic.Pointer[[]T]
}

func newSnapshotList[T any](limit int) *snapshotList[T] {
	l := &snapshotList[T]{limit: limit}
	empty := make([]T, 0)
	l.cur.Store(&empty)
	return l
}

// load returns the current entries. The slice must not be modified.
func (l *snapshotList[T]) load() []T {
	return *l.cur.Load()
}

func (l *snapshotList[T]) add(v T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	old := *l.cur.Load()
	if len(old) >= l.limit {
		return au.ErrTooManyListeners
	}
	next := make([]T, len(old), len(old)+1)
	copy(next, old)
	next = append(next, v)
	l.cur.Store(&next)
	return nil
}

// remove drops every entry matching match and reports how many went.
func (l *snapshotList[T]) remove(match func(T) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	old := *l.cur.Load()
	next := make([]T, 0, len(old))
	for _, v := range old {
		if !match(v) {
			next = append(next, v)
		}
	}
	if len(next) == len(old) {
		return 0
	}
	l.cur.Store(&next)
	return len(old) - len(next)
}

func (l *snapshotList[T]) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	empty := make([]T, 0)
	l.cur.Store(&empty)
}

// AddPropertyListener registers l for changes of id. The same listener may
// be registered more than once; each registration is notified.
func (i *Instance) AddPropertyListener(id au.PropertyID, l au.PropertyListener, refCon any) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	if l == nil {
		return au.ErrParam
	}
	return i.listeners.add(propertyListener{id: id, listener: l, refCon: refCon})
}

// RemovePropertyListener removes every registration of l for id.
func (i *Instance) RemovePropertyListener(id au.PropertyID, l au.PropertyListener) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	i.listeners.remove(func(e propertyListener) bool {
		return e.id == id && au.SameListener(e.listener, l)
	})
	return nil
}

// RemovePropertyListenerWithRefCon removes the registrations of l for id
// that were made with refCon.
func (i *Instance) RemovePropertyListenerWithRefCon(id au.PropertyID, l au.PropertyListener, refCon any) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	i.listeners.remove(func(e propertyListener) bool {
		return e.id == id && au.SameListener(e.listener, l) && au.SameListener(e.refCon, refCon)
	})
	return nil
}

// AddRenderNotify registers o to be called before and after every render.
func (i *Instance) AddRenderNotify(o au.RenderObserver, refCon any) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	if o == nil {
		return au.ErrParam
	}
	return i.notifiers.add(renderNotifier{observer: o, refCon: refCon})
}

// RemoveRenderNotify removes the registrations of o made with refCon.
func (i *Instance) RemoveRenderNotify(o au.RenderObserver, refCon any) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	i.notifiers.remove(func(e renderNotifier) bool {
		return au.SameListener(e.observer, o) && au.SameListener(e.refCon, refCon)
	})
	return nil
}

// notify calls the listeners of id synchronously on the calling thread.
func (i *Instance) notify(id au.PropertyID, scope au.Scope, element au.Element) {
	for _, e := range i.listeners.load() {
		if e.id == id {
			e.listener.PropertyChanged(e.refCon, id, scope, element)
		}
	}
}

// renderNotify runs on the audio thread. Observer errors are ignored.
func (i *Instance) renderNotify(flags au.RenderActionFlags, ts *au.TimeStamp, bus, frames uint32, io *au.BufferList) {
	for _, e := range i.notifiers.load() {
		i.notifyFlags = flags
		_ = e.observer.RenderNotify(e.refCon, &i.notifyFlags, ts, bus, frames, io)
	}
}
