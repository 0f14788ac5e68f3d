package midi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
	"go.uber.org/zap"
)

const (
	pollRate    = time.Second
	scanTimeout = 3 * time.Second
)

// Watcher keeps one MIDI input port connected across hot-plug. Raw
// messages go to onMessage on the driver's callback goroutine.
// onDisconnect fires when the active port is lost, so the caller can
// release everything it believes is held.
type Watcher struct {
	preferred []string
	excluded  []string

	onMessage    func([]byte)
	onDisconnect func()
	log          *zap.Logger

	mu       sync.Mutex
	inPort   drivers.In
	stopFn   func()
	portName string
	done     bool

	events chan Event
}

func NewWatcher(preferred, excluded []string, onMessage func([]byte), onDisconnect func(), log *zap.Logger) *Watcher {
	return &Watcher{
		preferred:    preferred,
		excluded:     excluded,
		onMessage:    onMessage,
		onDisconnect: onDisconnect,
		log:          log,
		events:       make(chan Event, 16),
	}
}

// Events returns a channel of port connect/disconnect events
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Connected returns the active port name, if any
func (w *Watcher) Connected() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.portName, w.portName != ""
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(pollRate)
	defer ticker.Stop()

	// Initial scan
	w.scan()

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *Watcher) scan() {
	// Enumerate ports with a timeout (the backend can hang)
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	var ports []drivers.In
	select {
	case ports = <-ch:
	case <-time.After(scanTimeout):
		w.log.Warn("port enumeration timed out, skipping scan")
		return
	}

	names := w.filterNames(ports)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return
	}

	if w.portName != "" {
		for _, n := range names {
			if n == w.portName {
				return // still there, nothing to do
			}
		}
		lost := w.portName
		w.log.Warn("port disappeared", zap.String("port", lost))
		w.closeConn()
		w.emit(Event{Type: Disconnected, Port: lost})
		if w.onDisconnect != nil {
			go w.onDisconnect()
		}
		return
	}

	cand, ok := pick(names, w.preferred)
	if !ok {
		return
	}
	if err := w.open(ports, cand); err != nil {
		w.log.Error("connect failed", zap.String("port", cand), zap.Error(err))
	}
}

// open connects to a port by name. The caller holds the lock.
func (w *Watcher) open(ports []drivers.In, name string) error {
	var found drivers.In
	for _, p := range ports {
		if p.String() == name {
			found = p
			break
		}
	}
	if found == nil {
		return fmt.Errorf("input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}

	stop, err := gomidi.ListenTo(found, func(msg gomidi.Message, timestampms int32) {
		w.onMessage(msg.Bytes())
	}, gomidi.HandleError(func(listenErr error) {
		w.log.Warn("listener error", zap.String("port", name), zap.Error(listenErr))
		// Tear down from a fresh goroutine, never the listener's.
		go func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.portName == name && !w.done {
				w.closeConn()
				w.emit(Event{Type: Disconnected, Port: name})
				if w.onDisconnect != nil {
					go w.onDisconnect()
				}
			}
		}()
	}))
	if err != nil {
		found.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}

	w.inPort = found
	w.stopFn = stop
	w.portName = name
	w.log.Info("connected", zap.String("port", name))
	w.emit(Event{Type: Connected, Port: name})
	return nil
}

// closeConn tears down the active connection. The caller holds the lock.
func (w *Watcher) closeConn() {
	if w.stopFn != nil {
		w.stopFn()
		w.stopFn = nil
	}
	if w.inPort != nil {
		w.inPort.Close()
		w.inPort = nil
	}
	w.portName = ""
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeConn()
	w.done = true
	close(w.events)
}

// emit drops the event when the TUI is behind. The caller holds the
// lock; done guards against sending on the closed channel.
func (w *Watcher) emit(ev Event) {
	if w.done {
		return
	}
	select {
	case w.events <- ev:
	default:
	}
}

// filterNames drops excluded ports and returns the remaining names.
func (w *Watcher) filterNames(ports []drivers.In) []string {
	var names []string
	for _, p := range ports {
		name := p.String()
		if matchesAny(name, w.excluded) {
			continue
		}
		names = append(names, name)
	}
	return names
}

// pick chooses the port to connect to: the first preferred match, or
// the only candidate when exactly one is present.
func pick(names, preferred []string) (string, bool) {
	for _, pat := range preferred {
		for _, name := range names {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	if len(names) == 1 {
		return names[0], true
	}
	return "", false
}

func matchesAny(name string, patterns []string) bool {
	for _, pat := range patterns {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
