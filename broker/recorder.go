package broker

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Recorder appends every delivered message to a writer as one line per
// event:
//
//	<RFC3339Nano timestamp> <KIND> <sender> <payload JSON>
//
// Attach it to a broker to produce the simulation's event log. The
// writer is serialized internally; any io.Writer works.
type Recorder struct {
	mu sync.Mutex
	w  io.Writer
	n  uint64
}

// RecorderID is the subscriber identifier the recorder registers under
const RecorderID = "recorder"

// NewRecorder creates a recorder writing to w
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Attach subscribes the recorder to every message kind on b
func (r *Recorder) Attach(b *Broker) error {
	return b.Subscribe(RecorderID, r.Handle, Kinds()...)
}

// Handle writes one event line; it satisfies the broker Handler type
func (r *Recorder) Handle(msg Message) error {
	data, err := msg.PayloadJSON()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, err = fmt.Fprintf(r.w, "%s %s %s %s\n",
		msg.Timestamp.Format(time.RFC3339Nano), msg.Kind, msg.Sender, data)
	if err == nil {
		r.n++
	}
	return err
}

// Recorded returns the number of events written so far
func (r *Recorder) Recorded() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}
