// Package speech relays speech requests to the browser, which owns the actual
// speech synthesis and recognition.
package speech

import (
	"sync"

	"github.com/trezcool/wordwise/core/practice"
)

// Cue kinds
const (
	CueSpeak  = "speak"
	CueListen = "listen"
	CueNotify = "notify"
)

// Cue is an instruction for the browser.
type Cue struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// Recorder collects the cues issued while handling one request.
type Recorder struct {
	mu   sync.Mutex
	cues []Cue
}

var (
	_ practice.Speaker    = (*Recorder)(nil)
	_ practice.Recognizer = (*Recorder)(nil)
	_ practice.Notifier   = (*Recorder)(nil)
)

func NewRecorder() *Recorder {
	return &Recorder{cues: make([]Cue, 0)}
}

func (r *Recorder) Speak(text string) { r.add(Cue{Kind: CueSpeak, Text: text}) }

func (r *Recorder) StartListening() { r.add(Cue{Kind: CueListen}) }

func (r *Recorder) Notify(msg string) { r.add(Cue{Kind: CueNotify, Text: msg}) }

// Cues returns and forgets the recorded cues.
func (r *Recorder) Cues() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	cues := r.cues
	r.cues = make([]Cue, 0)
	return cues
}

func (r *Recorder) add(c Cue) {
	r.mu.Lock()
	r.cues = append(r.cues, c)
	r.mu.Unlock()
}
