// Package practice implements the pronunciation practice screen.
package practice

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	SuccessMessage = "Great job! 🎉"
	FailureMessage = "Try again!"
)

var ErrAlreadyListening = errors.New("already listening")

type (
	// Speaker plays text out loud. Fire and forget.
	Speaker interface {
		Speak(text string)
	}

	// Recognizer starts speech to text. Transcripts come back through Controller.HandleTranscript.
	Recognizer interface {
		StartListening()
	}

	// Notifier shows a blocking message to the user.
	Notifier interface {
		Notify(msg string)
	}
)

// Matches reports whether transcript contains target, ignoring case. An empty transcript never matches.
func Matches(transcript, target string) bool {
	if transcript == "" {
		return false
	}
	return strings.Contains(strings.ToLower(transcript), strings.ToLower(target))
}

type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Transcript string `json:"transcript"`
	Target     string `json:"target"`
}

type State struct {
	Target     string `json:"target"`
	Transcript string `json:"transcript"`
	Listening  bool   `json:"listening"`
}

// Controller drives the practice screen for one target word.
type Controller struct {
	target     string
	speaker    Speaker
	recognizer Recognizer
	notifier   Notifier

	mu         sync.Mutex
	transcript string
	listening  bool
}

func NewController(target string, speaker Speaker, recognizer Recognizer, notifier Notifier) *Controller {
	return &Controller{
		target:     target,
		speaker:    speaker,
		recognizer: recognizer,
		notifier:   notifier,
	}
}

func (c *Controller) Target() string { return c.target }

// PlayTarget speaks the target word.
func (c *Controller) PlayTarget() {
	c.speaker.Speak(c.target)
}

// Listen starts speech recognition. It is refused while already listening.
func (c *Controller) Listen() error {
	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return ErrAlreadyListening
	}
	c.listening = true
	c.mu.Unlock()

	c.recognizer.StartListening()
	return nil
}

// HandleTranscript receives the live transcript and listening flag from the recognizer.
func (c *Controller) HandleTranscript(transcript string, listening bool) {
	c.mu.Lock()
	c.transcript = transcript
	c.listening = listening
	c.mu.Unlock()
}

func (c *Controller) ResetTranscript() {
	c.mu.Lock()
	c.transcript = ""
	c.mu.Unlock()
}

// Check compares the current transcript against the target and notifies the user of the outcome.
func (c *Controller) Check() Result {
	c.mu.Lock()
	transcript := c.transcript
	c.mu.Unlock()

	res := Result{Transcript: transcript, Target: c.target, Message: FailureMessage}
	if Matches(transcript, c.target) {
		res.Success = true
		res.Message = SuccessMessage
	}
	c.notifier.Notify(res.Message)
	return res
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Target: c.target, Transcript: c.transcript, Listening: c.listening}
}
