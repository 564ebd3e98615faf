package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/wordwise/core/practice"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctrl := practice.NewController("rhythm", r, r, r)

	ctrl.PlayTarget()
	assert.NoError(t, ctrl.Listen())
	ctrl.HandleTranscript("Rhythm", false)
	ctrl.Check()

	assert.Equal(t, []Cue{
		{Kind: CueSpeak, Text: "rhythm"},
		{Kind: CueListen},
		{Kind: CueNotify, Text: practice.SuccessMessage},
	}, r.Cues())
	assert.Empty(t, r.Cues(), "cues should be forgotten once read")
}
