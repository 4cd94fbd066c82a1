package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrector_Correct(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		err      error
		want     string
		wantErr  error
		wantMove bool
	}{
		{
			name:     "moves to the answer",
			answer:   "Rock/A/[2000] B/01 - C.mp3",
			want:     "Rock/A/[2000] B/01 - C.mp3",
			wantMove: true,
		},
		{
			name:     "answer is sanitized",
			answer:   " /Rock/A/[2000] B/../01 - C?.mp3 ",
			want:     "Rock/A/[2000] B/01 - C_.mp3",
			wantMove: true,
		},
		{
			name:    "empty answer declines",
			answer:  "   ",
			wantErr: ErrCorrectionDeclined,
		},
		{
			name:    "unchanged answer declines",
			answer:  "Rock/old.mp3",
			wantErr: ErrCorrectionDeclined,
		},
		{
			name:    "prompter error is returned",
			err:     errors.New("prompt aborted"),
			wantErr: errors.New("prompt aborted"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			touch(t, base, "Rock/old.mp3")

			var prompter *scriptedPrompter
			if tt.err != nil {
				prompter = &scriptedPrompter{err: tt.err}
			} else {
				prompter = &scriptedPrompter{answers: []string{tt.answer}}
			}
			log := &recordLogger{}

			got, err := NewCorrector(base, prompter, log).Correct("Rock/old.mp3", "Missing fields: title")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"Rock/old.mp3"}, prompter.defaults)
			assert.Equal(t, 1, log.count("REQUEST"))

			_, statErr := os.Stat(filepath.Join(base, filepath.FromSlash(tt.want)))
			assert.Equal(t, tt.wantMove, statErr == nil)
			assert.Equal(t, 1, log.count("MOVE"))
		})
	}
}

func TestCorrector_FailedMoveIsWarning(t *testing.T) {
	base := t.TempDir()
	prompter := &scriptedPrompter{answers: []string{"Rock/new.mp3"}}
	log := &recordLogger{}

	got, err := NewCorrector(base, prompter, log).Correct("Rock/missing.mp3", "Missing fields: title")

	require.NoError(t, err)
	assert.Equal(t, "Rock/new.mp3", got)
	assert.Equal(t, 1, log.count("WARNING"))
	assert.Zero(t, log.count("MOVE"))
}
