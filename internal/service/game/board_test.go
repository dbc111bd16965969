package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBoard_Composition(t *testing.T) {
	src := enoughWords()

	state, err := GenerateBoard(src, "en")
	require.NoError(t, err)

	require.Len(t, state.Cards, BOARD_SIZE)

	counts := make(map[string]int)
	seenWords := make(map[string]struct{})
	available := make(map[string]struct{})

	for _, w := range src.WordsFor("en") {
		available[w] = struct{}{}
	}

	for i, card := range state.Cards {
		assert.Equal(t, i, card.Index, "card indices must match board positions")
		assert.False(t, card.Revealed, "fresh board must be fully hidden")
		assert.Contains(t, available, card.Word, "card words must come from the source")

		_, dup := seenWords[card.Word]
		assert.False(t, dup, "card words must be distinct: %q", card.Word)
		seenWords[card.Word] = struct{}{}

		counts[card.Type]++
	}

	startingTeam := state.StartingTeam
	require.True(t, isPlayTeam(startingTeam))

	assert.Equal(t, 1, counts[CARD_BLACK])
	assert.Equal(t, STARTING_TEAM_CARDS, counts[startingTeam])
	assert.Equal(t, OTHER_TEAM_CARDS, counts[otherTeam(startingTeam)])
	assert.Equal(t, NEUTRAL_CARDS, counts[CARD_NEUTRAL])

	assert.Equal(t, startingTeam, state.CurrentTeam)
	assert.Equal(t, PHASE_CLUE, state.Phase)
	assert.True(t, state.FirstGuessTurn)
	assert.Empty(t, state.Winner)
	assert.Zero(t, state.Timers.Blue)
	assert.Zero(t, state.Timers.Red)

	if startingTeam == TEAM_BLUE {
		assert.Equal(t, TeamScores{Blue: STARTING_TEAM_CARDS, Red: OTHER_TEAM_CARDS}, state.Scores)
	} else {
		assert.Equal(t, TeamScores{Blue: OTHER_TEAM_CARDS, Red: STARTING_TEAM_CARDS}, state.Scores)
	}
}

func TestGenerateBoard_NotEnoughWords(t *testing.T) {
	src := &stubWords{words: make([]string, BOARD_SIZE-1)}
	for i := range src.words {
		src.words[i] = string(rune('a' + i))
	}

	_, err := GenerateBoard(src, "en")
	require.ErrorIs(t, err, ErrNotEnoughWords)
}

func TestGenerateBoard_BothStartingTeamsOccur(t *testing.T) {
	src := enoughWords()

	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		state, err := GenerateBoard(src, "en")
		require.NoError(t, err)

		seen[state.StartingTeam] = true

		if seen[TEAM_BLUE] && seen[TEAM_RED] {
			return
		}
	}

	t.Fatalf("starting team never varied across 200 boards: %v", seen)
}

func TestGameStateClone_IsIndependent(t *testing.T) {
	state := testState()
	state.ClueHistory.Blue = append(state.ClueHistory.Blue, Clue{ID: "1", Text: "ocean 2"})

	snapshot := state.Clone()

	state.Cards[0].Revealed = true
	state.ClueHistory.Blue[0].Text = "changed"

	assert.False(t, snapshot.Cards[0].Revealed, "clone must not observe later card changes")
	assert.Equal(t, "ocean 2", snapshot.ClueHistory.Blue[0].Text, "clone must not observe later clue edits")
}
