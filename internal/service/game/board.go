package game

import (
	"errors"
	"math/rand"
)

// WordSource 提供按语言筛选后的候选词
type WordSource interface {
	WordsFor(language string) []string
}

const (
	BOARD_SIZE = 25

	// 洗牌前的固定牌型数量，先手队伍多一张
	STARTING_TEAM_CARDS = 9
	OTHER_TEAM_CARDS    = 8
	NEUTRAL_CARDS       = 7
)

var ErrNotEnoughWords = errors.New("该语言的词语不足以生成棋盘")

// GenerateBoard 为指定语言生成一局全新的 GameState：
// 从词库无放回均匀抽取 25 个互不相同的词，随机确定先手队伍，
// 牌型分配（1 黑 / 9 先手 / 8 后手 / 7 中立）与选词顺序独立洗牌。
// 词语不足 25 个属于前置条件错误，由调用方在创建/重置时拒绝。
func GenerateBoard(src WordSource, language string) (*GameState, error) {
	candidates := src.WordsFor(language)
	if len(candidates) < BOARD_SIZE {
		return nil, ErrNotEnoughWords
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	selected := candidates[:BOARD_SIZE]

	startingTeam := TEAM_BLUE
	if rand.Intn(2) == 1 {
		startingTeam = TEAM_RED
	}

	secondTeam := otherTeam(startingTeam)

	types := make([]string, 0, BOARD_SIZE)
	types = append(types, CARD_BLACK)
	for i := 0; i < STARTING_TEAM_CARDS; i++ {
		types = append(types, startingTeam)
	}
	for i := 0; i < OTHER_TEAM_CARDS; i++ {
		types = append(types, secondTeam)
	}
	for i := 0; i < NEUTRAL_CARDS; i++ {
		types = append(types, CARD_NEUTRAL)
	}

	// 独立洗牌，保证牌型和选词顺序不相关
	rand.Shuffle(len(types), func(i, j int) {
		types[i], types[j] = types[j], types[i]
	})

	cards := make([]Card, BOARD_SIZE)
	for i := range cards {
		cards[i] = Card{
			Word:  selected[i],
			Type:  types[i],
			Index: i,
		}
	}

	scores := TeamScores{Blue: OTHER_TEAM_CARDS, Red: OTHER_TEAM_CARDS}
	if startingTeam == TEAM_BLUE {
		scores.Blue = STARTING_TEAM_CARDS
	} else {
		scores.Red = STARTING_TEAM_CARDS
	}

	return &GameState{
		Cards:          cards,
		StartingTeam:   startingTeam,
		CurrentTeam:    startingTeam,
		Phase:          PHASE_CLUE,
		FirstGuessTurn: true,
		Scores:         scores,
		ClueHistory: TeamClues{
			Blue: make([]Clue, 0),
			Red:  make([]Clue, 0),
		},
	}, nil
}
