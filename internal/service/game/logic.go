package game

import (
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// 房间整体分为 4 个阶段：
// 1. 大厅阶段（Lobby）：对局尚未开始，玩家加入、分队、调整设置
// 2. 提示阶段（Clue）：当前队伍的队长给出提示，不计时
// 3. 猜词阶段（Guess）：当前队伍的队员翻牌，倒计时进行中
// 4. 结束阶段（Finished）：已分出胜负，只有 resetGame 能开新局
// 提示/猜词阶段在两支队伍间交替，GameState.phase 始终与之同步
const (
	STAGE_LOBBY    = "Lobby"
	STAGE_CLUE     = "Clue"
	STAGE_GUESS    = "Guess"
	STAGE_FINISHED = "Finished"
)

type StageHandler interface {
	Stage() string

	OnEnter(ctx *RoomContext)
	OnHandle(ctx *RoomContext, req RequestWrapper) error
	OnExit(ctx *RoomContext)

	SetOnSwitch(func(nextStage string))
}

// ---- 各阶段共用的请求处理 ----

// handleCommonRequest 处理所有阶段都接受的请求：
// 加入、断开、切换队伍、设置更新、提示操作、暂停、重置和计时 tick
// 返回 handled=false 表示请求应由具体阶段继续处理
func handleCommonRequest(ctx *RoomContext, req RequestWrapper) (handled bool, next string, err error) {
	if r := TryUnwrapTickRequest(req); r != nil {
		return true, handleTick(ctx, r), nil
	}

	if r := TryUnwrapJoinRoomRequest(req); r != nil {
		return true, "", onPlayerJoin(ctx, r)
	}

	if r := TryUnwrapDisconnectRequest(req); r != nil {
		onPlayerLeave(ctx, r)
		return true, "", nil
	}

	if r := TryUnwrapSwitchTeamRequest(req); r != nil {
		return true, "", handleSwitchTeam(ctx, req.ActorID, r)
	}

	if r := TryUnwrapSubmitClueRequest(req); r != nil {
		return true, "", handleSubmitClue(ctx, req.ActorID, r)
	}

	if r := TryUnwrapEditClueRequest(req); r != nil {
		return true, "", handleEditClue(ctx, req.ActorID, r)
	}

	if r := TryUnwrapDeleteClueRequest(req); r != nil {
		return true, "", handleDeleteClue(ctx, req.ActorID, r)
	}

	if r := TryUnwrapUpdateSettingsRequest(req); r != nil {
		return true, "", handleUpdateSettings(ctx, r)
	}

	switch req.ReqType {
	case REQ_PAUSE_GAME:
		return true, "", handlePauseGame(ctx)

	case REQ_RESET_GAME:
		next, err := handleResetGame(ctx)
		return true, next, err
	}

	return false, "", nil
}

func onPlayerJoin(ctx *RoomContext, req *JoinRoomRequest) error {
	if req.PlayerName == "" {
		return errors.New("无法加入房间：玩家名称不能为空")
	}

	// 相同连接 ID 视为重连：替换响应通道并更新名字，保留队伍和角色
	if existing := ctx.FindPlayer(req.PlayerID); existing != nil {
		if existing.RespCh != nil && existing.RespCh != req.RespCh {
			close(existing.RespCh)

			zap.L().Debug(
				"已关闭旧连接的响应通道（按 ID 重连）",
				zap.String("room_id", ctx.RoomID),
				zap.String("player_id", req.PlayerID),
			)
		}

		existing.RespCh = req.RespCh
		existing.Name = req.PlayerName
	} else {
		player := &Player{
			ID:     req.PlayerID,
			Name:   req.PlayerName,
			Team:   TEAM_SPECTATOR,
			Role:   ROLE_SPECTATOR,
			IsHost: len(ctx.Players) == 0,
			RespCh: req.RespCh,
		}

		ctx.Players = append(ctx.Players, player)
	}

	broadcastPlayers(ctx)

	// 给加入者单播完整的房间快照
	ctx.UnicastResp(req.PlayerID, WrapResponse(
		RESP_ROOM_JOINED,
		RoomJoinedResponse{
			RoomID:    ctx.RoomID,
			GameState: ctx.State.Clone(),
			Players:   ctx.PlayersSnapshot(),
			Settings:  ctx.Settings,
			GameStatus: GameStatus{
				Started: ctx.Started,
				Paused:  ctx.Paused,
			},
		},
	))

	zap.L().Info(
		"玩家加入房间",
		zap.String("room_id", ctx.RoomID),
		zap.String("player_id", req.PlayerID),
		zap.String("player_name", req.PlayerName),
	)

	return nil
}

func onPlayerLeave(ctx *RoomContext, req *DisconnectRequest) {
	player := ctx.FindPlayer(req.PlayerID)
	if player == nil {
		zap.L().Warn(
			"玩家不存在，无法处理断开",
			zap.String("room_id", ctx.RoomID),
			zap.String("player_id", req.PlayerID),
		)
		return
	}

	// 响应通道不匹配说明该连接已被同 ID 重连顶替，玩家本体要保留
	if player.RespCh != req.RespCh {
		zap.L().Info(
			"检测到旧连接断开（已被顶替），保留玩家",
			zap.String("room_id", ctx.RoomID),
			zap.String("player_id", req.PlayerID),
		)
		return
	}

	close(player.RespCh)
	ctx.removePlayer(req.PlayerID)

	zap.L().Info(
		"玩家离开房间",
		zap.String("room_id", ctx.RoomID),
		zap.String("player_id", req.PlayerID),
		zap.String("player_name", player.Name),
	)

	broadcastPlayers(ctx)
}

func handleSwitchTeam(ctx *RoomContext, actorID string, req *SwitchTeamRequest) error {
	player := ctx.FindPlayer(actorID)
	if player == nil {
		return errors.New("无法切换队伍：玩家不存在")
	}

	if req.Team != TEAM_BLUE && req.Team != TEAM_RED && req.Team != TEAM_SPECTATOR {
		return errors.New("无法切换队伍：未知的队伍")
	}

	if !validRole(req.Role) {
		return errors.New("无法切换队伍：未知的角色")
	}

	player.Team = req.Team
	player.Role = req.Role

	broadcastPlayers(ctx)

	return nil
}

func handleSubmitClue(ctx *RoomContext, actorID string, req *SubmitClueRequest) error {
	if req.Word == "" {
		return errors.New("无法提交提示：内容不能为空")
	}

	player := ctx.FindPlayer(actorID)
	if player == nil {
		return errors.New("无法提交提示：玩家不存在")
	}

	if player.Role != ROLE_SPYMASTER || player.Team != ctx.State.CurrentTeam {
		return errors.New("无法提交提示：只有当前队伍的队长可以提交")
	}

	clues := ctx.State.cluesFor(player.Team)
	*clues = append(*clues, Clue{
		ID:        newClueID(),
		Text:      req.Word,
		Timestamp: time.Now().UnixMilli(),
	})

	broadcastState(ctx)

	return nil
}

func handleEditClue(ctx *RoomContext, actorID string, req *EditClueRequest) error {
	if req.NewText == "" {
		return errors.New("无法编辑提示：内容不能为空")
	}

	player := ctx.FindPlayer(actorID)
	if player == nil || player.Role != ROLE_SPYMASTER || !isPlayTeam(player.Team) {
		return errors.New("无法编辑提示：只有队长可以编辑本队的提示")
	}

	clues := ctx.State.cluesFor(player.Team)
	for i := range *clues {
		if (*clues)[i].ID == req.ClueID {
			(*clues)[i].Text = req.NewText
			broadcastState(ctx)
			return nil
		}
	}

	return errors.New("无法编辑提示：提示不存在")
}

func handleDeleteClue(ctx *RoomContext, actorID string, req *DeleteClueRequest) error {
	player := ctx.FindPlayer(actorID)
	if player == nil || player.Role != ROLE_SPYMASTER || !isPlayTeam(player.Team) {
		return errors.New("无法删除提示：只有队长可以删除本队的提示")
	}

	clues := ctx.State.cluesFor(player.Team)
	for i := range *clues {
		if (*clues)[i].ID == req.ClueID {
			*clues = append((*clues)[:i], (*clues)[i+1:]...)
			broadcastState(ctx)
			return nil
		}
	}

	return errors.New("无法删除提示：提示不存在")
}

func handleUpdateSettings(ctx *RoomContext, req *UpdateSettingsRequest) error {
	// 设置只影响下一次生成棋盘，当前对局不受影响
	ctx.Settings = req.Settings

	ctx.BroadcastResp(WrapResponse(RESP_SETTINGS_UPDATED, ctx.Settings))

	return nil
}

func handlePauseGame(ctx *RoomContext) error {
	if !ctx.Started {
		return errors.New("无法暂停：对局尚未开始")
	}

	ctx.Paused = !ctx.Paused

	broadcastStatus(ctx)

	return nil
}

// handleResetGame 用当前设置重新生成棋盘并回到大厅阶段
// 返回下一阶段；生成失败（语言词数不足）时不做任何修改
func handleResetGame(ctx *RoomContext) (string, error) {
	state, err := GenerateBoard(ctx.Words, ctx.Settings.GameLanguage)
	if err != nil {
		return "", err
	}

	ctx.State = state
	ctx.Started = false
	ctx.Paused = false
	ctx.StopTicker()

	assignTraitor(ctx)

	broadcastState(ctx)
	broadcastStatus(ctx)

	return STAGE_LOBBY, nil
}

// 内奸模式：重置时从两队玩家中随机抽一人私下通知
// 被抽中与否目前不影响任何玩法判定
func assignTraitor(ctx *RoomContext) {
	ctx.TraitorID = ""

	if !ctx.Settings.TraitorMode || len(ctx.Players) < 6 {
		return
	}

	eligible := make([]*Player, 0, len(ctx.Players))
	for _, p := range ctx.Players {
		if isPlayTeam(p.Team) {
			eligible = append(eligible, p)
		}
	}

	if len(eligible) == 0 {
		return
	}

	traitor := eligible[rand.Intn(len(eligible))]
	ctx.TraitorID = traitor.ID

	ctx.UnicastResp(traitor.ID, WrapResponse(RESP_TRAITOR_ASSIGNED, true))
}

// switchTurn 结束当前队伍的回合：换边、回到提示阶段、清空计时器
// 先手队伍的首个回合结束后，首轮加时资格随之失效
func switchTurn(gs *GameState) {
	gs.CurrentTeam = otherTeam(gs.CurrentTeam)
	gs.Phase = PHASE_CLUE
	gs.Timers.Blue = 0
	gs.Timers.Red = 0

	if gs.CurrentTeam != gs.StartingTeam {
		gs.FirstGuessTurn = false
	}
}

func guessDuration(ctx *RoomContext) int {
	if ctx.State.FirstGuessTurn {
		return ctx.Durations.FirstGuessSeconds
	}

	return ctx.Durations.GuessSeconds
}

// ---- 广播辅助 ----

func broadcastState(ctx *RoomContext) {
	ctx.BroadcastResp(WrapResponse(RESP_GAME_STATE, ctx.State.Clone()))
}

func broadcastTimers(ctx *RoomContext) {
	ctx.BroadcastResp(WrapResponse(RESP_TIMER_UPDATE, ctx.State.Timers))
}

func broadcastPlayers(ctx *RoomContext) {
	ctx.BroadcastResp(WrapResponse(RESP_UPDATE_PLAYERS, ctx.PlayersSnapshot()))
}

func broadcastStatus(ctx *RoomContext) {
	ctx.BroadcastResp(WrapResponse(RESP_GAME_STATUS, GameStatus{
		Started: ctx.Started,
		Paused:  ctx.Paused,
	}))
}

// ---- 大厅阶段 ----

type lobbyStageHandler struct {
	onSwitch func(string)
}

func NewLobbyStageHandler() *lobbyStageHandler {
	return &lobbyStageHandler{}
}

func (lsh *lobbyStageHandler) Stage() string {
	return STAGE_LOBBY
}

func (lsh *lobbyStageHandler) OnEnter(ctx *RoomContext) {
}

func (lsh *lobbyStageHandler) OnHandle(ctx *RoomContext, req RequestWrapper) error {
	if handled, next, err := handleCommonRequest(ctx, req); handled {
		if next != "" {
			lsh.onSwitch(next)
		}
		return err
	}

	switch req.ReqType {
	case REQ_START_GAME:
		ctx.Started = true
		ctx.Paused = false
		ctx.StartTicker()

		broadcastStatus(ctx)

		zap.L().Info(
			"对局开始",
			zap.String("room_id", ctx.RoomID),
			zap.String("starting_team", ctx.State.StartingTeam),
		)

		if ctx.State.Phase == PHASE_GUESS {
			lsh.onSwitch(STAGE_GUESS)
		} else {
			lsh.onSwitch(STAGE_CLUE)
		}

		return nil

	case REQ_REVEAL_CARD, REQ_END_TURN:
		return errors.New("对局尚未开始")
	}

	return errors.New("无法处理请求：当前阶段不支持该请求类型")
}

func (lsh *lobbyStageHandler) OnExit(ctx *RoomContext) {
}

func (lsh *lobbyStageHandler) SetOnSwitch(onSwitch func(string)) {
	lsh.onSwitch = onSwitch
}

// ---- 提示阶段 ----

type clueStageHandler struct {
	onSwitch func(string)
}

func NewClueStageHandler() *clueStageHandler {
	return &clueStageHandler{}
}

func (csh *clueStageHandler) Stage() string {
	return STAGE_CLUE
}

func (csh *clueStageHandler) OnEnter(ctx *RoomContext) {
}

func (csh *clueStageHandler) OnHandle(ctx *RoomContext, req RequestWrapper) error {
	if handled, next, err := handleCommonRequest(ctx, req); handled {
		if next != "" {
			csh.onSwitch(next)
		}
		return err
	}

	switch req.ReqType {
	case REQ_END_TURN:
		// 只有当前队伍的队长可以结束提示阶段，进入猜词
		if ctx.Paused {
			return errors.New("无法结束提示阶段：对局已暂停")
		}

		player := ctx.FindPlayer(req.ActorID)
		if player == nil || player.Role != ROLE_SPYMASTER || player.Team != ctx.State.CurrentTeam {
			return errors.New("无法结束提示阶段：只有当前队伍的队长可以操作")
		}

		ctx.State.Phase = PHASE_GUESS
		*ctx.State.timerFor(ctx.State.CurrentTeam) = guessDuration(ctx)

		broadcastState(ctx)

		csh.onSwitch(STAGE_GUESS)

		return nil

	case REQ_START_GAME:
		return errors.New("对局已经开始")

	case REQ_REVEAL_CARD:
		return errors.New("无法翻牌：当前是提示阶段")
	}

	return errors.New("无法处理请求：当前阶段不支持该请求类型")
}

func (csh *clueStageHandler) OnExit(ctx *RoomContext) {
}

func (csh *clueStageHandler) SetOnSwitch(onSwitch func(string)) {
	csh.onSwitch = onSwitch
}

// ---- 猜词阶段 ----

type guessStageHandler struct {
	onSwitch func(string)
}

func NewGuessStageHandler() *guessStageHandler {
	return &guessStageHandler{}
}

func (gsh *guessStageHandler) Stage() string {
	return STAGE_GUESS
}

func (gsh *guessStageHandler) OnEnter(ctx *RoomContext) {
}

func (gsh *guessStageHandler) OnHandle(ctx *RoomContext, req RequestWrapper) error {
	if handled, next, err := handleCommonRequest(ctx, req); handled {
		if next != "" {
			gsh.onSwitch(next)
		}
		return err
	}

	if r := TryUnwrapRevealCardRequest(req); r != nil {
		next, err := handleRevealCard(ctx, req.ActorID, r)
		if next != "" {
			gsh.onSwitch(next)
		}
		return err
	}

	switch req.ReqType {
	case REQ_END_TURN:
		// 当前队伍的任何成员都可以主动结束猜词
		if ctx.Paused {
			return errors.New("无法结束回合：对局已暂停")
		}

		player := ctx.FindPlayer(req.ActorID)
		if player == nil || player.Team != ctx.State.CurrentTeam {
			return errors.New("无法结束回合：只有当前队伍的成员可以操作")
		}

		switchTurn(ctx.State)
		broadcastState(ctx)

		gsh.onSwitch(STAGE_CLUE)

		return nil

	case REQ_START_GAME:
		return errors.New("对局已经开始")
	}

	return errors.New("无法处理请求：当前阶段不支持该请求类型")
}

func (gsh *guessStageHandler) OnExit(ctx *RoomContext) {
}

func (gsh *guessStageHandler) SetOnSwitch(onSwitch func(string)) {
	gsh.onSwitch = onSwitch
}

// handleRevealCard 执行一次翻牌并返回需要切换到的阶段（空表示不切换）
// 胜负判定先于换边逻辑；赢家产生后本局不再接受翻牌
func handleRevealCard(ctx *RoomContext, actorID string, req *RevealCardRequest) (string, error) {
	if ctx.Paused {
		return "", errors.New("无法翻牌：对局已暂停")
	}

	if req.CardIndex < 0 || req.CardIndex >= len(ctx.State.Cards) {
		return "", errors.New("无法翻牌：卡牌序号越界")
	}

	card := &ctx.State.Cards[req.CardIndex]
	if card.Revealed {
		// 已翻开的牌再次点击是常见竞态，静默忽略
		return "", errors.New("无法翻牌：该牌已被翻开")
	}

	player := ctx.FindPlayer(actorID)
	if player == nil || player.Role != ROLE_OPERATIVE || player.Team != ctx.State.CurrentTeam {
		return "", errors.New("无法翻牌：只有当前队伍的队员可以翻牌")
	}

	card.Revealed = true

	switch card.Type {
	case CARD_BLUE:
		ctx.State.Scores.Blue--
	case CARD_RED:
		ctx.State.Scores.Red--
	}

	// 胜负判定：刺客优先，其次剩余词数清零
	if card.Type == CARD_BLACK {
		ctx.State.Winner = otherTeam(ctx.State.CurrentTeam)
	} else if ctx.State.Scores.Blue == 0 {
		ctx.State.Winner = TEAM_BLUE
	} else if ctx.State.Scores.Red == 0 {
		ctx.State.Winner = TEAM_RED
	}

	next := ""

	if ctx.State.Winner != "" {
		next = STAGE_FINISHED
	} else if card.Type != ctx.State.CurrentTeam {
		// 翻错直接结束回合
		switchTurn(ctx.State)
		next = STAGE_CLUE
	}

	broadcastState(ctx)
	ctx.BroadcastResp(WrapResponse(RESP_CARD_REVEALED, CardRevealedResponse{
		Index: req.CardIndex,
		Type:  card.Type,
	}))

	return next, nil
}

// ---- 结束阶段 ----

type finishedStageHandler struct {
	onSwitch func(string)
}

func NewFinishedStageHandler() *finishedStageHandler {
	return &finishedStageHandler{}
}

func (fsh *finishedStageHandler) Stage() string {
	return STAGE_FINISHED
}

func (fsh *finishedStageHandler) OnEnter(ctx *RoomContext) {
	// 胜负已分，计时循环不再需要
	ctx.StopTicker()

	zap.L().Info(
		"对局结束",
		zap.String("room_id", ctx.RoomID),
		zap.String("winner", ctx.State.Winner),
	)
}

func (fsh *finishedStageHandler) OnHandle(ctx *RoomContext, req RequestWrapper) error {
	if handled, next, err := handleCommonRequest(ctx, req); handled {
		if next != "" {
			fsh.onSwitch(next)
		}
		return err
	}

	// 胜负已分，除 resetGame 外不再接受对局操作
	return errors.New("游戏已结束")
}

func (fsh *finishedStageHandler) OnExit(ctx *RoomContext) {
}

func (fsh *finishedStageHandler) SetOnSwitch(onSwitch func(string)) {
	fsh.onSwitch = onSwitch
}
