package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/townsquare/internal/config"
	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/foxseedlab/townsquare/internal/game"
	"github.com/foxseedlab/townsquare/internal/repository"
	"github.com/foxseedlab/townsquare/internal/webhook"
)

type memStore struct {
	mu     sync.Mutex
	states map[string]*repository.GuildState
}

func (m *memStore) LoadGuildState(_ context.Context, guildID string) (*repository.GuildState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[guildID]; ok {
		return s.Clone(), nil
	}
	return repository.NewGuildState(), nil
}

func (m *memStore) SaveGuildState(_ context.Context, guildID string, state *repository.GuildState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[guildID] = state.Clone()
	return nil
}

func (m *memStore) Close() error { return nil }

type moveCall struct {
	userID    string
	channelID string
}

type mockClient struct {
	mu            sync.Mutex
	categories    map[string]discord.Category
	channels      map[string]discord.Channel
	members       map[string][]discord.Member
	voiceChannels map[string]string
	roles         map[string]discord.Role
	memberRoles   map[string]bool
	roleErr       error
	moves         []moveCall
	created       []discord.CreateChannelInput
	deleted       []string
	purged        []string
	expiring      []string
	roleCalls     []string
	nextID        int
}

func newMockClient() *mockClient {
	return &mockClient{
		categories:    map[string]discord.Category{},
		channels:      map[string]discord.Channel{},
		members:       map[string][]discord.Member{},
		voiceChannels: map[string]string{},
		roles:         map[string]discord.Role{},
		memberRoles:   map[string]bool{},
	}
}

func (m *mockClient) Connect(context.Context) error { return nil }
func (m *mockClient) Close() error                  { return nil }
func (m *mockClient) Run() error                    { return nil }
func (m *mockClient) GuildIDs() []string            { return []string{"guild-1"} }
func (m *mockClient) GetBotUserID() (string, error) { return "bot-self", nil }

func (m *mockClient) RegisterVoiceStateUpdateHandler(func(discord.VoiceStateEvent)) {}
func (m *mockClient) RegisterSlashCommandHandler(func(discord.SlashCommandEvent))   {}
func (m *mockClient) RegisterComponentHandler(func(discord.ComponentEvent))         {}
func (m *mockClient) UpsertGuildSlashCommands(string, []discord.SlashCommandDefinition) error {
	return nil
}

func (m *mockClient) SendExpiringMessage(_ string, content string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiring = append(m.expiring, content)
	return nil
}

func (m *mockClient) PurgeChannel(_ context.Context, channelID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged = append(m.purged, channelID)
	return 12, nil
}

func (m *mockClient) GetChannel(_, channelID string) (discord.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[channelID]
	if !ok {
		return discord.Channel{}, fmt.Errorf("channel %s not found", channelID)
	}
	return ch, nil
}

func (m *mockClient) GetCategory(_, categoryID string) (discord.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[categoryID]
	if !ok {
		return discord.Category{}, fmt.Errorf("category %s not found", categoryID)
	}
	return c, nil
}

func (m *mockClient) CreateChannel(input discord.CreateChannelInput) (discord.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ch := discord.Channel{ID: fmt.Sprintf("created-%d", m.nextID), Name: input.Name, Kind: input.Kind, ParentID: input.ParentID}
	m.created = append(m.created, input)
	m.channels[ch.ID] = ch
	if input.Kind == discord.ChannelKindCategory {
		m.categories[ch.ID] = discord.Category{ID: ch.ID, Name: ch.Name}
	} else {
		parent := m.categories[input.ParentID]
		parent.Channels = append(parent.Channels, ch)
		m.categories[input.ParentID] = parent
	}
	return ch, nil
}

func (m *mockClient) DeleteChannel(channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, channelID)
	return nil
}

func (m *mockClient) GetUserVoiceChannelID(_, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voiceChannels[userID], nil
}

func (m *mockClient) ListVoiceChannelMembers(_, channelID string) ([]discord.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]discord.Member(nil), m.members[channelID]...), nil
}

func (m *mockClient) MoveMember(_, userID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moves = append(m.moves, moveCall{userID: userID, channelID: channelID})
	m.voiceChannels[userID] = channelID
	return nil
}

func (m *mockClient) FindRoleByName(_, name string) (discord.Role, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[name]
	return r, ok, nil
}

func (m *mockClient) CreateRole(_, name string) (discord.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := discord.Role{ID: "role-" + strings.ToLower(name), Name: name}
	m.roles[name] = r
	return r, nil
}

func (m *mockClient) MemberHasRole(_, userID, roleID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memberRoles[userID+"/"+roleID], nil
}

func (m *mockClient) AddMemberRole(_, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roleErr != nil {
		return m.roleErr
	}
	m.roleCalls = append(m.roleCalls, "add:"+userID)
	m.memberRoles[userID+"/"+roleID] = true
	return nil
}

func (m *mockClient) RemoveMemberRole(_, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roleErr != nil {
		return m.roleErr
	}
	m.roleCalls = append(m.roleCalls, "remove:"+userID)
	delete(m.memberRoles, userID+"/"+roleID)
	return nil
}

func (m *mockClient) recordedMoves() []moveCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]moveCall(nil), m.moves...)
}

type mockResponder struct {
	ephemeral []string
	followups []string
	messages  []string
	rows      [][]discord.ComponentRow
	updates   []string
	deferred  int
}

func (r *mockResponder) RespondEphemeral(content string) error {
	r.ephemeral = append(r.ephemeral, content)
	return nil
}

func (r *mockResponder) RespondMessage(content string, rows []discord.ComponentRow) error {
	r.messages = append(r.messages, content)
	r.rows = append(r.rows, rows)
	return nil
}

func (r *mockResponder) DeferEphemeral() error {
	r.deferred++
	return nil
}

func (r *mockResponder) Followup(content string) error {
	r.followups = append(r.followups, content)
	return nil
}

func (r *mockResponder) UpdateMessage(content string, _ []discord.ComponentRow) error {
	r.updates = append(r.updates, content)
	return nil
}

// replies returns everything the user saw as an ephemeral reply or followup.
func (r *mockResponder) replies() []string {
	return append(append([]string(nil), r.ephemeral...), r.followups...)
}

type mockWebhook struct {
	mu     sync.Mutex
	events []webhook.GameEventPayload
}

func (m *mockWebhook) SendGameEvent(_ context.Context, payload webhook.GameEventPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, payload)
	return nil
}

func (m *mockWebhook) kinds() []webhook.EventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]webhook.EventKind, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Event)
	}
	return out
}

func newTestManager(t *testing.T) (*Manager, *mockClient, *mockWebhook) {
	t.Helper()
	cfg := &config.Config{
		TownSquareMarker:    "Town Square",
		GameChatMarker:      "game-chat",
		StorytellerRoleName: "Storyteller",
	}
	dc := newMockClient()
	store := &memStore{states: map[string]*repository.GuildState{}}
	games := game.NewDirectory(store, dc, nil, game.Options{TownSquareMarker: cfg.TownSquareMarker})
	t.Cleanup(games.Shutdown)
	wh := &mockWebhook{}
	return NewManager(cfg, dc, games, wh, nil), dc, wh
}

func slash(name, userID, userName string, opts map[string]string) (discord.SlashCommandEvent, *mockResponder) {
	r := &mockResponder{}
	return discord.SlashCommandEvent{
		GuildID:     "guild-1",
		ChannelID:   "cmd-channel",
		CommandName: name,
		UserID:      userID,
		UserName:    userName,
		Options:     opts,
		Responder:   r,
	}, r
}

func component(customID, userID string, values ...string) (discord.ComponentEvent, *mockResponder) {
	r := &mockResponder{}
	return discord.ComponentEvent{
		GuildID:   "guild-1",
		ChannelID: "panel-channel",
		MessageID: "panel-msg",
		CustomID:  customID,
		UserID:    userID,
		Values:    values,
		Responder: r,
	}, r
}

func seedLayout(dc *mockClient) {
	dc.categories["cat-day"] = discord.Category{ID: "cat-day", Name: "Alice's Day", Channels: []discord.Channel{
		{ID: "chat", Name: "game-chat", Kind: discord.ChannelKindText},
		{ID: "ts", Name: "Town Square", Kind: discord.ChannelKindVoice},
		{ID: "garden", Name: "Garden", Kind: discord.ChannelKindVoice},
	}}
	dc.categories["cat-night"] = discord.Category{ID: "cat-night", Name: "Alice's Night", Channels: []discord.Channel{
		{ID: "n1", Name: "Attic", Kind: discord.ChannelKindVoice},
		{ID: "n2", Name: "Cellar", Kind: discord.ChannelKindVoice},
	}}
	dc.members["lobby"] = []discord.Member{
		{ID: "st", DisplayName: "Alice"},
		{ID: "u2", DisplayName: "Bob"},
		{ID: "u3", DisplayName: "Carol"},
		{ID: "bot-self", DisplayName: "Town Square Bot", IsBot: true},
	}
}

// startLinkedGame runs /game and /link_to_game for Alice and returns the panel view id.
func startLinkedGame(t *testing.T, m *Manager, dc *mockClient) string {
	t.Helper()
	seedLayout(dc)

	event, r := slash(commandGame, "st", "Alice", nil)
	m.HandleSlashCommand(event)
	if len(r.rows) != 1 {
		t.Fatalf("expected a control panel, got %+v", r)
	}
	_, viewID, ok := parseCustomID(r.rows[0][0].Buttons[0].CustomID)
	if !ok {
		t.Fatalf("unexpected custom id: %q", r.rows[0][0].Buttons[0].CustomID)
	}

	event, r = slash(commandLinkToGame, "st", "Alice", map[string]string{
		optionPlayerRoom:    "lobby",
		optionDayCategory:   "cat-day",
		optionNightCategory: "cat-night",
	})
	m.HandleSlashCommand(event)
	if len(r.messages) != 1 || !strings.HasPrefix(r.messages[0], "Linked 3 players") {
		t.Fatalf("unexpected link response: %+v", r)
	}
	return viewID
}

func TestHandleSlashCommand_GamePostsPanel(t *testing.T) {
	m, _, wh := newTestManager(t)

	event, r := slash(commandGame, "st", "Alice", nil)
	m.HandleSlashCommand(event)

	if len(r.messages) != 1 || r.messages[0] != "Game commands for Alice's game" {
		t.Fatalf("unexpected panel message: %+v", r.messages)
	}
	rows := r.rows[0]
	if len(rows) != 2 || len(rows[0].Buttons) != 4 || rows[1].Select == nil {
		t.Fatalf("unexpected panel layout: %+v", rows)
	}
	for _, b := range rows[0].Buttons {
		if !strings.HasPrefix(b.CustomID, customIDPrefix+":") {
			t.Fatalf("unexpected custom id: %q", b.CustomID)
		}
	}
	if got := len(rows[1].Select.Options); got != 23 {
		t.Fatalf("expected 23 durations, got %d", got)
	}
	if !slices.Equal(wh.kinds(), []webhook.EventKind{webhook.EventGameStarted}) {
		t.Fatalf("unexpected webhook events: %v", wh.kinds())
	}

	event, r = slash(commandGame, "st", "Alice", nil)
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{messageAlreadyActive}) || len(r.messages) != 0 {
		t.Fatalf("expected already-active notice, got %+v", r)
	}
}

func TestHandleSlashCommand_LinkWithoutGame(t *testing.T) {
	m, dc, _ := newTestManager(t)
	seedLayout(dc)

	event, r := slash(commandLinkToGame, "st", "Alice", map[string]string{
		optionPlayerRoom:    "lobby",
		optionDayCategory:   "cat-day",
		optionNightCategory: "cat-night",
	})
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{messageNoActiveGame}) {
		t.Fatalf("unexpected response: %+v", r)
	}
}

func TestHandleSlashCommand_LinkSkipsBotsAndPublishes(t *testing.T) {
	m, dc, wh := newTestManager(t)
	startLinkedGame(t, m, dc)

	wh.mu.Lock()
	last := wh.events[len(wh.events)-1]
	wh.mu.Unlock()
	if last.Event != webhook.EventGameLinked || last.PlayerCount != 3 || last.OwnerName != "Alice" {
		t.Fatalf("unexpected link event: %+v", last)
	}
}

func TestHandleSlashCommand_LinkReportsMissingTownSquare(t *testing.T) {
	m, dc, _ := newTestManager(t)
	seedLayout(dc)
	dc.categories["cat-plain"] = discord.Category{ID: "cat-plain", Name: "Plain", Channels: []discord.Channel{
		{ID: "garden", Name: "Garden", Kind: discord.ChannelKindVoice},
	}}

	event, _ := slash(commandGame, "st", "Alice", nil)
	m.HandleSlashCommand(event)
	event, r := slash(commandLinkToGame, "st", "Alice", map[string]string{
		optionPlayerRoom:    "lobby",
		optionDayCategory:   "cat-plain",
		optionNightCategory: "cat-night",
	})
	m.HandleSlashCommand(event)

	if len(r.ephemeral) != 0 || len(r.messages) != 1 {
		t.Fatalf("expected a public link confirmation, got %+v", r)
	}
	want := linkedMessage(3, "Plain", "Alice's Night") + "\n" + missingTownSquareMessage("Town Square", "Plain")
	if r.messages[0] != want {
		t.Fatalf("unexpected link message: %q", r.messages[0])
	}

	reg, err := m.games.Registry(context.Background(), "guild-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, _ := reg.Get("st")
	if !g.Linked || !g.TownSquare.IsZero() {
		t.Fatalf("expected a linked game without town square, got %+v", g)
	}

	click, r := component(customID(actionDay, g.ViewID), "st")
	m.HandleComponent(click)
	if !slices.Equal(r.followups, []string{messageNotLinked}) {
		t.Fatalf("day must refuse without a town square: %+v", r)
	}
	if moves := dc.recordedMoves(); len(moves) != 0 {
		t.Fatalf("expected no moves, got %+v", moves)
	}
}

func TestHandleComponent_RejectsOtherUsers(t *testing.T) {
	m, dc, _ := newTestManager(t)
	viewID := startLinkedGame(t, m, dc)
	dc.members["n1"] = []discord.Member{{ID: "u2", DisplayName: "Bob"}}

	event, r := component(customID(actionDay, viewID), "intruder")
	m.HandleComponent(event)

	if !slices.Equal(r.replies(), []string{messageNotYourPanel}) {
		t.Fatalf("unexpected response: %+v", r)
	}
	if moves := dc.recordedMoves(); len(moves) != 0 {
		t.Fatalf("expected no moves, got %+v", moves)
	}
}

func TestHandleComponent_DayAndNight(t *testing.T) {
	m, dc, _ := newTestManager(t)
	viewID := startLinkedGame(t, m, dc)
	dc.members["n1"] = []discord.Member{{ID: "u2", DisplayName: "Bob"}}
	dc.members["n2"] = []discord.Member{{ID: "u3", DisplayName: "Carol"}, {ID: "st", DisplayName: "Alice"}}

	event, r := component(customID(actionDay, viewID), "st")
	m.HandleComponent(event)
	if r.deferred != 1 || !slices.Equal(r.followups, []string{"Moved 2 players to the Town Square."}) {
		t.Fatalf("unexpected day response: %+v", r)
	}
	want := []moveCall{{userID: "u2", channelID: "ts"}, {userID: "u3", channelID: "ts"}}
	if !slices.Equal(dc.recordedMoves(), want) {
		t.Fatalf("unexpected moves: %+v", dc.recordedMoves())
	}

	dc.members["ts"] = []discord.Member{
		{ID: "st", DisplayName: "Alice"},
		{ID: "u2", DisplayName: "Bob"},
		{ID: "u3", DisplayName: "Carol"},
		{ID: "u4", DisplayName: "Dan"},
	}
	event, r = component(customID(actionNight, viewID), "st")
	m.HandleComponent(event)
	if !slices.Equal(r.followups, []string{insufficientRoomsMessage(3, 2)}) {
		t.Fatalf("unexpected night response: %+v", r)
	}
	if len(dc.recordedMoves()) != len(want) {
		t.Fatalf("night must not move anyone when rooms run out: %+v", dc.recordedMoves())
	}
}

func TestHandleComponent_TimerStartAndCancel(t *testing.T) {
	m, dc, _ := newTestManager(t)
	viewID := startLinkedGame(t, m, dc)

	event, r := component(customID(actionTimer, viewID), "st", "45")
	m.HandleComponent(event)
	if !slices.Equal(r.ephemeral, []string{messageInvalidDuration}) {
		t.Fatalf("unexpected response: %+v", r)
	}

	event, r = component(customID(actionTimer, viewID), "st", "120")
	m.HandleComponent(event)
	if !slices.Equal(r.ephemeral, []string{"Will return players to Town Square after 2.0 minutes."}) {
		t.Fatalf("unexpected response: %+v", r)
	}

	event, r = component(customID(actionTimer, viewID), "st", "150")
	m.HandleComponent(event)
	if !slices.Equal(r.ephemeral, []string{messageTimerRunning}) {
		t.Fatalf("unexpected response: %+v", r)
	}

	event, r = component(customID(actionCancelTimer, viewID), "st")
	m.HandleComponent(event)
	if !slices.Equal(r.ephemeral, []string{messageTimerCancelled}) {
		t.Fatalf("unexpected response: %+v", r)
	}

	event, r = component(customID(actionCancelTimer, viewID), "st")
	m.HandleComponent(event)
	if !slices.Equal(r.ephemeral, []string{messageNoTimer}) {
		t.Fatalf("unexpected response: %+v", r)
	}
}

func TestHandleComponent_QuitEndsGame(t *testing.T) {
	m, dc, wh := newTestManager(t)
	viewID := startLinkedGame(t, m, dc)

	event, r := slash(commandStoryteller, "st", "Alice", nil)
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{"You now have the Storyteller role."}) {
		t.Fatalf("unexpected st response: %+v", r)
	}

	click, r := component(customID(actionQuit, viewID), "st")
	m.HandleComponent(click)
	if !slices.Equal(r.updates, []string{messageGameEnded}) {
		t.Fatalf("expected panel to close, got %+v", r)
	}
	if !slices.Equal(dc.roleCalls, []string{"add:st", "remove:st"}) {
		t.Fatalf("unexpected role calls: %v", dc.roleCalls)
	}
	kinds := wh.kinds()
	if kinds[len(kinds)-1] != webhook.EventGameEnded {
		t.Fatalf("expected game ended event, got %v", kinds)
	}

	click, r = component(customID(actionDay, viewID), "st")
	m.HandleComponent(click)
	if !slices.Equal(r.replies(), []string{messageNotYourPanel}) {
		t.Fatalf("stale panel must not authorize: %+v", r)
	}
}

func TestHandleComponent_QuitSurvivesForbiddenRoleRemoval(t *testing.T) {
	m, dc, _ := newTestManager(t)
	viewID := startLinkedGame(t, m, dc)

	event, _ := slash(commandStoryteller, "st", "Alice", nil)
	m.HandleSlashCommand(event)
	dc.roleErr = fmt.Errorf("remove role: %w", discord.ErrForbidden)

	click, r := component(customID(actionQuit, viewID), "st")
	m.HandleComponent(click)
	if !slices.Equal(r.updates, []string{messageGameEnded}) {
		t.Fatalf("expected game to end despite role error, got %+v", r)
	}
}

func TestHandleSlashCommand_StorytellerToggle(t *testing.T) {
	m, dc, _ := newTestManager(t)
	dc.roles["Storyteller"] = discord.Role{ID: "existing-role", Name: "Storyteller"}

	event, r := slash(commandStoryteller, "u1", "Bob", nil)
	m.HandleSlashCommand(event)
	event, r2 := slash(commandStoryteller, "u1", "Bob", nil)
	m.HandleSlashCommand(event)

	if !slices.Equal(r.ephemeral, []string{"You now have the Storyteller role."}) {
		t.Fatalf("unexpected first response: %+v", r)
	}
	if !slices.Equal(r2.ephemeral, []string{"The Storyteller role was removed from you."}) {
		t.Fatalf("unexpected second response: %+v", r2)
	}
	if dc.memberRoles["u1/existing-role"] {
		t.Fatal("role should be removed")
	}
}

func TestHandleSlashCommand_CreateAndDeleteGameChannels(t *testing.T) {
	m, dc, _ := newTestManager(t)

	event, r := slash(commandCreateGameChannels, "st", "Alice", map[string]string{optionPlayerCount: "21"})
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{fmt.Sprintf(messagePlayerCountInvalid, minPlayerCount, maxPlayerCount)}) {
		t.Fatalf("unexpected response: %+v", r)
	}

	event, r = slash(commandCreateGameChannels, "st", "Alice", map[string]string{optionPlayerCount: "3"})
	m.HandleSlashCommand(event)
	if r.deferred != 1 || !slices.Equal(r.followups, []string{channelsCreatedMessage("Alice's Day", "Alice's Night", 3)}) {
		t.Fatalf("unexpected response: %+v", r)
	}
	if len(dc.created) != 7 {
		t.Fatalf("expected 7 channels, got %d", len(dc.created))
	}
	names := map[string]bool{}
	for _, in := range dc.created[3:] {
		if !in.HiddenFromEveryone || !slices.Equal(in.VisibleToRoleIDs, []string{"role-storyteller"}) {
			t.Fatalf("night channel must be hidden: %+v", in)
		}
		names[in.Name] = true
	}
	for _, in := range dc.created[:3] {
		if in.HiddenFromEveryone {
			t.Fatalf("day channel must be visible: %+v", in)
		}
	}
	if len(names) != 4 {
		t.Fatalf("expected distinct night room names, got %v", names)
	}

	event, r = slash(commandDeleteGameChannels, "st", "Alice", map[string]string{
		optionDayCategory:   "created-1",
		optionNightCategory: "not-ours",
	})
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{messageNotBotChannel}) || len(dc.deleted) != 0 {
		t.Fatalf("foreign category must be refused: %+v deleted=%v", r, dc.deleted)
	}

	event, r = slash(commandDeleteGameChannels, "st", "Alice", map[string]string{
		optionDayCategory:   "created-1",
		optionNightCategory: "created-4",
	})
	m.HandleSlashCommand(event)
	if !slices.Equal(r.followups, []string{channelsDeletedMessage(7)}) || len(dc.deleted) != 7 {
		t.Fatalf("unexpected delete result: %+v deleted=%v", r, dc.deleted)
	}
	if dc.deleted[2] != "created-1" {
		t.Fatalf("category must be deleted after its children: %v", dc.deleted)
	}
}

func TestHandleSlashCommand_ClearChannelOnlyBotChannels(t *testing.T) {
	m, dc, _ := newTestManager(t)

	event, r := slash(commandClearChannel, "st", "Alice", map[string]string{optionChannel: "general"})
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{messageNotBotChannel}) || len(dc.purged) != 0 {
		t.Fatalf("unexpected response: %+v", r)
	}

	event, _ = slash(commandCreateGameChannels, "st", "Alice", map[string]string{optionPlayerCount: "1"})
	m.HandleSlashCommand(event)

	event, r = slash(commandClearChannel, "st", "Alice", map[string]string{optionChannel: "created-3"})
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{messageNotTextChannel}) || len(dc.purged) != 0 {
		t.Fatalf("voice channels must not be purged: %+v purged=%v", r, dc.purged)
	}

	event, r = slash(commandClearChannel, "st", "Alice", map[string]string{optionChannel: "created-2"})
	m.HandleSlashCommand(event)
	if !slices.Equal(r.followups, []string{channelClearedMessage("created-2", 12)}) {
		t.Fatalf("unexpected response: %+v", r)
	}
	if !slices.Equal(dc.purged, []string{"created-2"}) {
		t.Fatalf("unexpected purges: %v", dc.purged)
	}
}

func TestSpectate_FollowsTargetAcrossChannels(t *testing.T) {
	m, dc, _ := newTestManager(t)
	dc.voiceChannels["target"] = "v1"
	dc.voiceChannels["fan"] = "v2"

	event, r := slash(commandSpectate, "fan", "Fan", map[string]string{optionTarget: "fan"})
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{messageSelfSpectate}) {
		t.Fatalf("unexpected response: %+v", r)
	}

	event, r = slash(commandSpectate, "fan", "Fan", map[string]string{optionTarget: "target"})
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{spectatingMessage("target")}) {
		t.Fatalf("unexpected response: %+v", r)
	}
	if !slices.Equal(dc.recordedMoves(), []moveCall{{userID: "fan", channelID: "v1"}}) {
		t.Fatalf("spectator should join target at once: %+v", dc.recordedMoves())
	}

	m.HandleVoiceStateUpdate(discord.VoiceStateEvent{GuildID: "guild-1", UserID: "target", BeforeChannelID: "v1", AfterChannelID: "v3"})
	if moves := dc.recordedMoves(); len(moves) != 2 || moves[1] != (moveCall{userID: "fan", channelID: "v3"}) {
		t.Fatalf("spectator should follow: %+v", moves)
	}

	event, r = slash(commandStopSpectate, "fan", "Fan", nil)
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{stoppedSpectatingMessage("target")}) {
		t.Fatalf("unexpected response: %+v", r)
	}
	m.HandleVoiceStateUpdate(discord.VoiceStateEvent{GuildID: "guild-1", UserID: "target", BeforeChannelID: "v3", AfterChannelID: "v4"})
	if len(dc.recordedMoves()) != 2 {
		t.Fatalf("no moves expected after stop: %+v", dc.recordedMoves())
	}

	event, r = slash(commandStopSpectate, "fan", "Fan", nil)
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{messageNotSpectating}) {
		t.Fatalf("unexpected response: %+v", r)
	}
}

func TestHandleSlashCommand_HelpPages(t *testing.T) {
	m, _, _ := newTestManager(t)

	event, r := slash(commandHelp, "u1", "Bob", map[string]string{optionPage: "2"})
	m.HandleSlashCommand(event)
	if len(r.ephemeral) != 1 || !strings.Contains(r.ephemeral[0], "(2/2)") {
		t.Fatalf("unexpected help page: %+v", r.ephemeral)
	}

	event, r = slash(commandHelp, "u1", "Bob", nil)
	m.HandleSlashCommand(event)
	if len(r.ephemeral) != 1 || !strings.Contains(r.ephemeral[0], "(1/2)") {
		t.Fatalf("unexpected default help page: %+v", r.ephemeral)
	}
}

func TestHandleSlashCommand_WrongGuildAndUnknownCommand(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.cfg.DiscordGuildID = "guild-2"

	event, r := slash(commandGame, "st", "Alice", nil)
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{messageWrongGuild}) {
		t.Fatalf("unexpected response: %+v", r)
	}

	m.cfg.DiscordGuildID = ""
	event, r = slash("dance", "st", "Alice", nil)
	m.HandleSlashCommand(event)
	if !slices.Equal(r.ephemeral, []string{messageUnknownCommand}) {
		t.Fatalf("unexpected response: %+v", r)
	}
}

func TestSlashCommandDefinitions_CoverHandlers(t *testing.T) {
	m, _, _ := newTestManager(t)
	handlers := m.commandHandlers()
	defs := SlashCommandDefinitions()
	if len(defs) != len(handlers) {
		t.Fatalf("expected %d definitions, got %d", len(handlers), len(defs))
	}
	for _, def := range defs {
		if _, ok := handlers[def.Name]; !ok {
			t.Fatalf("definition %q has no handler", def.Name)
		}
	}
}
