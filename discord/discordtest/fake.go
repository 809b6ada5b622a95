// Package discordtest provides an in-memory chat platform for tests.
package discordtest

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"moddingway/model"
)

// DM is a direct message captured by the fake.
type DM struct {
	UserID string
	Text   string
}

// Ban is a ban captured by the fake.
type Ban struct {
	UserID        string
	Reason        string
	DeleteHistory bool
}

// Log is a moderation log post captured by the fake.
type Log struct {
	ChannelID   string
	Title       string
	Description string
}

// Sent is a plain channel message captured by the fake.
type Sent struct {
	ChannelID string
	Content   string
}

// Posted is an embed captured by the fake, with the message id it was given.
type Posted struct {
	ChannelID string
	MessageID string
	Embed     model.Embed
}

// Platform is a concurrency-safe fake of every chat-platform interface.
// Error fields, when set, are returned by the matching call.
type Platform struct {
	mu sync.Mutex

	members map[string]map[string]bool

	Threads  map[string][]model.Thread
	Starters map[string]*model.Message
	History  map[string][]model.Message

	DMs            []DM
	Bans           []Ban
	Logs           []Log
	DeletedThreads []string
	DeletedMsgs    []string
	Unbans         []string
	Sent           []Sent
	Posted         []Posted

	// Slowmode holds the per-user interval of each channel in seconds.
	Slowmode map[string]int

	DMErr         error
	AssignRoleErr error
	RoleErr       map[string]error
	RemoveRoleErr error
	BanErr        error
	GetMemberErr  error
	ListErr       error
	DeleteErr     map[string]error
	UnbanErr      error
	ChannelErr    error
	SendErr       error

	nextMessageID int
}

var (
	_ model.Platform       = (*Platform)(nil)
	_ model.ThreadSource   = (*Platform)(nil)
	_ model.MessageSource  = (*Platform)(nil)
	_ model.ModLogger      = (*Platform)(nil)
	_ model.Unbanner       = (*Platform)(nil)
	_ model.ChannelManager = (*Platform)(nil)
)

func New() *Platform {
	return &Platform{
		members:   make(map[string]map[string]bool),
		Threads:   make(map[string][]model.Thread),
		Starters:  make(map[string]*model.Message),
		History:   make(map[string][]model.Message),
		DeleteErr: make(map[string]error),
		RoleErr:   make(map[string]error),
		Slowmode:  make(map[string]int),
	}
}

// AddMember puts a member with the given roles in the guild.
func (p *Platform) AddMember(userID string, roleIDs ...string) *model.Member {
	p.mu.Lock()
	roles := make(map[string]bool, len(roleIDs))
	for _, r := range roleIDs {
		roles[r] = true
	}
	p.members[userID] = roles
	p.mu.Unlock()
	return p.Member(userID)
}

// RemoveMember makes the member leave the guild.
func (p *Platform) RemoveMember(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.members, userID)
}

// Member returns the current state of a member, or nil if absent.
func (p *Platform) Member(userID string) *model.Member {
	p.mu.Lock()
	defer p.mu.Unlock()
	roles, ok := p.members[userID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(roles))
	for r := range roles {
		ids = append(ids, r)
	}
	sort.Strings(ids)
	return &model.Member{UserID: userID, Username: "user" + userID, DisplayName: "user" + userID, RoleIDs: ids}
}

// HasRole reports whether the member currently holds roleID.
func (p *Platform) HasRole(userID, roleID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.members[userID][roleID]
}

func (p *Platform) SendDirectMessage(_ context.Context, userID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.DMErr != nil {
		return p.DMErr
	}
	p.DMs = append(p.DMs, DM{UserID: userID, Text: text})
	return nil
}

func (p *Platform) AssignRole(_ context.Context, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.AssignRoleErr != nil {
		return p.AssignRoleErr
	}
	if err := p.RoleErr[roleID]; err != nil {
		return err
	}
	roles, ok := p.members[userID]
	if !ok {
		return &model.PlatformError{Op: "add role", Kind: model.KindNotFound}
	}
	roles[roleID] = true
	return nil
}

func (p *Platform) RemoveRole(_ context.Context, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.RemoveRoleErr != nil {
		return p.RemoveRoleErr
	}
	roles, ok := p.members[userID]
	if !ok {
		return &model.PlatformError{Op: "remove role", Kind: model.KindNotFound}
	}
	delete(roles, roleID)
	return nil
}

func (p *Platform) Ban(_ context.Context, userID, reason string, deleteHistory bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.BanErr != nil {
		return p.BanErr
	}
	p.Bans = append(p.Bans, Ban{UserID: userID, Reason: reason, DeleteHistory: deleteHistory})
	delete(p.members, userID)
	return nil
}

func (p *Platform) Unban(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.UnbanErr != nil {
		return p.UnbanErr
	}
	p.Unbans = append(p.Unbans, userID)
	return nil
}

func (p *Platform) GetMember(_ context.Context, userID string) (*model.Member, error) {
	p.mu.Lock()
	err := p.GetMemberErr
	_, ok := p.members[userID]
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &model.PlatformError{Op: "get member", Kind: model.KindNotFound}
	}
	return p.Member(userID), nil
}

func (p *Platform) ForumThreads(_ context.Context, forumID string) ([]model.Thread, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ListErr != nil {
		return nil, p.ListErr
	}
	return append([]model.Thread(nil), p.Threads[forumID]...), nil
}

func (p *Platform) StarterMessage(_ context.Context, threadID string) (*model.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg, ok := p.Starters[threadID]
	if !ok {
		return nil, &model.PlatformError{Op: "get starter message", Kind: model.KindNotFound}
	}
	return msg, nil
}

func (p *Platform) DeleteThread(_ context.Context, threadID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.DeleteErr[threadID]; err != nil {
		return err
	}
	p.DeletedThreads = append(p.DeletedThreads, threadID)
	return nil
}

func (p *Platform) ChannelHistory(_ context.Context, channelID string) ([]model.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ListErr != nil {
		return nil, p.ListErr
	}
	return append([]model.Message(nil), p.History[channelID]...), nil
}

func (p *Platform) DeleteMessage(_ context.Context, _, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.DeleteErr[messageID]; err != nil {
		return err
	}
	p.DeletedMsgs = append(p.DeletedMsgs, messageID)
	return nil
}

func (p *Platform) PostLog(_ context.Context, channelID, title, description string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Logs = append(p.Logs, Log{ChannelID: channelID, Title: title, Description: description})
	return nil
}

// DMCount returns how many direct messages were delivered.
func (p *Platform) DMCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.DMs)
}

func (p *Platform) SlowmodeDelay(_ context.Context, channelID string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ChannelErr != nil {
		return 0, p.ChannelErr
	}
	return p.Slowmode[channelID], nil
}

func (p *Platform) SetSlowmode(_ context.Context, channelID string, seconds int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ChannelErr != nil {
		return p.ChannelErr
	}
	p.Slowmode[channelID] = seconds
	return nil
}

func (p *Platform) SendMessage(_ context.Context, channelID, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SendErr != nil {
		return p.SendErr
	}
	p.Sent = append(p.Sent, Sent{ChannelID: channelID, Content: content})
	return nil
}

func (p *Platform) PostEmbed(_ context.Context, channelID string, embed model.Embed) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SendErr != nil {
		return "", p.SendErr
	}
	p.nextMessageID++
	id := "msg" + strconv.Itoa(p.nextMessageID)
	p.Posted = append(p.Posted, Posted{ChannelID: channelID, MessageID: id, Embed: embed})
	return id, nil
}
