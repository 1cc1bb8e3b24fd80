// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/parley-tui/internal/auth"
	"github.com/jeranaias/parley-tui/internal/codec"
	"github.com/jeranaias/parley-tui/internal/commands"
	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/identity"
	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/protocol"
	"github.com/jeranaias/parley-tui/internal/registry"
	"github.com/jeranaias/parley-tui/internal/session"
	"github.com/jeranaias/parley-tui/internal/transport"
)

var (
	// ErrMuted is returned when sending chat while the local user is muted.
	ErrMuted = errors.New("you are muted")
	// ErrEmptyMessage is returned for blank chat text.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrInvalidChannel is returned for channel ids below 1.
	ErrInvalidChannel = errors.New("invalid channel")
	// ErrNoChannel is returned when an action needs an active channel.
	ErrNoChannel = errors.New("no active channel")
)

// Options configures a Client. Config is required.
type Options struct {
	Config *config.Config
	Logger *zap.Logger

	// Dialer overrides the WebSocket dialer built from Config.
	Dialer transport.Dialer
	// Clock overrides time.Now for the codec, the reducer and the throttle.
	Clock func() time.Time
	// Presenters are registered before the registry is sealed.
	Presenters map[protocol.Type]registry.PresentFunc
}

// View is everything the terminal view needs for one render.
type View struct {
	session.View
	Status   transport.Status
	Identity identity.Identity
}

// Client is the chat session facade. It is safe for concurrent use.
type Client struct {
	cfg *config.Config
	log *zap.Logger

	registry  *registry.Registry
	codec     *codec.Codec
	manager   *transport.Manager
	state     *session.State
	store     *auth.Store
	identity  *identity.Provider
	interp    *commands.Interpreter
	completer *commands.Completer
	throttle  *session.TypingThrottle

	mu       sync.Mutex
	channel  int
	wasReady bool // handshake seen
	ready    bool // handshake seen and channels restored
	onChange func()
	cancel   context.CancelFunc
}

// New builds a disconnected client.
func New(opts Options) (*Client, error) {
	if opts.Config == nil {
		return nil, errors.New("client: config is required")
	}
	cfg := opts.Config
	log := logging.OrNop(opts.Logger)

	reg := registry.Default(log)
	for t, fn := range opts.Presenters {
		if err := reg.RegisterPresenter(t, fn); err != nil {
			return nil, fmt.Errorf("register presenter %s: %w", t, err)
		}
	}
	reg.Seal()

	var codecOpts []codec.Option
	var stateOpts []session.Option
	if opts.Clock != nil {
		codecOpts = append(codecOpts, codec.WithClock(opts.Clock))
		stateOpts = append(stateOpts, session.WithClock(opts.Clock))
	}

	store, err := auth.NewStore(cfg.Auth.TokenFile, log)
	if err != nil {
		return nil, err
	}
	ident := identity.NewProvider(cfg.Auth.IdentityFile, log)

	sessCfg := cfg.SessionConfig()
	state, err := session.New(sessCfg, ident, log, stateOpts...)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c := &Client{
		cfg:      cfg,
		log:      log.Named("client"),
		registry: reg,
		codec:    codec.New(reg, codecOpts...),
		state:    state,
		store:    store,
		identity: ident,
		throttle: session.NewTypingThrottle(sessCfg.TypingThrottle, opts.Clock),
		channel:  cfg.UI.DefaultChannel,
	}

	c.interp = commands.NewInterpreter(commands.NewRegistry())
	c.completer = commands.NewCompleter(c.interp.Registry())
	c.completer.MembersFn = c.memberNames
	c.completer.ChannelsFn = c.state.JoinedChannels

	var dialer transport.Dialer = cfg.Dialer()
	if opts.Dialer != nil {
		dialer = opts.Dialer
	}
	c.manager = transport.NewManager(cfg.TransportConfig(), dialer, c.codec, transport.Options{
		Logger:      log,
		Credentials: store,
		Identity:    ident,
		OnEnvelope:  c.route,
		OnStatus:    c.statusChanged,
	})

	state.OnChange(c.changed)
	ident.OnChange(func(identity.Identity) { c.changed() })
	return c, nil
}

// OnChange sets the callback invoked after any change to the session,
// connection status or identity. It runs on arbitrary goroutines.
func (c *Client) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Client) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start connects and watches the token file until Close. A failed first
// dial is logged and retried in the background.
func (c *Client) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	if err := c.store.Watch(ctx, c.tokenChanged); err != nil {
		c.log.Warn("token watch unavailable", zap.Error(err))
	}
	if err := c.manager.Start(ctx); err != nil {
		c.log.Warn("initial connect failed", zap.Error(err))
	}
	return nil
}

// Close disconnects and releases timers.
func (c *Client) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.manager.Disconnect()
	if cancel != nil {
		c.log.Info("session closed", c.state.Stats()...)
	}
	c.state.Close()
}

// tokenChanged runs when another process logs in or out.
func (c *Client) tokenChanged() {
	c.log.Info("credentials changed externally, reconnecting")
	c.manager.Reconnect()
}

// route is the manager's inbound sink.
func (c *Client) route(env *protocol.Envelope) {
	if env.Type == protocol.TypeHello {
		return
	}
	c.state.Apply(env)
}

func (c *Client) statusChanged(st transport.Status) {
	c.mu.Lock()
	rejoin := st.Ready && !c.wasReady
	c.wasReady = st.Ready
	if !st.Ready {
		c.ready = false
	}
	c.mu.Unlock()

	if rejoin {
		c.rejoin()
		c.mu.Lock()
		c.ready = c.wasReady
		c.mu.Unlock()
	}
	c.changed()
}

// rejoin restores channel membership after a handshake. Membership belongs
// to the server-side connection, so every new connection starts with none.
func (c *Client) rejoin() {
	ids := c.state.JoinedChannels()
	if ch := c.Channel(); ch > 0 && !c.state.Joined(ch) {
		ids = append(ids, ch)
	}
	for _, id := range ids {
		if err := c.manager.Send(protocol.ChannelJoin{ChannelRef: protocol.ChannelRef{ChannelID: id}}); err != nil {
			c.log.Warn("rejoin failed", zap.Int("channel", id), zap.Error(err))
			continue
		}
		c.state.MarkJoined(id)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Channel returns the active channel id, or 0.
func (c *Client) Channel() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// SetChannel switches the active channel without joining it.
func (c *Client) SetChannel(id int) error {
	if id < 1 {
		return ErrInvalidChannel
	}
	c.mu.Lock()
	c.channel = id
	c.mu.Unlock()
	c.changed()
	return nil
}

// View returns a snapshot of the active channel and the connection.
func (c *Client) View() View {
	return View{
		View:     c.state.View(c.Channel()),
		Status:   c.manager.Status(),
		Identity: c.identity.Current(),
	}
}

// Ready reports whether the handshake completed and channel membership
// was restored, so chat sent now lands in a joined channel.
func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Status returns the connection status.
func (c *Client) Status() transport.Status {
	return c.manager.Status()
}

// Registry returns the sealed handler registry.
func (c *Client) Registry() *registry.Registry {
	return c.registry
}

// Commands returns the slash command registry.
func (c *Client) Commands() *commands.Registry {
	return c.interp.Registry()
}

// Completer returns the slash command completer, bound to live rosters.
func (c *Client) Completer() *commands.Completer {
	return c.completer
}

// Identity returns the identity provider.
func (c *Client) Identity() *identity.Provider {
	return c.identity
}

// Session returns the session reducer.
func (c *Client) Session() *session.State {
	return c.state
}

func (c *Client) memberNames() []string {
	members := c.state.Members(c.Channel())
	names := make([]string, 0, len(members))
	for _, m := range members {
		if !c.identity.IsSelf(m.Username) {
			names = append(names, m.Username)
		}
	}
	return names
}

// =============================================================================
// OUTBOUND
// =============================================================================

// SendChat sends text to the active channel.
func (c *Client) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if c.state.IsMuted() {
		return ErrMuted
	}
	ch := c.Channel()
	if ch < 1 {
		return ErrNoChannel
	}
	return c.manager.Send(protocol.ChatSend{ChannelID: ch, Content: text})
}

// Submit handles a line from the composer. Slash commands are interpreted
// and their payloads sent; anything else is chat. The returned result tells
// the view about help and quit requests.
func (c *Client) Submit(input string) (commands.Result, error) {
	if !commands.IsCommand(input) {
		return commands.Result{Action: commands.ActionSend}, c.SendChat(input)
	}

	res, err := c.interp.Interpret(input, commands.Context{Channel: c.Channel()})
	if err != nil {
		return res, err
	}
	if res.Action != commands.ActionSend {
		return res, nil
	}
	switch p := res.Payload.(type) {
	case protocol.ChannelJoin:
		return res, c.Join(p.ChannelID)
	case protocol.ChannelLeave:
		return res, c.Leave(p.ChannelID)
	}
	if ch, ok := res.Payload.(protocol.ChannelScoped); ok && ch.Channel() < 1 {
		return res, ErrNoChannel
	}
	return res, c.manager.Send(res.Payload)
}

// Compose reports composer activity. It sends a typing signal when the
// throttle allows one; sending a message does not reopen the window.
func (c *Client) Compose(text string) {
	ch := c.Channel()
	if ch < 1 || c.state.IsMuted() || !c.throttle.Allow(ch, text) {
		return
	}
	if err := c.manager.Send(protocol.ChatTyping{ChannelID: ch}); err != nil {
		c.log.Debug("typing signal not sent", zap.Error(err))
	}
}

// Join joins channel id and makes it active.
func (c *Client) Join(id int) error {
	if id < 1 {
		return ErrInvalidChannel
	}
	if err := c.manager.Send(protocol.ChannelJoin{ChannelRef: protocol.ChannelRef{ChannelID: id}}); err != nil {
		return err
	}
	c.state.MarkJoined(id)
	return c.SetChannel(id)
}

// Leave leaves channel id (the active channel when 0).
func (c *Client) Leave(id int) error {
	if id == 0 {
		id = c.Channel()
	}
	if id < 1 {
		return ErrInvalidChannel
	}
	if err := c.manager.Send(protocol.ChannelLeave{ChannelRef: protocol.ChannelRef{ChannelID: id}}); err != nil {
		return err
	}
	c.state.MarkLeft(id)
	return nil
}

// React adds or removes emote on a message in the active channel.
func (c *Client) React(messageID, emote string, add bool) error {
	ch := c.Channel()
	if ch < 1 {
		return ErrNoChannel
	}
	if messageID == "" || emote == "" {
		return errors.New("reaction needs a message and an emote")
	}
	r := protocol.Reaction{Emote: emote, MessageID: messageID, ChannelID: ch}
	if add {
		return c.manager.Send(protocol.ReactAdd{Reaction: r})
	}
	return c.manager.Send(protocol.ReactRemove{Reaction: r})
}

// =============================================================================
// CREDENTIALS
// =============================================================================

// Login stores token and reconnects so the server sees the new identity.
func (c *Client) Login(token string) error {
	if err := c.store.SetToken(token); err != nil {
		return err
	}
	c.manager.Reconnect()
	return nil
}

// Logout forgets the token and identity and reconnects as a guest.
func (c *Client) Logout() error {
	if err := c.store.ClearToken(); err != nil {
		return err
	}
	if err := c.identity.Reset(); err != nil {
		c.log.Warn("could not reset identity", zap.Error(err))
	}
	c.manager.Reconnect()
	return nil
}
