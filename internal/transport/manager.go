// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/jeranaias/parley-tui/internal/codec"
	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/protocol"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds connection manager settings.
type Config struct {
	URL string

	// HelloTimeout closes a connection whose HELLO goes unanswered. Zero
	// waits forever.
	HelloTimeout time.Duration

	// Reconnect backoff. A multiplier of 1 with zero jitter gives a fixed
	// delay of ReconnectDelay.
	ReconnectDelay      time.Duration
	ReconnectMaxDelay   time.Duration
	ReconnectMultiplier float64
	ReconnectJitter     float64
	// MaxReconnectAttempts of zero retries forever.
	MaxReconnectAttempts int

	// ExplicitReconnectDelay separates the close and the new connect in
	// Reconnect so the server observes the close first.
	ExplicitReconnectDelay time.Duration

	// QueueEnabled holds sends made before the handshake completes and
	// flushes them once it does.
	QueueEnabled bool
	QueueSize    int
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() Config {
	return Config{
		URL:                    "ws://localhost:8000/ws",
		HelloTimeout:           10 * time.Second,
		ReconnectDelay:         3 * time.Second,
		ReconnectMaxDelay:      30 * time.Second,
		ReconnectMultiplier:    2,
		ReconnectJitter:        0.2,
		ExplicitReconnectDelay: 500 * time.Millisecond,
		QueueEnabled:           true,
		QueueSize:              64,
	}
}

// CredentialSource supplies the bearer token sent with HELLO.
type CredentialSource interface {
	Token() (string, bool)
}

// TokenSaver is optionally implemented by a CredentialSource to persist a
// token issued in the HELLO response.
type TokenSaver interface {
	SaveToken(token string) error
}

// IdentitySink receives the identity assigned by the server.
type IdentitySink interface {
	OnIdentityAssigned(username string, isGuest bool)
}

// Options wires the manager to its collaborators. All fields are optional.
type Options struct {
	Logger      *zap.Logger
	Credentials CredentialSource
	Identity    IdentitySink
	// OnEnvelope receives every decoded inbound envelope, HELLO included,
	// in arrival order.
	OnEnvelope func(env *protocol.Envelope)
	// OnStatus is called after every state change.
	OnStatus func(st Status)
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the single live connection.
type Manager struct {
	cfg    Config
	dialer Dialer
	codec  *codec.Codec
	opts   Options
	log    *zap.Logger

	mu          sync.Mutex
	writeMu     sync.Mutex
	conn        Conn
	gen         uint64 // bumped whenever the live connection is detached
	state       State
	dialing     bool
	connected   bool
	ready       bool
	intentional bool
	attempt     int
	lastErr     error
	backoff     *backoff.ExponentialBackOff
	retryTimer  *time.Timer
	helloTimer  *time.Timer
	queue       [][]byte
}

// NewManager creates a disconnected manager.
func NewManager(cfg Config, dialer Dialer, c *codec.Codec, opts Options) *Manager {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	m := &Manager{
		cfg:    cfg,
		dialer: dialer,
		codec:  c,
		opts:   opts,
		log:    logging.OrNop(opts.Logger).Named("transport"),
		state:  StateDisconnected,
	}
	m.backoff = newBackoff(cfg)
	return m
}

func newBackoff(cfg Config) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.ReconnectDelay
	b.MaxInterval = cfg.ReconnectMaxDelay
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = b.InitialInterval
	}
	b.Multiplier = cfg.ReconnectMultiplier
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	b.RandomizationFactor = cfg.ReconnectJitter
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// =============================================================================
// STATUS
// =============================================================================

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// IsConnected reports whether a transport is open.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// IsReady reports whether the HELLO handshake has completed.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *Manager) statusLocked() Status {
	return Status{
		State:     m.state,
		Connected: m.connected,
		Ready:     m.ready,
		Attempt:   m.attempt,
		QueueLen:  len(m.queue),
		Err:       m.lastErr,
	}
}

func (m *Manager) notify(st Status) {
	if m.opts.OnStatus != nil {
		m.opts.OnStatus(st)
	}
}

// =============================================================================
// CONNECT / DISCONNECT
// =============================================================================

// Start clears any previous intentional disconnect and connects.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	m.intentional = false
	m.attempt = 0
	m.backoff.Reset()
	m.mu.Unlock()
	return m.Connect(ctx)
}

// Connect opens a transport and sends HELLO. It is a no-op while a
// transport is open or a dial is in flight. A failed dial is returned and,
// unless the manager was disconnected on purpose, retried later.
func (m *Manager) Connect(ctx context.Context) error {
	return m.connect(ctx, false)
}

func (m *Manager) connect(ctx context.Context, fromRetry bool) error {
	m.mu.Lock()
	if m.conn != nil || m.dialing || (fromRetry && m.intentional) {
		m.mu.Unlock()
		return nil
	}
	m.stopRetryLocked()
	m.dialing = true
	m.state = StateConnecting
	gen := m.gen
	st := m.statusLocked()
	m.mu.Unlock()
	m.notify(st)

	m.log.Debug("dialing", zap.String("url", m.cfg.URL))
	conn, err := m.dialer.Dial(ctx, m.cfg.URL)

	m.mu.Lock()
	if gen != m.gen {
		// Disconnected while dialing; the new transport is not wanted.
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return nil
	}
	m.dialing = false

	if err != nil {
		terr := &TransportError{Op: "dial", Err: errors.WithStack(err)}
		m.lastErr = terr
		m.state = StateDisconnected
		m.log.Warn("connect failed", zap.Error(err), zap.Int("attempt", m.attempt))
		if !m.intentional {
			m.scheduleReconnectLocked()
		}
		st := m.statusLocked()
		m.mu.Unlock()
		m.notify(st)
		return terr
	}

	m.conn = conn
	m.connected = true
	m.ready = false
	m.state = StateOpen
	m.lastErr = nil
	m.armHelloTimerLocked(gen)
	st = m.statusLocked()
	m.mu.Unlock()

	m.log.Info("connected", zap.String("url", m.cfg.URL))
	m.notify(st)

	go m.readLoop(gen, conn)

	hello := protocol.Hello{}
	if m.opts.Credentials != nil {
		if token, ok := m.opts.Credentials.Token(); ok {
			hello.Token = token
		}
	}
	data, _, err := m.codec.Encode(hello)
	if err != nil {
		return err
	}
	m.writeMu.Lock()
	err = conn.WriteMessage(data)
	m.writeMu.Unlock()
	if err != nil {
		// The read loop sees the broken transport and takes the close path.
		m.log.Warn("hello write failed", zap.Error(err))
		_ = conn.Close()
		return &TransportError{Op: "write", Err: errors.WithStack(err)}
	}
	m.log.Debug("hello sent", zap.Bool("with_token", hello.Token != ""))
	return nil
}

// Disconnect closes the transport on purpose. No reconnect follows, pending
// reconnects are canceled and queued sends are discarded.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.intentional = true
	m.stopRetryLocked()
	m.stopHelloLocked()
	m.gen++
	conn := m.conn
	m.conn = nil
	m.dialing = false
	m.connected = false
	m.ready = false
	m.state = StateDisconnected
	dropped := len(m.queue)
	m.queue = nil
	st := m.statusLocked()
	m.mu.Unlock()

	if conn != nil {
		m.writeMu.Lock()
		_ = conn.Close()
		m.writeMu.Unlock()
		m.log.Info("disconnected")
	}
	if dropped > 0 {
		m.log.Warn("discarded queued sends on disconnect", zap.Int("count", dropped))
	}
	m.notify(st)
}

// Reconnect replaces the transport: it disconnects, then connects again
// after ExplicitReconnectDelay. Automatic reconnects stay armed afterwards.
func (m *Manager) Reconnect() {
	m.Disconnect()

	m.mu.Lock()
	m.intentional = false
	m.attempt = 0
	m.backoff.Reset()
	m.state = StateReconnecting
	m.retryTimer = time.AfterFunc(m.cfg.ExplicitReconnectDelay, m.retry)
	st := m.statusLocked()
	m.mu.Unlock()

	m.log.Info("reconnecting", zap.Duration("delay", m.cfg.ExplicitReconnectDelay))
	m.notify(st)
}

// =============================================================================
// SEND
// =============================================================================

// Send encodes p and writes it. Before the handshake completes the frame is
// queued when queueing is enabled; otherwise ErrNotConnected is returned.
func (m *Manager) Send(p protocol.Payload) error {
	data, env, err := m.codec.Encode(p)
	if err != nil {
		return err
	}

	m.mu.Lock()
	conn := m.conn
	switch {
	case conn != nil && (m.ready || !m.cfg.QueueEnabled):
		m.writeMu.Lock()
		m.mu.Unlock()
		err := conn.WriteMessage(data)
		m.writeMu.Unlock()
		if err != nil {
			m.log.Warn("send failed", zap.String("type", string(env.Type)), zap.Error(err))
			return &TransportError{Op: "write", Err: errors.WithStack(err)}
		}
		return nil

	case m.cfg.QueueEnabled:
		if len(m.queue) >= m.cfg.QueueSize {
			m.mu.Unlock()
			m.log.Warn("send dropped, queue full", zap.String("type", string(env.Type)))
			return ErrQueueFull
		}
		m.queue = append(m.queue, data)
		n := len(m.queue)
		m.mu.Unlock()
		m.log.Debug("send queued", zap.String("type", string(env.Type)), zap.Int("queued", n))
		return nil

	default:
		m.mu.Unlock()
		m.log.Error("send dropped, not connected", zap.String("type", string(env.Type)))
		return ErrNotConnected
	}
}

// =============================================================================
// INBOUND
// =============================================================================

func (m *Manager) readLoop(gen uint64, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.handleClose(gen, err)
			return
		}
		if !m.isCurrent(gen) {
			return
		}

		env, err := m.codec.Decode(data)
		if err != nil {
			m.log.Warn("dropping inbound frame", zap.Error(err), zap.Int("bytes", len(data)))
			continue
		}

		if env.Type == protocol.TypeHello {
			m.handleHello(gen, env)
		}
		if m.opts.OnEnvelope != nil && m.isCurrent(gen) {
			m.opts.OnEnvelope(env)
		}
	}
}

func (m *Manager) isCurrent(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.gen && m.conn != nil
}

func (m *Manager) handleHello(gen uint64, env *protocol.Envelope) {
	hello, _ := env.Payload.(protocol.Hello)

	m.mu.Lock()
	if gen != m.gen || m.conn == nil {
		m.mu.Unlock()
		return
	}
	m.stopHelloLocked()
	m.ready = true
	m.state = StateReady
	m.attempt = 0
	m.backoff.Reset()
	conn := m.conn
	queued := m.queue
	m.queue = nil
	st := m.statusLocked()

	// Hold the write lock across the flush so sends issued after the state
	// flip cannot overtake queued frames.
	m.writeMu.Lock()
	m.mu.Unlock()
	for i, frame := range queued {
		if err := conn.WriteMessage(frame); err != nil {
			m.log.Error("flushing queued sends failed",
				zap.Error(err), zap.Int("lost", len(queued)-i))
			_ = conn.Close()
			break
		}
	}
	m.writeMu.Unlock()

	if hello.User != nil && hello.User.Username != "" {
		m.log.Info("identity assigned",
			zap.String("username", hello.User.Username), zap.Bool("guest", hello.User.IsGuest))
		if m.opts.Identity != nil {
			m.opts.Identity.OnIdentityAssigned(hello.User.Username, hello.User.IsGuest)
		}
	}
	if hello.Token != "" {
		if saver, ok := m.opts.Credentials.(TokenSaver); ok {
			if err := saver.SaveToken(hello.Token); err != nil {
				m.log.Warn("could not save issued token", zap.Error(err))
			}
		}
	}
	m.notify(st)
}

func (m *Manager) handleClose(gen uint64, err error) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.gen++
	conn := m.conn
	m.conn = nil
	m.connected = false
	m.ready = false
	m.state = StateDisconnected
	m.stopHelloLocked()
	if !errors.Is(m.lastErr, ErrHelloTimeout) {
		m.lastErr = &TransportError{Op: "read", Err: err}
	}
	if !m.intentional {
		m.scheduleReconnectLocked()
	}
	st := m.statusLocked()
	m.mu.Unlock()

	if IsNormalClose(err) {
		m.log.Info("connection closed by server")
	} else {
		m.log.Warn("connection lost", zap.Error(err))
	}
	if conn != nil {
		m.writeMu.Lock()
		_ = conn.Close()
		m.writeMu.Unlock()
	}
	m.notify(st)
}

// =============================================================================
// TIMERS
// =============================================================================

// scheduleReconnectLocked arms the next reconnect attempt or gives up.
func (m *Manager) scheduleReconnectLocked() {
	m.attempt++
	if max := m.cfg.MaxReconnectAttempts; max > 0 && m.attempt > max {
		m.state = StateFailed
		m.log.Error("giving up on reconnect", zap.Int("attempts", max))
		return
	}
	delay := m.backoff.NextBackOff()
	if delay == backoff.Stop {
		m.state = StateFailed
		return
	}
	m.state = StateReconnecting
	m.stopRetryLocked()
	m.retryTimer = time.AfterFunc(delay, m.retry)
	m.log.Info("reconnect scheduled", zap.Duration("delay", delay), zap.Int("attempt", m.attempt))
}

func (m *Manager) retry() {
	// Failures are logged and rescheduled inside connect.
	_ = m.connect(context.Background(), true)
}

func (m *Manager) stopRetryLocked() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}

func (m *Manager) armHelloTimerLocked(gen uint64) {
	if m.cfg.HelloTimeout <= 0 {
		return
	}
	m.helloTimer = time.AfterFunc(m.cfg.HelloTimeout, func() { m.helloExpired(gen) })
}

func (m *Manager) stopHelloLocked() {
	if m.helloTimer != nil {
		m.helloTimer.Stop()
		m.helloTimer = nil
	}
}

func (m *Manager) helloExpired(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.conn == nil || m.ready {
		m.mu.Unlock()
		return
	}
	conn := m.conn
	m.lastErr = ErrHelloTimeout
	m.mu.Unlock()

	m.log.Warn("no hello response, dropping connection", zap.Duration("timeout", m.cfg.HelloTimeout))
	m.writeMu.Lock()
	_ = conn.Close()
	m.writeMu.Unlock()
}
