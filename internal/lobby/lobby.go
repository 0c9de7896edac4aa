package lobby

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/random"
	"github.com/DoyleJ11/team-draft-backend/internal/store"
	"github.com/DoyleJ11/team-draft-backend/internal/wheel"
)

var ErrLobbyClosed = errors.New("lobby closed")

type Msg interface{ isLobbyMsg() }

// FromClient applies a command. Reply, when set, receives the outcome and
// should be buffered.
type FromClient struct {
	Cmd   engine.Command
	Reply chan error
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// spinTimerFired is sent by the spin timer; gen identifies the spin it was
// armed for.
type spinTimerFired struct{ gen int }

func (spinTimerFired) isLobbyMsg() {}

// Export fields
type Snapshot struct {
	Code    string
	Version int
	Session engine.Session
	Wheel   wheel.View
}

type View struct {
	Snapshot
	NumClients int
}

type Config struct {
	Code    string
	Session engine.Session
	Repo    store.Repository
	Rand    engine.Rand
	Logger  *zap.Logger

	// SpinDuration is how long the wheel animates before the selection can be
	// confirmed. Zero waits for the client's SpinComplete.
	SpinDuration time.Duration
}

type Lobby struct {
	code    string
	inbox   chan Msg
	session engine.Session
	version int
	clients map[string]chan Snapshot

	repo         store.Repository
	rng          engine.Rand
	logger       *zap.Logger
	spinDuration time.Duration
	spinTimer    *time.Timer
	timerGen     int

	ctx    context.Context
	cancel context.CancelFunc
}

func NewLobby(parent context.Context, cfg Config) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Rand == nil {
		cfg.Rand = random.New(nil)
	}
	if cfg.Repo == nil {
		cfg.Repo = store.NewMemory()
	}

	l := &Lobby{
		code:         cfg.Code,
		inbox:        make(chan Msg, 64), // Small buffer
		session:      cfg.Session,
		version:      0,
		clients:      make(map[string]chan Snapshot),
		repo:         cfg.Repo,
		rng:          cfg.Rand,
		logger:       cfg.Logger.With(zap.String("code", cfg.Code)),
		spinDuration: cfg.SpinDuration,
		ctx:          ctx,
		cancel:       cancel,
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- l.snapshot()

			case Leave:
				delete(l.clients, msg.ClientID)

			case FromClient:
				err := l.apply(msg.Cmd)
				if msg.Reply != nil {
					select {
					case msg.Reply <- err:
					default:
					}
				}

			case spinTimerFired:
				if msg.gen != l.timerGen {
					l.logger.Debug("dropping stale spin timer", zap.Int("gen", msg.gen))
					break
				}
				l.spinTimer = nil
				if err := l.apply(engine.Command{Type: engine.CmdSpinComplete}); err != nil && !errors.Is(err, engine.ErrNotSpinning) {
					l.logger.Warn("spin timer could not complete spin", zap.Error(err))
				}

			case GetState:
				msg.Reply <- View{Snapshot: l.snapshot(), NumClients: len(l.clients)}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) apply(cmd engine.Command) error {
	events, next, err := engine.Apply(l.session, cmd, l.rng)
	if err != nil {
		l.logger.Debug("command rejected", zap.String("cmd", string(cmd.Type)), zap.Error(err))
		return err
	}

	l.session = next
	l.version++

	switch {
	case engine.ContainsEvent(events, engine.EvtCandidateSelected):
		l.armSpinTimer()
	case engine.ContainsEvent(events, engine.EvtRosterLoaded):
		l.stopSpinTimer()
		l.persistRoster()
		l.persistDraft()
	case engine.ContainsEvent(events, engine.EvtDraftReset):
		l.stopSpinTimer()
		l.persistDraft()
	case engine.ContainsEvent(events, engine.EvtParticipantDrafted):
		l.persistDraft()
	}

	for _, e := range events {
		if e.Type == engine.EvtParticipantDrafted {
			l.logger.Info("participant drafted", zap.String("participant", e.Participant), zap.String("captain", e.Team))
		}
		if e.Type == engine.EvtDraftCompleted {
			l.logger.Info("draft completed")
		}
	}

	l.broadcast(l.snapshot())
	return nil
}

func (l *Lobby) armSpinTimer() {
	l.stopSpinTimer()
	if l.spinDuration <= 0 {
		return
	}
	gen := l.timerGen
	l.spinTimer = time.AfterFunc(l.spinDuration, func() {
		select {
		case l.inbox <- spinTimerFired{gen: gen}:
		case <-l.ctx.Done():
		}
	})
}

// stopSpinTimer invalidates any armed timer, including one already firing.
func (l *Lobby) stopSpinTimer() {
	l.timerGen++
	if l.spinTimer != nil {
		l.spinTimer.Stop()
		l.spinTimer = nil
	}
}

func (l *Lobby) persistDraft() {
	ctx, cancel := context.WithTimeout(l.ctx, 5*time.Second)
	defer cancel()
	err := l.repo.SaveDraft(ctx, &store.SaveDraftInput{Code: l.code, State: l.session.Draft})
	if err != nil {
		l.logger.Error("failed to persist draft", zap.Error(err))
	}
}

func (l *Lobby) persistRoster() {
	ctx, cancel := context.WithTimeout(l.ctx, 5*time.Second)
	defer cancel()
	err := l.repo.SaveRoster(ctx, &store.SaveRosterInput{Code: l.code, Roster: l.session.Roster})
	if err != nil {
		l.logger.Error("failed to persist roster", zap.Error(err))
	}
}

func (l *Lobby) snapshot() Snapshot {
	return Snapshot{
		Code:    l.code,
		Version: l.version,
		Session: l.session,
		Wheel:   wheel.Build(l.session),
	}
}

func (l *Lobby) shutdown() {
	l.stopSpinTimer()
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) Code() string { return l.code }

// Done is closed once the lobby stops.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }

// Send applies cmd and waits for the outcome.
func (l *Lobby) Send(ctx context.Context, cmd engine.Command) error {
	reply := make(chan error, 1)
	if err := l.post(ctx, FromClient{Cmd: cmd, Reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-l.ctx.Done():
		return ErrLobbyClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the lobby's current view.
func (l *Lobby) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := l.post(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-l.ctx.Done():
		return View{}, ErrLobbyClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func (l *Lobby) post(ctx context.Context, m Msg) error {
	select {
	case l.inbox <- m:
		return nil
	case <-l.ctx.Done():
		return ErrLobbyClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
