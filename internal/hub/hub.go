package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/lobby"
	"github.com/DoyleJ11/team-draft-backend/internal/store"
)

var ErrLobbyExists = errors.New("lobby already exists")
var ErrLobbyNotFound = errors.New("lobby not found")
var ErrHubClosed = errors.New("hub closed")

type HubMsg interface{ isHubMsg() }

type Result struct {
	Lobby *lobby.Lobby
	Err   error
}

// CreateLobby persists a new draft for roster and starts its lobby.
type CreateLobby struct {
	Code   string
	Roster []engine.Participant
	Reply  chan Result
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

// EnsureLobby returns the running lobby or restores it from the repository.
type EnsureLobby struct {
	Code  string
	Reply chan Result
}

// RemoveLobby stops the lobby. Done, when set, is closed once the lobby has
// finished its queued work and stopped.
type RemoveLobby struct {
	Code string
	Done chan struct{}
}

type ListLobbies struct {
	Reply chan []string
}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	cfg     Config
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ListLobbies) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

type Config struct {
	Repo         store.Repository
	Rand         engine.Rand
	Logger       *zap.Logger
	SpinDuration time.Duration
}

func NewHub(parent context.Context, cfg Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Repo == nil {
		cfg.Repo = store.NewMemory()
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		cfg:     cfg,
		logger:  cfg.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					msg.Reply <- Result{Err: ErrLobbyExists}
					break
				}
				lb, err := h.create(msg.Code, msg.Roster)
				msg.Reply <- Result{Lobby: lb, Err: err}

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case EnsureLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					msg.Reply <- Result{Lobby: lb}
					break
				}
				lb, err := h.restore(msg.Code)
				msg.Reply <- Result{Lobby: lb, Err: err}

			case RemoveLobby:
				lb := h.lobbies[msg.Code]
				if lb != nil {
					stopLobby(lb)
					delete(h.lobbies, msg.Code)
				}
				if msg.Done != nil {
					go func() {
						if lb != nil {
							<-lb.Done()
						}
						close(msg.Done)
					}()
				}

			case ListLobbies:
				codes := make([]string, 0, len(h.lobbies))
				for code := range h.lobbies {
					codes = append(codes, code)
				}
				msg.Reply <- codes

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		stopLobby(lb)
	}
	clear(h.lobbies)
	h.cancel()
}

func stopLobby(lb *lobby.Lobby) {
	select {
	case lb.Inbox() <- lobby.Shutdown{}:
	case <-lb.Done():
	}
}

func (h *Hub) create(code string, roster []engine.Participant) (*lobby.Lobby, error) {
	ctx, cancel := context.WithTimeout(h.ctx, 5*time.Second)
	defer cancel()

	session := engine.NewSession(roster)
	if err := h.cfg.Repo.SaveRoster(ctx, &store.SaveRosterInput{Code: code, Roster: session.Roster}); err != nil {
		return nil, fmt.Errorf("save roster: %w", err)
	}
	if err := h.cfg.Repo.SaveDraft(ctx, &store.SaveDraftInput{Code: code, State: session.Draft}); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	h.logger.Info("lobby created",
		zap.String("code", code),
		zap.Int("teams", len(session.Draft.Teams)),
		zap.Int("pool", len(session.Draft.AvailablePool)),
	)
	return h.start(code, session), nil
}

// restore prefers the saved draft and falls back to a fresh draft from the
// roster when the saved one is missing or unreadable.
func (h *Hub) restore(code string) (*lobby.Lobby, error) {
	ctx, cancel := context.WithTimeout(h.ctx, 5*time.Second)
	defer cancel()

	roster, err := h.cfg.Repo.GetRoster(ctx, &store.GetRosterInput{Code: code})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrLobbyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	var session engine.Session
	draft, err := h.cfg.Repo.GetDraft(ctx, &store.GetDraftInput{Code: code})
	switch {
	case err == nil:
		session = engine.Restore(roster, *draft)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrCorruptState):
		h.logger.Warn("no usable saved draft, starting from roster", zap.String("code", code), zap.Error(err))
		session = engine.NewSession(roster)
	default:
		return nil, fmt.Errorf("load draft: %w", err)
	}

	h.logger.Info("lobby restored", zap.String("code", code), zap.String("phase", string(session.Phase)))
	return h.start(code, session), nil
}

func (h *Hub) start(code string, session engine.Session) *lobby.Lobby {
	lb := lobby.NewLobby(h.ctx, lobby.Config{
		Code:         code,
		Session:      session,
		Repo:         h.cfg.Repo,
		Rand:         h.cfg.Rand,
		Logger:       h.logger,
		SpinDuration: h.cfg.SpinDuration,
	})
	h.lobbies[code] = lb
	return lb
}

// Create starts a new lobby for roster under code.
func (h *Hub) Create(ctx context.Context, code string, roster []engine.Participant) (*lobby.Lobby, error) {
	reply := make(chan Result, 1)
	if err := h.post(ctx, CreateLobby{Code: code, Roster: roster, Reply: reply}); err != nil {
		return nil, err
	}
	return h.await(ctx, reply)
}

// Ensure returns the lobby for code, restoring it from storage if needed.
func (h *Hub) Ensure(ctx context.Context, code string) (*lobby.Lobby, error) {
	reply := make(chan Result, 1)
	if err := h.post(ctx, EnsureLobby{Code: code, Reply: reply}); err != nil {
		return nil, err
	}
	return h.await(ctx, reply)
}

// Get returns the running lobby for code or nil.
func (h *Hub) Get(ctx context.Context, code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	if err := h.post(ctx, GetLobby{Code: code, Reply: reply}); err != nil {
		return nil
	}
	select {
	case lb := <-reply:
		return lb
	case <-h.ctx.Done():
		return nil
	case <-ctx.Done():
		return nil
	}
}

// Remove stops the lobby for code and waits until it has stopped, so nothing
// it had queued can write to the store afterwards.
func (h *Hub) Remove(ctx context.Context, code string) error {
	done := make(chan struct{})
	if err := h.post(ctx, RemoveLobby{Code: code, Done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-h.ctx.Done():
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) post(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-h.ctx.Done():
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) await(ctx context.Context, reply chan Result) (*lobby.Lobby, error) {
	select {
	case res := <-reply:
		return res.Lobby, res.Err
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
