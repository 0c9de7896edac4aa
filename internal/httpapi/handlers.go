package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/hub"
	"github.com/DoyleJ11/team-draft-backend/internal/lobby"
	"github.com/DoyleJ11/team-draft-backend/internal/roster"
	"github.com/DoyleJ11/team-draft-backend/internal/store"
	"github.com/DoyleJ11/team-draft-backend/internal/types"
)

const (
	codeLength   = 6
	codeAttempts = 10
	rosterField  = "roster"
)

// engineErrors are rejections caused by the draft's current phase.
var engineErrors = []error{
	engine.ErrDraftComplete,
	engine.ErrNoCaptains,
	engine.ErrIndexOutOfRange,
	engine.ErrWrongTurn,
	engine.ErrSelectionPending,
	engine.ErrNotSpinning,
	engine.ErrNoPendingSelection,
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, codeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateDraft ingests an uploaded roster and starts a lobby for it.
func CreateDraft(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := d.freeCode(r)
		if err != nil {
			d.Logger.Error("failed to generate code", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to generate code")
			return
		}

		participants, ok := d.ingest(w, r, code)
		if !ok {
			return
		}

		if _, err := d.Hub.Create(r.Context(), code, participants); err != nil {
			d.Logger.Error("failed to create lobby", zap.String("code", code), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to create draft")
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func GetDraft(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := d.lobby(w, r)
		if !ok {
			return
		}
		d.respondState(w, r, lb)
	}
}

// Command applies cmdType to the draft and responds with the new state.
func Command(d *Deps, cmdType engine.CommandType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := d.lobby(w, r)
		if !ok {
			return
		}
		if err := lb.Send(r.Context(), engine.Command{Type: cmdType}); err != nil {
			d.commandError(w, lb.Code(), err)
			return
		}
		d.respondState(w, r, lb)
	}
}

// ReplaceRoster re-ingests the roster. A rejected upload leaves the draft as
// it was.
func ReplaceRoster(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := d.lobby(w, r)
		if !ok {
			return
		}

		participants, ok := d.ingest(w, r, lb.Code())
		if !ok {
			return
		}

		cmd := engine.Command{Type: engine.CmdLoadRoster, Roster: participants}
		if err := lb.Send(r.Context(), cmd); err != nil {
			d.commandError(w, lb.Code(), err)
			return
		}
		d.respondState(w, r, lb)
	}
}

func DeleteDraft(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if err := d.Hub.Remove(r.Context(), code); err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}

		err := d.Repo.DeleteDraft(r.Context(), &store.DeleteDraftInput{Code: code})
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "draft not found")
			return
		}
		if err != nil {
			d.Logger.Error("failed to delete draft", zap.String("code", code), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to delete draft")
			return
		}

		d.Logger.Info("draft deleted", zap.String("code", code))
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListDrafts(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes, err := d.Repo.ListDrafts(r.Context())
		if err != nil {
			d.Logger.Error("failed to list drafts", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list drafts")
			return
		}
		if codes == nil {
			codes = []string{}
		}
		writeJSON(w, http.StatusOK, struct {
			Codes []string `json:"codes"`
		}{Codes: codes})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (d *Deps) freeCode(r *http.Request) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		c, err := GenerateCode()
		if err != nil {
			return "", err
		}
		if d.Hub.Get(r.Context(), c) != nil {
			d.Logger.Debug("collision on code, regenerating", zap.String("code", c))
			continue
		}
		if _, err := d.Repo.GetRoster(r.Context(), &store.GetRosterInput{Code: c}); !errors.Is(err, store.ErrNotFound) {
			d.Logger.Debug("code already stored, regenerating", zap.String("code", c))
			continue
		}
		return c, nil
	}
	return "", errors.New("no free draft code")
}

// ingest reads the roster from the multipart field "roster" or, for any other
// content type, the raw body. On failure it writes the response.
func (d *Deps) ingest(w http.ResponseWriter, r *http.Request, code string) ([]engine.Participant, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadBytes)

	var body io.Reader = r.Body
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		file, _, err := r.FormFile(rosterField)
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing roster file")
			return nil, false
		}
		defer file.Close()
		body = file
	}

	participants, err := d.Ingester.Ingest(r.Context(), code, body)
	if errors.Is(err, roster.ErrIngestionInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return participants, true
}

func (d *Deps) lobby(w http.ResponseWriter, r *http.Request) (*lobby.Lobby, bool) {
	code := chi.URLParam(r, "code")
	lb, err := d.Hub.Ensure(r.Context(), code)
	if errors.Is(err, hub.ErrLobbyNotFound) {
		writeError(w, http.StatusNotFound, "draft not found")
		return nil, false
	}
	if err != nil {
		d.Logger.Error("failed to load lobby", zap.String("code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load draft")
		return nil, false
	}
	return lb, true
}

func (d *Deps) respondState(w http.ResponseWriter, r *http.Request, lb *lobby.Lobby) {
	view, err := lb.State(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, types.NewSnapshotMessage(view.Snapshot))
}

func (d *Deps) commandError(w http.ResponseWriter, code string, err error) {
	for _, target := range engineErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
	}
	if errors.Is(err, lobby.ErrLobbyClosed) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	d.Logger.Error("command failed", zap.String("code", code), zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ServerMessage{Type: types.MsgError, Error: msg})
}
