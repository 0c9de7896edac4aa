package engine

import (
	"errors"
	"testing"
)

func TestApply_SpinConfirmCycle(t *testing.T) {
	s := NewSession(scenarioRoster())
	if s.Phase != PhaseIdle {
		t.Fatalf("new session phase: got %v", s.Phase)
	}
	rng := &scriptedRand{values: []int{1, 0}}

	events, s, err := Apply(s, Command{Type: CmdSpin}, rng)
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if s.Phase != PhaseSpinning || s.Selected != 1 {
		t.Fatalf("after spin: phase=%v selected=%d", s.Phase, s.Selected)
	}
	if len(events) != 1 || events[0].Participant != "P2" {
		t.Fatalf("spin events: %+v", events)
	}

	if _, _, err := Apply(s, Command{Type: CmdConfirm}, rng); !errors.Is(err, ErrNoPendingSelection) {
		t.Fatalf("confirm while spinning: want ErrNoPendingSelection, got %v", err)
	}
	if _, _, err := Apply(s, Command{Type: CmdSpin}, rng); !errors.Is(err, ErrSelectionPending) {
		t.Fatalf("second spin: want ErrSelectionPending, got %v", err)
	}

	_, s, err = Apply(s, Command{Type: CmdSpinComplete}, rng)
	if err != nil || s.Phase != PhasePending {
		t.Fatalf("spin complete: phase=%v err=%v", s.Phase, err)
	}
	if _, _, err := Apply(s, Command{Type: CmdSpin}, rng); !errors.Is(err, ErrSelectionPending) {
		t.Fatalf("spin while pending: want ErrSelectionPending, got %v", err)
	}

	events, s, err = Apply(s, Command{Type: CmdConfirm}, rng)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !ContainsEvent(events, EvtParticipantDrafted) || !ContainsEvent(events, EvtTurnAdvanced) {
		t.Fatalf("confirm events: %+v", events)
	}
	if events[0].Team != "CaptainA" || events[0].Participant != "P2" {
		t.Fatalf("drafted event: %+v", events[0])
	}
	if ContainsEvent(events, EvtDraftCompleted) {
		t.Fatalf("draft completed too early")
	}
	if s.Phase != PhaseIdle || s.Draft.ActiveTeamIndex != 1 {
		t.Fatalf("after confirm: phase=%v active=%d", s.Phase, s.Draft.ActiveTeamIndex)
	}

	_, s, _ = Apply(s, Command{Type: CmdSpin}, rng)
	_, s, _ = Apply(s, Command{Type: CmdSpinComplete}, rng)
	events, s, err = Apply(s, Command{Type: CmdConfirm}, rng)
	if err != nil {
		t.Fatalf("final confirm: %v", err)
	}
	if !ContainsEvent(events, EvtDraftCompleted) || s.Phase != PhaseComplete {
		t.Fatalf("expected completion, phase=%v events=%+v", s.Phase, events)
	}
	if !equalNames(s.Draft.Teams[1].Members, "P1") {
		t.Fatalf("team B: %v", names(s.Draft.Teams[1].Members))
	}

	for _, cmd := range []CommandType{CmdSpin, CmdConfirm} {
		if _, _, err := Apply(s, Command{Type: cmd}, rng); !errors.Is(err, ErrDraftComplete) {
			t.Fatalf("%s on complete draft: want ErrDraftComplete, got %v", cmd, err)
		}
	}
}

func TestApply_SpinCompleteWithoutSpin(t *testing.T) {
	s := NewSession(scenarioRoster())
	_, _, err := Apply(s, Command{Type: CmdSpinComplete}, &scriptedRand{})
	if !errors.Is(err, ErrNotSpinning) {
		t.Fatalf("want ErrNotSpinning, got %v", err)
	}
}

func TestApply_SpinWithoutCaptains(t *testing.T) {
	s := NewSession([]Participant{player("p", SkillBackend)})
	_, _, err := Apply(s, Command{Type: CmdSpin}, &scriptedRand{})
	if !errors.Is(err, ErrNoCaptains) {
		t.Fatalf("want ErrNoCaptains, got %v", err)
	}
}

func TestApply_ResetFromAnyPhase(t *testing.T) {
	rng := &scriptedRand{}
	base := NewSession(scenarioRoster())
	_, spinning, _ := Apply(base, Command{Type: CmdSpin}, rng)
	_, pending, _ := Apply(spinning, Command{Type: CmdSpinComplete}, rng)
	_, committed, _ := Apply(pending, Command{Type: CmdConfirm}, rng)

	for _, s := range []Session{base, spinning, pending, committed} {
		events, got, err := Apply(s, Command{Type: CmdReset}, rng)
		if err != nil {
			t.Fatalf("reset from %v: %v", s.Phase, err)
		}
		if !ContainsEvent(events, EvtDraftReset) {
			t.Fatalf("missing reset event")
		}
		if got.Phase != PhaseIdle || got.Draft.ActiveTeamIndex != 0 || !equalNames(got.Draft.AvailablePool, "P1", "P2") {
			t.Fatalf("reset from %v: %+v", s.Phase, got)
		}
		_, again, _ := Apply(got, Command{Type: CmdReset}, rng)
		if !equalNames(again.Draft.AvailablePool, names(got.Draft.AvailablePool)...) || again.Phase != got.Phase {
			t.Fatalf("second reset differs: %+v vs %+v", again, got)
		}
	}
}

func TestApply_LoadRosterReplacesSession(t *testing.T) {
	rng := &scriptedRand{}
	s := NewSession(scenarioRoster())
	_, s, _ = Apply(s, Command{Type: CmdSpin}, rng)

	roster := []Participant{captain("Z"), player("q", SkillMobile)}
	events, s, err := Apply(s, Command{Type: CmdLoadRoster, Roster: roster}, rng)
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if !ContainsEvent(events, EvtRosterLoaded) {
		t.Fatalf("missing roster event")
	}
	if s.Phase != PhaseIdle || len(s.Draft.Teams) != 1 || !equalNames(s.Draft.AvailablePool, "q") {
		t.Fatalf("after load: %+v", s)
	}

	_, s, _ = Apply(s, Command{Type: CmdReset}, rng)
	if s.Draft.Teams[0].Captain.Name != "Z" {
		t.Fatalf("reset did not use the new roster: %+v", s.Draft)
	}
}

func TestApply_UnsupportedCommand(t *testing.T) {
	_, _, err := Apply(NewSession(scenarioRoster()), Command{Type: "Nope"}, &scriptedRand{})
	if !errors.Is(err, ErrUnsupportedCommand) {
		t.Fatalf("want ErrUnsupportedCommand, got %v", err)
	}
}

func TestReduce_ReplaysToSameSession(t *testing.T) {
	roster := bigRoster()
	rng := &scriptedRand{values: []int{4, 2, 7, 0, 1}}
	s := NewSession(roster)

	var log []Event
	record := func(cmd CommandType) {
		t.Helper()
		events, next, err := Apply(s, Command{Type: cmd}, rng)
		if err != nil {
			t.Fatalf("%s: %v", cmd, err)
		}
		log = append(log, events...)
		s = next
	}

	for i := 0; i < 3; i++ {
		record(CmdSpin)
		record(CmdSpinComplete)
		record(CmdConfirm)
	}
	record(CmdReset)
	for i := 0; i < 2; i++ {
		record(CmdSpin)
		record(CmdSpinComplete)
		record(CmdConfirm)
	}
	record(CmdSpin)

	got := Reduce(roster, log)
	if got.Phase != s.Phase || got.Selected != s.Selected || got.Draft.ActiveTeamIndex != s.Draft.ActiveTeamIndex {
		t.Fatalf("replay: got phase=%v sel=%d active=%d, want phase=%v sel=%d active=%d",
			got.Phase, got.Selected, got.Draft.ActiveTeamIndex, s.Phase, s.Selected, s.Draft.ActiveTeamIndex)
	}
	if !equalNames(got.Draft.AvailablePool, names(s.Draft.AvailablePool)...) {
		t.Fatalf("replay pool: got %v, want %v", names(got.Draft.AvailablePool), names(s.Draft.AvailablePool))
	}
	for i := range s.Draft.Teams {
		if !equalNames(got.Draft.Teams[i].Members, names(s.Draft.Teams[i].Members)...) {
			t.Fatalf("replay team %d: got %v, want %v", i, names(got.Draft.Teams[i].Members), names(s.Draft.Teams[i].Members))
		}
	}
}

func TestRestore_DerivesPhase(t *testing.T) {
	roster := scenarioRoster()
	done := Initialize(roster)
	done, _ = Commit(done, 0)
	done, _ = Commit(done, 0)

	if got := Restore(roster, done); got.Phase != PhaseComplete {
		t.Fatalf("restored complete draft: phase=%v", got.Phase)
	}
	if got := Restore(roster, Initialize(roster)); got.Phase != PhaseIdle {
		t.Fatalf("restored fresh draft: phase=%v", got.Phase)
	}
}
