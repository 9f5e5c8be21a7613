package playerio

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/duskhaven/duskhaven/internal/platform/errors"
	"github.com/duskhaven/duskhaven/internal/services/game/domain/player"
	"github.com/duskhaven/duskhaven/internal/services/game/storage"
)

// recordingLoader records the step order the pipeline drives. failAt, when
// set, makes that step return failErr.
type recordingLoader struct {
	calls   []string
	failAt  string
	failErr error
	rows    map[string]*Row
}

func (l *recordingLoader) step(name string) error {
	l.calls = append(l.calls, name)
	if name == l.failAt {
		return l.failErr
	}
	return nil
}

func (l *recordingLoader) FetchByID(_ context.Context, id uint32) (*Row, error) {
	if id == 404 {
		return nil, storage.ErrNotFound
	}
	return NewRow(map[string]any{"id": int64(id)}), nil
}

func (l *recordingLoader) FetchByName(_ context.Context, name string) (*Row, error) {
	row, ok := l.rows[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return row, nil
}

func (l *recordingLoader) LoadBase(_ context.Context, p *player.Player, row *Row) error {
	p.ID = row.Uint32("id")
	p.Name = "Avela Stormfall"
	return l.step("base")
}

func (l *recordingLoader) LoadExperience(context.Context, *player.Player, *Row) error {
	return l.step("experience")
}
func (l *recordingLoader) LoadBlessings(context.Context, *player.Player, *Row) error {
	return l.step("blessings")
}
func (l *recordingLoader) LoadConditions(context.Context, *player.Player, *Row) error {
	return l.step("conditions")
}
func (l *recordingLoader) LoadOutfit(context.Context, *player.Player, *Row) error {
	return l.step("outfit")
}
func (l *recordingLoader) LoadSkull(context.Context, *player.Player, *Row) error {
	return l.step("skull")
}
func (l *recordingLoader) LoadSkills(context.Context, *player.Player, *Row) error {
	return l.step("skills")
}
func (l *recordingLoader) LoadKills(context.Context, *player.Player, *Row) error {
	return l.step("kills")
}
func (l *recordingLoader) LoadGuild(context.Context, *player.Player, *Row) error {
	return l.step("guild")
}
func (l *recordingLoader) LoadStash(context.Context, *player.Player, *Row) error {
	return l.step("stash")
}
func (l *recordingLoader) LoadCharms(context.Context, *player.Player, *Row) error {
	return l.step("charms")
}
func (l *recordingLoader) LoadInventory(context.Context, *player.Player, *Row) error {
	return l.step("inventory")
}
func (l *recordingLoader) LoadStoreInbox(context.Context, *player.Player, *Row) error {
	return l.step("store-inbox")
}
func (l *recordingLoader) LoadDepots(context.Context, *player.Player, *Row) error {
	return l.step("depot")
}
func (l *recordingLoader) LoadRewards(context.Context, *player.Player, *Row) error {
	return l.step("rewards")
}
func (l *recordingLoader) LoadInbox(context.Context, *player.Player, *Row) error {
	return l.step("inbox")
}
func (l *recordingLoader) LoadStorage(context.Context, *player.Player, *Row) error {
	return l.step("storage")
}
func (l *recordingLoader) LoadVIP(context.Context, *player.Player, *Row) error {
	return l.step("vip")
}
func (l *recordingLoader) LoadPrey(context.Context, *player.Player, *Row) error {
	return l.step("prey")
}
func (l *recordingLoader) LoadTaskHunting(context.Context, *player.Player, *Row) error {
	return l.step("task-hunting")
}
func (l *recordingLoader) LoadSpells(context.Context, *player.Player, *Row) error {
	return l.step("spells")
}
func (l *recordingLoader) LoadForgeHistory(context.Context, *player.Player, *Row) error {
	return l.step("forge-history")
}
func (l *recordingLoader) LoadBosstiary(context.Context, *player.Player, *Row) error {
	return l.step("bosstiary")
}
func (l *recordingLoader) InitializeSystems(context.Context, *player.Player) error {
	return l.step("initialize-systems")
}
func (l *recordingLoader) UpdateSystems(context.Context, *player.Player) error {
	return l.step("update-systems")
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLoadFullRunsStepsInOrder(t *testing.T) {
	loader := &recordingLoader{}
	pipeline := NewPipeline(loader, 1)

	p, err := pipeline.LoadByID(context.Background(), 12, LoadFull)
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}
	if p.ID != 12 {
		t.Errorf("player id = %d, want 12", p.ID)
	}
	if p.WorldID != 1 {
		t.Errorf("world id = %d, want 1", p.WorldID)
	}

	want := LoadStepNames(loader, LoadFull)
	if !equalStrings(loader.calls, want) {
		t.Errorf("full load order = %v, want %v", loader.calls, want)
	}
}

func TestLoadMinimalIsPrefixOfFull(t *testing.T) {
	full := &recordingLoader{}
	pipeline := NewPipeline(full, 1)
	if _, err := pipeline.LoadByID(context.Background(), 12, LoadFull); err != nil {
		t.Fatalf("full load: %v", err)
	}

	minimal := &recordingLoader{}
	pipeline = NewPipeline(minimal, 1)
	if _, err := pipeline.LoadByID(context.Background(), 12, LoadMinimal); err != nil {
		t.Fatalf("minimal load: %v", err)
	}

	if !equalStrings(minimal.calls, LoadStepNames(minimal, LoadMinimal)) {
		t.Errorf("minimal load order = %v, want %v", minimal.calls, LoadStepNames(minimal, LoadMinimal))
	}
	if len(minimal.calls) >= len(full.calls) {
		t.Fatalf("minimal ran %d steps, full ran %d; minimal must run fewer", len(minimal.calls), len(full.calls))
	}
	if !equalStrings(minimal.calls, full.calls[:len(minimal.calls)]) {
		t.Errorf("minimal steps %v are not a prefix of full steps %v", minimal.calls, full.calls)
	}
}

func TestLoadByIDNotFound(t *testing.T) {
	pipeline := NewPipeline(&recordingLoader{}, 1)
	_, err := pipeline.LoadByID(context.Background(), 404, LoadFull)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestLoadByNameNormalizes(t *testing.T) {
	loader := &recordingLoader{
		rows: map[string]*Row{
			"Avela Stormfall": NewRow(map[string]any{"id": int64(12)}),
		},
	}
	pipeline := NewPipeline(loader, 1)

	p, err := pipeline.LoadByName(context.Background(), "  avela   STORMFALL ", LoadMinimal)
	if err != nil {
		t.Fatalf("LoadByName: %v", err)
	}
	if p.ID != 12 {
		t.Errorf("player id = %d, want 12", p.ID)
	}
}

func TestLoadNilRow(t *testing.T) {
	pipeline := NewPipeline(&recordingLoader{}, 1)
	_, err := pipeline.Load(context.Background(), nil, LoadFull)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want invalid-argument", err)
	}
}

func TestLoadStepFailureAborts(t *testing.T) {
	cause := errors.New("stash table locked")
	loader := &recordingLoader{failAt: "stash", failErr: cause}
	pipeline := NewPipeline(loader, 1)

	_, err := pipeline.LoadByID(context.Background(), 12, LoadFull)
	if err == nil {
		t.Fatal("expected step failure")
	}

	step, ok := FailedStep(err)
	if !ok || step != "stash" {
		t.Errorf("FailedStep = %q/%v, want stash/true", step, ok)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause not reachable through %v", err)
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("err is not a domain error: %v", err)
	}
	if appErr.Metadata["player"] != "Avela Stormfall" {
		t.Errorf("player metadata = %q", appErr.Metadata["player"])
	}

	// Steps after the failing one never ran.
	if last := loader.calls[len(loader.calls)-1]; last != "stash" {
		t.Errorf("last executed step = %q, want stash", last)
	}
}
