package playerio

import (
	"context"

	"github.com/duskhaven/duskhaven/internal/services/game/domain/player"
)

// Mode selects how much of the aggregate a load rebuilds.
type Mode int

const (
	// LoadFull runs every loader step.
	LoadFull Mode = iota
	// LoadMinimal skips the trailing steps irrelevant to offline contexts
	// (forge history, bosstiary, system initialization). The steps that do
	// run are exactly Full's leading steps, in the same order.
	LoadMinimal
)

// String implements fmt.Stringer for log labels.
func (m Mode) String() string {
	if m == LoadMinimal {
		return "minimal"
	}
	return "full"
}

// Loader is the set of step collaborators the pipeline sequences. Each
// method owns exactly one sub-aggregate; none may retain the row snapshot
// past the call.
type Loader interface {
	// FetchByID resolves the base row by player id within the store's world.
	FetchByID(ctx context.Context, id uint32) (*Row, error)
	// FetchByName resolves the base row by canonical name within the store's world.
	FetchByName(ctx context.Context, name string) (*Row, error)

	LoadBase(ctx context.Context, p *player.Player, row *Row) error
	LoadExperience(ctx context.Context, p *player.Player, row *Row) error
	LoadBlessings(ctx context.Context, p *player.Player, row *Row) error
	LoadConditions(ctx context.Context, p *player.Player, row *Row) error
	LoadOutfit(ctx context.Context, p *player.Player, row *Row) error
	LoadSkull(ctx context.Context, p *player.Player, row *Row) error
	LoadSkills(ctx context.Context, p *player.Player, row *Row) error
	LoadKills(ctx context.Context, p *player.Player, row *Row) error
	LoadGuild(ctx context.Context, p *player.Player, row *Row) error
	LoadStash(ctx context.Context, p *player.Player, row *Row) error
	LoadCharms(ctx context.Context, p *player.Player, row *Row) error
	LoadInventory(ctx context.Context, p *player.Player, row *Row) error
	LoadStoreInbox(ctx context.Context, p *player.Player, row *Row) error
	LoadDepots(ctx context.Context, p *player.Player, row *Row) error
	LoadRewards(ctx context.Context, p *player.Player, row *Row) error
	LoadInbox(ctx context.Context, p *player.Player, row *Row) error
	LoadStorage(ctx context.Context, p *player.Player, row *Row) error
	LoadVIP(ctx context.Context, p *player.Player, row *Row) error
	LoadPrey(ctx context.Context, p *player.Player, row *Row) error
	LoadTaskHunting(ctx context.Context, p *player.Player, row *Row) error
	LoadSpells(ctx context.Context, p *player.Player, row *Row) error
	LoadForgeHistory(ctx context.Context, p *player.Player, row *Row) error
	LoadBosstiary(ctx context.Context, p *player.Player, row *Row) error
	// InitializeSystems loads state owned by post-load systems (wheel points).
	InitializeSystems(ctx context.Context, p *player.Player) error
	// UpdateSystems recomputes derived aggregate state after a full load.
	UpdateSystems(ctx context.Context, p *player.Player) error
}

// LoadStep is one named pipeline step. FullOnly steps are skipped under
// LoadMinimal.
type LoadStep struct {
	Name     string
	FullOnly bool
	Run      func(ctx context.Context, p *player.Player, row *Row) error
}

// LoadSteps returns the fixed ordered loader step list.
//
// Container-bearing steps (store-inbox, depot, rewards, inbox) must stay
// after inventory: they attach to root containers the inventory step
// establishes.
func LoadSteps(l Loader) []LoadStep {
	withRow := func(name string, run func(context.Context, *player.Player, *Row) error) LoadStep {
		return LoadStep{Name: name, Run: run}
	}
	fullOnly := func(name string, run func(context.Context, *player.Player) error) LoadStep {
		return LoadStep{
			Name:     name,
			FullOnly: true,
			Run: func(ctx context.Context, p *player.Player, _ *Row) error {
				return run(ctx, p)
			},
		}
	}

	steps := []LoadStep{
		withRow("base", l.LoadBase),
		withRow("experience", l.LoadExperience),
		withRow("blessings", l.LoadBlessings),
		withRow("conditions", l.LoadConditions),
		withRow("outfit", l.LoadOutfit),
		withRow("skull", l.LoadSkull),
		withRow("skills", l.LoadSkills),
		withRow("kills", l.LoadKills),
		withRow("guild", l.LoadGuild),
		withRow("stash", l.LoadStash),
		withRow("charms", l.LoadCharms),
		withRow("inventory", l.LoadInventory),
		withRow("store-inbox", l.LoadStoreInbox),
		withRow("depot", l.LoadDepots),
		withRow("rewards", l.LoadRewards),
		withRow("inbox", l.LoadInbox),
		withRow("storage", l.LoadStorage),
		withRow("vip", l.LoadVIP),
		withRow("prey", l.LoadPrey),
		withRow("task-hunting", l.LoadTaskHunting),
		withRow("spells", l.LoadSpells),
	}
	steps = append(steps,
		LoadStep{Name: "forge-history", FullOnly: true, Run: l.LoadForgeHistory},
		LoadStep{Name: "bosstiary", FullOnly: true, Run: l.LoadBosstiary},
		fullOnly("initialize-systems", l.InitializeSystems),
		fullOnly("update-systems", l.UpdateSystems),
	)
	return steps
}

// LoadStepNames returns the step names executed under mode, in order.
func LoadStepNames(l Loader, mode Mode) []string {
	var names []string
	for _, step := range LoadSteps(l) {
		if mode == LoadMinimal && step.FullOnly {
			continue
		}
		names = append(names, step.Name)
	}
	return names
}

// Pipeline sequences loader steps over one fetched base row.
//
// A Pipeline is not transactional: a step failure aborts the remaining steps
// and the partially populated aggregate must be discarded by the caller.
type Pipeline struct {
	loader  Loader
	worldID uint32
}

// NewPipeline binds a pipeline to its step collaborators and world partition.
func NewPipeline(loader Loader, worldID uint32) *Pipeline {
	return &Pipeline{loader: loader, worldID: worldID}
}

// LoadByID loads the player with the given id.
func (pl *Pipeline) LoadByID(ctx context.Context, id uint32, mode Mode) (*player.Player, error) {
	row, err := pl.loader.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return pl.Load(ctx, row, mode)
}

// LoadByName loads the player with the given display name. The name is
// canonicalized before lookup.
func (pl *Pipeline) LoadByName(ctx context.Context, name string, mode Mode) (*player.Player, error) {
	row, err := pl.loader.FetchByName(ctx, player.NormalizeName(name))
	if err != nil {
		return nil, err
	}
	return pl.Load(ctx, row, mode)
}

// Load rebuilds an aggregate from an already fetched base-row snapshot.
func (pl *Pipeline) Load(ctx context.Context, row *Row, mode Mode) (*player.Player, error) {
	if row == nil {
		return nil, ErrInvalidArgument
	}

	p := player.New(pl.worldID)
	for _, step := range LoadSteps(pl.loader) {
		if mode == LoadMinimal && step.FullOnly {
			continue
		}
		if err := step.Run(ctx, p, row); err != nil {
			return nil, stepFailure(step.Name, p.Name, err)
		}
	}
	return p, nil
}
