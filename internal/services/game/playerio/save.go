package playerio

import (
	"context"
	"database/sql"

	apperrors "github.com/duskhaven/duskhaven/internal/platform/errors"
	"github.com/duskhaven/duskhaven/internal/services/game/domain/player"
	"github.com/duskhaven/duskhaven/internal/services/game/storage"
)

// Saver is the set of save-step collaborators. Each method writes exactly one
// sub-aggregate through the supplied transaction handle and never commits or
// rolls back itself.
type Saver interface {
	SaveBase(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveStash(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveSpells(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveKills(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveCharms(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveInventory(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveDepots(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveRewards(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveInbox(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SavePrey(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveTaskHunting(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveForgeHistory(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveBosstiary(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveWheel(ctx context.Context, tx storage.DBTX, p *player.Player) error
	SaveStorage(ctx context.Context, tx storage.DBTX, p *player.Player) error
}

// SaveStep is one named save-transaction step.
type SaveStep struct {
	Name string
	Run  func(ctx context.Context, tx storage.DBTX, p *player.Player) error
}

// SaveSteps returns the fixed ordered saver step list. Storage saves last:
// storage values may reference rows written by the item steps inside the
// same transaction.
func SaveSteps(s Saver) []SaveStep {
	return []SaveStep{
		{Name: "base", Run: s.SaveBase},
		{Name: "stash", Run: s.SaveStash},
		{Name: "spells", Run: s.SaveSpells},
		{Name: "kills", Run: s.SaveKills},
		{Name: "charms", Run: s.SaveCharms},
		{Name: "inventory", Run: s.SaveInventory},
		{Name: "depot", Run: s.SaveDepots},
		{Name: "rewards", Run: s.SaveRewards},
		{Name: "inbox", Run: s.SaveInbox},
		{Name: "prey", Run: s.SavePrey},
		{Name: "task-hunting", Run: s.SaveTaskHunting},
		{Name: "forge-history", Run: s.SaveForgeHistory},
		{Name: "bosstiary", Run: s.SaveBosstiary},
		{Name: "wheel", Run: s.SaveWheel},
		{Name: "storage", Run: s.SaveStorage},
	}
}

// SaveStepNames returns the save step names in execution order.
func SaveStepNames(s Saver) []string {
	steps := SaveSteps(s)
	names := make([]string, 0, len(steps))
	for _, step := range steps {
		names = append(names, step.Name)
	}
	return names
}

// TxBeginner opens database transactions; *sql.DB satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// SaveTransaction commits a player aggregate atomically: either every saver
// step's writes become durable or none do.
type SaveTransaction struct {
	db    TxBeginner
	saver Saver
}

// NewSaveTransaction binds the orchestrator to its database and collaborators.
func NewSaveTransaction(db TxBeginner, saver Saver) *SaveTransaction {
	return &SaveTransaction{db: db, saver: saver}
}

// Save runs every saver step inside one transaction. The first failing step
// aborts and rolls back all earlier writes; a commit failure after all steps
// succeed is reported, never swallowed.
func (t *SaveTransaction) Save(ctx context.Context, p *player.Player) error {
	if p == nil {
		return ErrInvalidArgument
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransactionAbort, "begin player save transaction", err)
	}
	defer tx.Rollback()

	for _, step := range SaveSteps(t.saver) {
		if err := step.Run(ctx, tx, p); err != nil {
			return stepFailure(step.Name, p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.WrapWithMetadata(
			apperrors.CodeTransactionAbort,
			"commit player save transaction",
			map[string]string{"player": p.Name},
			err,
		)
	}
	return nil
}
