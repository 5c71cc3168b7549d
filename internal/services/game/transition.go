package game

import (
	"context"
	"log/slog"

	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/services/directory"
)

// tx is the working state of one transition, built under the lock
type tx struct {
	snap  *directory.Snapshot // as read after taking the lock
	work  *directory.Snapshot // snap with every change made so far
	actor *model.Player
	order int // elimination order to hand out in this transition

	changes      []directory.Change
	eliminations []model.PlayerEliminatedPayload
}

// set records fields of p to be written and updates the working snapshot
func (t *tx) set(p *model.Player, fields ...model.Field) {
	t.work = t.work.WithPlayer(*p)

	var change *directory.Change
	for i := range t.changes {
		if t.changes[i].Row == p.Row {
			change = &t.changes[i]
		}
	}
	if change == nil {
		t.changes = append(t.changes, directory.Change{Row: p.Row, Fields: make(map[model.Field]string)})
		change = &t.changes[len(t.changes)-1]
	}
	for _, f := range fields {
		change.Fields[f] = fieldValue(p, f)
	}
}

func (t *tx) eliminated(nickname, by string, cause model.EliminationCause) {
	t.eliminations = append(t.eliminations, model.PlayerEliminatedPayload{
		Nickname: nickname,
		By:       by,
		Cause:    cause,
	})
}

func fieldValue(p *model.Player, f model.Field) string {
	switch f {
	case model.FieldTarget:
		return p.Target
	case model.FieldAction:
		return p.Action
	case model.FieldStatus:
		return string(p.Status)
	case model.FieldKillCount:
		return directory.FormatInt(p.KillCount)
	case model.FieldEliminationOrder:
		return directory.FormatInt(p.EliminationOrder)
	case model.FieldKilledBy:
		return p.KilledBy
	case model.FieldIsAdmin:
		return directory.FormatBool(p.IsAdmin)
	case model.FieldNickname:
		return p.Nickname
	case model.FieldPassword:
		return p.Password
	case model.FieldName:
		return p.Name
	case model.FieldFirstName:
		return p.FirstName
	case model.FieldYear:
		return p.Year
	case model.FieldPersonPhoto:
		return p.PersonPhoto
	case model.FieldFeetPhoto:
		return p.FeetPhoto
	}
	return ""
}

// transition runs one mutating operation:
//  1. check preconditions on a freshly read snapshot
//  2. take the lock and read the store again
//  3. check again; a failure now that passed before is a conflict
//  4. build and write every change as one batch
//  5. release the lock and publish events
func (c *Controller) transition(
	ctx context.Context,
	op string,
	nickname string,
	validate func(*directory.Snapshot, *model.Player) error,
	build func(*tx),
) error {
	snap, err := c.directory.FreshSnapshot(ctx)
	if err != nil {
		return err
	}
	actor := snap.Find(nickname)
	if actor == nil {
		return model.ErrPlayerNotFound
	}
	if err := validate(snap, actor); err != nil {
		return err
	}

	t, err := c.locked(ctx, nickname, validate, build)
	if err != nil {
		c.logger.Warn("transition failed",
			slog.String("op", op),
			slog.String("nickname", actor.Nickname),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.logger.Info("transition applied",
		slog.String("op", op),
		slog.String("nickname", t.actor.Nickname),
		slog.Int("changed_rows", len(t.changes)),
	)
	c.publish(t)
	return nil
}

func (c *Controller) locked(
	ctx context.Context,
	nickname string,
	validate func(*directory.Snapshot, *model.Player) error,
	build func(*tx),
) (*tx, error) {
	unlock, err := c.locker.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := c.directory.FreshSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	actor := snap.Find(nickname)
	if actor == nil {
		return nil, model.Conflicted(model.ErrPlayerNotFound)
	}
	if err := validate(snap, actor); err != nil {
		return nil, model.Conflicted(err)
	}

	t := &tx{
		snap:  snap,
		work:  snap,
		actor: actor,
		order: nextEliminationOrder(snap),
	}
	build(t)

	if err := c.directory.Apply(ctx, snap.Layout(), t.changes); err != nil {
		return nil, err
	}
	return t, nil
}

// nextEliminationOrder is one past both the number of eliminated
// participants and the highest order already handed out, so it is unique
// even when the sheet was edited by hand
func nextEliminationOrder(snap *directory.Snapshot) int {
	eliminated, highest := 0, 0
	for _, p := range snap.Players() {
		if !p.IsParticipating() {
			continue
		}
		if !p.IsAlive() {
			eliminated++
		}
		highest = max(highest, p.EliminationOrder)
	}
	return max(eliminated, highest) + 1
}

// rankedAlive returns the alive players that count towards standings
func rankedAlive(snap *directory.Snapshot) []model.Player {
	var out []model.Player
	for _, p := range snap.Players() {
		if p.IsRanked() && p.IsAlive() {
			out = append(out, p)
		}
	}
	return out
}

func (c *Controller) publish(t *tx) {
	if c.publisher == nil {
		return
	}
	now := c.clock.Now()
	after := rankedAlive(t.work)

	for _, e := range t.eliminations {
		e.AliveRemaining = len(after)
		c.publisher.Publish(model.Event{
			Type:      model.EventPlayerEliminated,
			Timestamp: now,
			Payload:   e,
		})
	}

	if len(rankedAlive(t.snap)) > 1 && len(after) <= 1 {
		winner := ""
		if len(after) == 1 {
			winner = after[0].Nickname
		}
		c.publisher.Publish(model.Event{
			Type:      model.EventGameOver,
			Timestamp: now,
			Payload:   model.GameOverPayload{Winner: winner},
		})
	}
}
