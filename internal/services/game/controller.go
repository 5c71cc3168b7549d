package game

import (
	"context"
	"log/slog"

	"github.com/mcoot/killergame/internal/dependencies/clock"
	"github.com/mcoot/killergame/internal/dependencies/random"
	"github.com/mcoot/killergame/internal/lock"
	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/services/chain"
	"github.com/mcoot/killergame/internal/services/directory"
)

// Publisher receives events after successful transitions
type Publisher interface {
	Publish(event model.Event)
}

// Controller runs the per-player game transitions
type Controller struct {
	directory *directory.Service
	locker    lock.Locker
	publisher Publisher
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
}

// NewController creates a new game Controller. publisher may be nil.
func NewController(
	directory *directory.Service,
	locker lock.Locker,
	publisher Publisher,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		directory: directory,
		locker:    locker,
		publisher: publisher,
		clock:     clock,
		random:    random,
		logger:    logger,
	}
}

// Me returns the bootstrap view of a player. A target that has been
// eliminated since it was assigned is resolved to the next alive player and
// the new edge is written back.
func (c *Controller) Me(ctx context.Context, nickname string) (*model.Profile, error) {
	snap, err := c.directory.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := snap.Find(nickname)
	if p == nil {
		return nil, model.ErrPlayerNotFound
	}

	if !needsResolution(snap, p) {
		return profileOf(snap, p), nil
	}

	profile, err := c.resolveStaleTarget(ctx, nickname)
	if err != nil {
		// The rewrite is only a cache of the chain walk, serve the walk anyway
		c.logger.Warn("failed to persist resolved target",
			slog.String("nickname", p.Nickname),
			slog.String("error", err.Error()),
		)
		return profileOf(snap, p), nil
	}
	return profile, nil
}

// resolveStaleTarget rewrites a player's target under the lock
func (c *Controller) resolveStaleTarget(ctx context.Context, nickname string) (*model.Profile, error) {
	unlock, err := c.locker.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := c.directory.FreshSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := snap.Find(nickname)
	if p == nil {
		return nil, model.Conflicted(model.ErrPlayerNotFound)
	}
	if !needsResolution(snap, p) {
		return profileOf(snap, p), nil
	}

	target, action := chain.Forward(snap, p.Nickname, p.Target, p.Action)
	if target == "" {
		// Dead end, nothing to persist
		return profileOf(snap, p), nil
	}
	err = c.directory.Apply(ctx, snap.Layout(), []directory.Change{{
		Row: p.Row,
		Fields: map[model.Field]string{
			model.FieldTarget: target,
			model.FieldAction: action,
		},
	}})
	if err != nil {
		return nil, err
	}

	c.logger.Info("target resolved",
		slog.String("nickname", p.Nickname),
		slog.String("previous", p.Target),
		slog.String("target", target),
	)

	p.Target, p.Action = target, action
	return profileOf(snap.WithPlayer(*p), p), nil
}

// needsResolution is true for an alive player whose target exists but is eliminated
func needsResolution(snap *directory.Snapshot, p *model.Player) bool {
	if !p.IsAlive() || !p.HasTarget() {
		return false
	}
	t := snap.Find(p.Target)
	return t != nil && !t.IsAlive()
}

func profileOf(snap *directory.Snapshot, p *model.Player) *model.Profile {
	profile := &model.Profile{Player: p.Public()}
	if hunter := snap.Hunter(p.Nickname); hunter != nil && hunter.IsAlive() {
		profile.Hunter = hunter.Nickname
	}
	if !p.IsAlive() || !p.HasTarget() {
		return profile
	}
	nick, action := chain.Forward(snap, p.Nickname, p.Target, p.Action)
	if t := snap.Find(nick); t != nil {
		profile.Target = model.NewTargetInfo(t, action)
	}
	return profile
}

// Kill confirms that the caller eliminated their target. The caller inherits
// the victim's target, skipping over anyone already eliminated.
func (c *Controller) Kill(ctx context.Context, nickname string) (*model.KillResult, error) {
	var result *model.KillResult

	// The victim seen before locking must still be the caller's target after
	var expected string
	validate := func(snap *directory.Snapshot, caller *model.Player) error {
		if err := validateKill(snap, caller); err != nil {
			return err
		}
		victim := snap.Find(caller.Target)
		if expected == "" {
			expected = victim.Nickname
			return nil
		}
		if !victim.Is(expected) {
			return model.ErrTargetAlreadyDead
		}
		return nil
	}

	err := c.transition(ctx, "kill", nickname, validate, func(t *tx) {
		caller := t.actor
		victim := t.snap.Find(caller.Target)
		original := *victim

		victim.Status = model.StatusDead
		victim.KilledBy = caller.Nickname
		if victim.IsParticipating() {
			victim.EliminationOrder = t.order
		}
		t.work = t.work.WithPlayer(*victim)

		next, action := chain.Forward(t.work, caller.Nickname, original.Target, original.Action)
		victim.Target, victim.Action = "", ""

		caller.KillCount++
		caller.Target, caller.Action = next, action

		t.set(caller, model.FieldKillCount, model.FieldTarget, model.FieldAction)
		t.set(victim, model.FieldStatus, model.FieldTarget, model.FieldAction, model.FieldKilledBy, model.FieldEliminationOrder)
		t.eliminated(victim.Nickname, caller.Nickname, model.CauseKill)

		result = &model.KillResult{Victim: victim.Nickname}
		if n := t.work.Find(next); n != nil {
			result.Target = model.NewTargetInfo(n, action)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateKill(snap *directory.Snapshot, caller *model.Player) error {
	if !caller.IsAlive() {
		return model.ErrAlreadyDead
	}
	if !caller.HasTarget() || caller.Is(caller.Target) {
		return model.ErrNoActiveTarget
	}
	victim := snap.Find(caller.Target)
	if victim == nil {
		return model.ErrTargetNotFound
	}
	if !victim.IsAlive() {
		return model.ErrTargetAlreadyDead
	}
	return nil
}

// ReportKilled records that the caller was eliminated. Their alive hunter, if
// any, is credited with the kill and inherits the caller's target. The
// caller's own target is kept as a record of who they were hunting.
func (c *Controller) ReportKilled(ctx context.Context, nickname string) error {
	return c.transition(ctx, "killed", nickname, validateAlive, func(t *tx) {
		caller := t.actor
		original := *caller

		caller.Status = model.StatusDead
		if caller.IsParticipating() {
			caller.EliminationOrder = t.order
		}
		t.work = t.work.WithPlayer(*caller)

		fields := []model.Field{model.FieldStatus, model.FieldEliminationOrder}
		by := ""
		if assassin := t.snap.Hunter(caller.Nickname); assassin != nil && assassin.IsAlive() {
			assassin.Target, assassin.Action = chain.Forward(t.work, assassin.Nickname, original.Target, original.Action)
			assassin.KillCount++
			t.set(assassin, model.FieldTarget, model.FieldAction, model.FieldKillCount)

			caller.KilledBy = assassin.Nickname
			fields = append(fields, model.FieldKilledBy)
			by = assassin.Nickname
		}
		t.set(caller, fields...)
		t.eliminated(caller.Nickname, by, model.CauseKilled)
	})
}

// GiveUp takes the caller out of the game without crediting anyone. Their
// hunter inherits the caller's target and the caller's own edge is cut.
func (c *Controller) GiveUp(ctx context.Context, nickname string) error {
	return c.transition(ctx, "giveup", nickname, validateAlive, func(t *tx) {
		caller := t.actor
		original := *caller

		caller.Status = model.StatusGaveUp
		if caller.IsParticipating() {
			caller.EliminationOrder = t.order
		}
		caller.Target, caller.Action = "", ""
		t.work = t.work.WithPlayer(*caller)

		if original.HasTarget() {
			if assassin := t.snap.Hunter(caller.Nickname); assassin != nil && assassin.IsAlive() {
				assassin.Target, assassin.Action = chain.Forward(t.work, assassin.Nickname, original.Target, original.Action)
				t.set(assassin, model.FieldTarget, model.FieldAction)
			}
		}
		t.set(caller, model.FieldStatus, model.FieldEliminationOrder, model.FieldTarget, model.FieldAction)
		t.eliminated(caller.Nickname, "", model.CauseGaveUp)
	})
}

func validateAlive(_ *directory.Snapshot, caller *model.Player) error {
	if !caller.IsAlive() {
		return model.ErrAlreadyDead
	}
	return nil
}

// SeedChain shuffles every alive ranked player into a new single cycle
func (c *Controller) SeedChain(ctx context.Context, actor model.Actor) ([]model.Assignment, error) {
	if !actor.IsAdmin {
		return nil, model.ErrAdminOnly
	}

	unlock, err := c.locker.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := c.directory.FreshSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	plan := chain.SeedPlan(snap.Players(), c.random)
	if plan == nil {
		return nil, model.ErrNotEnoughPlayers
	}

	changes := make([]directory.Change, 0, len(plan))
	for _, a := range plan {
		hunter := snap.Find(a.Hunter)
		changes = append(changes, directory.Change{
			Row:    hunter.Row,
			Fields: map[model.Field]string{model.FieldTarget: a.Target},
		})
	}
	if err := c.directory.Apply(ctx, snap.Layout(), changes); err != nil {
		return nil, err
	}

	c.logger.Info("target chain seeded",
		slog.String("by", actor.Nickname),
		slog.Int("players", len(plan)),
	)
	return plan, nil
}

// ChainReport inspects the current chain for admins
func (c *Controller) ChainReport(ctx context.Context, actor model.Actor) (*chain.Report, error) {
	if !actor.IsAdmin {
		return nil, model.ErrAdminOnly
	}
	snap, err := c.directory.FreshSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return chain.Inspect(snap), nil
}

// Players returns every record, credentials included, for admins
func (c *Controller) Players(ctx context.Context, actor model.Actor) ([]model.Player, error) {
	if !actor.IsAdmin {
		return nil, model.ErrAdminOnly
	}
	snap, err := c.directory.FreshSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Players(), nil
}

// InvalidateCache drops the cached snapshot for admins
func (c *Controller) InvalidateCache(actor model.Actor) error {
	if !actor.IsAdmin {
		return model.ErrAdminOnly
	}
	c.directory.Invalidate()
	return nil
}
