package scanner

import (
	"context"
	"fmt"
	"time"

	"community-bot/model"
	"community-bot/utils"
	"community-bot/utils/database/sanctions"
)

// ExpireSanctions lifts every active sanction whose time ran out and marks it
// inactive. A sanction that cannot be lifted stays active and is retried on
// the next pass. It returns how many sanctions were lifted.
func ExpireSanctions(ctx context.Context, env Env, store *sanctions.Store, muteRoleID string, now time.Time) (int, error) {
	log := env.logger("sanction-expiry")

	expired, err := store.Expired(ctx, now)
	if err != nil {
		return 0, err
	}

	lifted := 0
	for _, rec := range expired {
		if err := ctx.Err(); err != nil {
			return lifted, err
		}
		if err := LiftSanction(env, rec, muteRoleID); err != nil {
			log.Warn("could not lift expired sanction, will retry", "sanction", rec.ID, "user", rec.UserID, "error", err)
			continue
		}
		changed, err := store.Deactivate(ctx, rec.ID)
		if err != nil {
			log.Error("lifted sanction but could not deactivate it", "sanction", rec.ID, "error", err)
			continue
		}
		if !changed {
			// Lifted by a moderator while this pass ran.
			continue
		}
		lifted++
		log.Info("sanction expired", "sanction", rec.ID, "type", rec.Type, "user", rec.UserID)
		env.Audit.Send(utils.SanctionLiftedEmbed(rec, ""))
	}
	return lifted, nil
}

// LiftSanction undoes the Discord side of a sanction. Warnings and kicks have
// nothing to undo. A member who already left, or a ban already removed by
// hand, counts as lifted.
func LiftSanction(env Env, rec model.Sanction, muteRoleID string) error {
	s := env.Session
	switch rec.Type {
	case model.SanctionMute:
		if err := s.GuildMemberTimeout(rec.GuildID, rec.UserID, nil); err != nil && !utils.IsNotFound(err) {
			return fmt.Errorf("failed to clear timeout for user %s: %w", rec.UserID, err)
		}
		if muteRoleID != "" {
			if err := s.GuildMemberRoleRemove(rec.GuildID, rec.UserID, muteRoleID); err != nil && !utils.IsNotFound(err) {
				return fmt.Errorf("failed to remove mute role from user %s: %w", rec.UserID, err)
			}
		}
	case model.SanctionBan:
		if err := s.GuildBanDelete(rec.GuildID, rec.UserID); err != nil && !utils.IsNotFound(err) {
			return fmt.Errorf("failed to lift ban for user %s: %w", rec.UserID, err)
		}
	}
	return nil
}
