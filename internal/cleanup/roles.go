package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/projectares/aresdata/internal/store"
)

// NormalizeRole folds a role value for vocabulary comparison.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// InvalidRolePlayer is one role-purge candidate.
type InvalidRolePlayer struct {
	PlayerID int
	Nickname string
	GameID   string
	Role     string
}

// FindInvalidRolePlayers lists players whose role is non-empty and outside
// the vocabulary. An empty role means "unknown", never "invalid", so those
// rows always survive.
func FindInvalidRolePlayers(ctx context.Context, q store.Querier, vocabulary []string) ([]InvalidRolePlayer, error) {
	valid := make(map[string]bool, len(vocabulary))
	for _, role := range vocabulary {
		valid[NormalizeRole(role)] = true
	}

	rows, err := q.Query(ctx, `
		SELECT player_id, player_nickname, game_id, curr_role
		FROM players
		WHERE curr_role IS NOT NULL AND btrim(curr_role) <> ''
		ORDER BY game_id, player_nickname`)
	if err != nil {
		return nil, fmt.Errorf("find invalid roles: %w", err)
	}
	defer rows.Close()

	var out []InvalidRolePlayer
	for rows.Next() {
		var p InvalidRolePlayer
		if err := rows.Scan(&p.PlayerID, &p.Nickname, &p.GameID, &p.Role); err != nil {
			return nil, err
		}
		if !valid[NormalizeRole(p.Role)] {
			out = append(out, p)
		}
	}
	return out, rows.Err()
}

// PurgeInvalidRoles deletes players outside the role vocabulary. Roster
// rows and map stat lines cascade with the player.
func PurgeInvalidRoles(ctx context.Context, q store.Querier, logger *slog.Logger, vocabulary []string, dryRun bool) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	candidates, err := FindInvalidRolePlayers(ctx, q, vocabulary)
	if err != nil {
		return nil, err
	}

	rep := &Report{Examined: len(candidates), DryRun: dryRun}
	for _, p := range candidates {
		rep.note("player %d %q (%s): role=%q", p.PlayerID, p.Nickname, p.GameID, p.Role)
		logger.Info("Invalid role candidate",
			"player_id", p.PlayerID, "player", p.Nickname, "game", p.GameID,
			"role", p.Role, "dry_run", dryRun)
		if dryRun {
			continue
		}
		_, err := q.Exec(ctx, "DELETE FROM players WHERE player_id = $1", p.PlayerID)
		if store.IsForeignKeyViolation(err) {
			rep.Blocked++
			rep.note("player %d %q: blocked: %v", p.PlayerID, p.Nickname, err)
			logger.Warn("Invalid role delete blocked",
				"player_id", p.PlayerID, "player", p.Nickname, "error", err)
			continue
		}
		if err != nil {
			return rep, fmt.Errorf("delete player %d %q: %w", p.PlayerID, p.Nickname, err)
		}
		rep.Deleted++
	}
	return rep, nil
}
