package store

import (
	"context"

	"github.com/projectares/aresdata/internal/config"
)

// The (xmax = 0) trick distinguishes a fresh insert from a conflict update:
// xmax is zero only for rows created by the current statement.

// UpsertGame writes a game keyed by its external id.
func UpsertGame(ctx context.Context, q Querier, g Game) (inserted bool, err error) {
	err = q.QueryRow(ctx, `
		INSERT INTO `+config.GamesTable+` (game_id, game_name, liquipedia_wiki)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id) DO UPDATE SET
			game_name = EXCLUDED.game_name,
			liquipedia_wiki = EXCLUDED.liquipedia_wiki
		RETURNING (xmax = 0)`,
		g.ID, g.Name, g.Wiki,
	).Scan(&inserted)
	return inserted, err
}

// UpsertTeam writes a team keyed by (team_name, game_id) and returns its
// surrogate id. NULL incoming attributes keep the stored value.
func UpsertTeam(ctx context.Context, q Querier, t Team) (teamID int, inserted bool, err error) {
	err = q.QueryRow(ctx, `
		INSERT INTO `+config.TeamsTable+` (team_name, game_id, region, location, is_disbanded)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team_name, game_id) DO UPDATE SET
			region = COALESCE(EXCLUDED.region, `+config.TeamsTable+`.region),
			location = COALESCE(EXCLUDED.location, `+config.TeamsTable+`.location),
			is_disbanded = EXCLUDED.is_disbanded
		RETURNING team_id, (xmax = 0)`,
		t.Name, t.GameID, nilEmpty(t.Region), nilEmpty(t.Location), t.Disbanded,
	).Scan(&teamID, &inserted)
	return teamID, inserted, err
}

// UpsertPlayer writes a player keyed by (player_nickname, game_id).
func UpsertPlayer(ctx context.Context, q Querier, p Player) (playerID int, inserted bool, err error) {
	err = q.QueryRow(ctx, `
		INSERT INTO `+config.PlayersTable+` (
			player_nickname, game_id, birth_date, nationality, status, curr_role, player_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (player_nickname, game_id) DO UPDATE SET
			birth_date = COALESCE(EXCLUDED.birth_date, `+config.PlayersTable+`.birth_date),
			nationality = COALESCE(EXCLUDED.nationality, `+config.PlayersTable+`.nationality),
			status = COALESCE(EXCLUDED.status, `+config.PlayersTable+`.status),
			curr_role = COALESCE(EXCLUDED.curr_role, `+config.PlayersTable+`.curr_role),
			player_type = COALESCE(EXCLUDED.player_type, `+config.PlayersTable+`.player_type)
		RETURNING player_id, (xmax = 0)`,
		p.Nickname, p.GameID, p.BirthDate, nilEmpty(p.Nationality),
		nilEmpty(p.Status), nilEmpty(p.Role), nilEmpty(p.Type),
	).Scan(&playerID, &inserted)
	return playerID, inserted, err
}

// UpsertTournament writes a tournament keyed by (name, game_id, start_date).
func UpsertTournament(ctx context.Context, q Querier, t Tournament) (tournamentID int, inserted bool, err error) {
	err = q.QueryRow(ctx, `
		INSERT INTO `+config.TournamentsTable+` (
			tournament_name, game_id, tier, start_date, end_date,
			tournament_type, region, location, prize_pool, tournament_weight
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tournament_name, game_id, start_date) DO UPDATE SET
			tier = COALESCE(EXCLUDED.tier, `+config.TournamentsTable+`.tier),
			end_date = EXCLUDED.end_date,
			tournament_type = COALESCE(EXCLUDED.tournament_type, `+config.TournamentsTable+`.tournament_type),
			region = COALESCE(EXCLUDED.region, `+config.TournamentsTable+`.region),
			location = COALESCE(EXCLUDED.location, `+config.TournamentsTable+`.location),
			prize_pool = COALESCE(EXCLUDED.prize_pool, `+config.TournamentsTable+`.prize_pool),
			tournament_weight = EXCLUDED.tournament_weight
		RETURNING tournament_id, (xmax = 0)`,
		t.Name, t.GameID, nilEmpty(t.Tier), t.StartDate, t.EndDate,
		nilEmpty(t.Type), nilEmpty(t.Region), nilEmpty(t.Location),
		t.PrizePool, t.Weight,
	).Scan(&tournamentID, &inserted)
	return tournamentID, inserted, err
}

// UpsertRoster writes one membership row. Active rows conflict on the
// partial (team_id, player_id) WHERE status='active' index, which is what
// keeps a player at a single active membership per team; historical rows
// conflict on the (team_id, player_id, join_date) key instead.
func UpsertRoster(ctx context.Context, q Querier, r RosterEntry) (inserted bool, err error) {
	if r.Status == "active" {
		err = q.QueryRow(ctx, `
			INSERT INTO `+config.RostersTable+` (
				team_id, player_id, player_nickname, join_date, leave_date,
				is_substitute, role_during_tenure, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (team_id, player_id) WHERE status = 'active' DO UPDATE SET
				player_nickname = EXCLUDED.player_nickname,
				join_date = EXCLUDED.join_date,
				leave_date = EXCLUDED.leave_date,
				is_substitute = EXCLUDED.is_substitute,
				role_during_tenure = EXCLUDED.role_during_tenure
			RETURNING (xmax = 0)`,
			r.TeamID, r.PlayerID, nilEmpty(r.Nickname), r.JoinDate, r.LeaveDate,
			r.Substitute, nilEmpty(r.Role), r.Status,
		).Scan(&inserted)
		return inserted, err
	}
	err = q.QueryRow(ctx, `
		INSERT INTO `+config.RostersTable+` (
			team_id, player_id, player_nickname, join_date, leave_date,
			is_substitute, role_during_tenure, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (team_id, player_id, join_date) DO UPDATE SET
			player_nickname = EXCLUDED.player_nickname,
			leave_date = EXCLUDED.leave_date,
			is_substitute = EXCLUDED.is_substitute,
			role_during_tenure = EXCLUDED.role_during_tenure,
			status = EXCLUDED.status
		RETURNING (xmax = 0)`,
		r.TeamID, r.PlayerID, nilEmpty(r.Nickname), r.JoinDate, r.LeaveDate,
		r.Substitute, nilEmpty(r.Role), r.Status,
	).Scan(&inserted)
	return inserted, err
}

// UpsertSeries writes a match series keyed by the external match id.
func UpsertSeries(ctx context.Context, q Querier, s Series) (inserted bool, err error) {
	err = q.QueryRow(ctx, `
		INSERT INTO `+config.SeriesTable+` (
			series_id, tournament_id, game_id, series_date,
			team1_id, team2_id, team1_score, team2_score,
			winner_team_id, best_of, is_forfeit, tier
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (series_id) DO UPDATE SET
			tournament_id = EXCLUDED.tournament_id,
			game_id = EXCLUDED.game_id,
			series_date = EXCLUDED.series_date,
			team1_id = EXCLUDED.team1_id,
			team2_id = EXCLUDED.team2_id,
			team1_score = EXCLUDED.team1_score,
			team2_score = EXCLUDED.team2_score,
			winner_team_id = EXCLUDED.winner_team_id,
			best_of = EXCLUDED.best_of,
			is_forfeit = EXCLUDED.is_forfeit,
			tier = EXCLUDED.tier
		RETURNING (xmax = 0)`,
		s.ID, s.TournamentID, s.GameID, s.Date,
		s.Team1ID, s.Team2ID, s.Team1Score, s.Team2Score,
		s.WinnerTeamID, s.BestOf, s.Forfeit, nilEmpty(s.Tier),
	).Scan(&inserted)
	return inserted, err
}

// UpsertPlacement writes a placement keyed by (tournament_id, team_id).
func UpsertPlacement(ctx context.Context, q Querier, p Placement) (inserted bool, err error) {
	err = q.QueryRow(ctx, `
		INSERT INTO `+config.PlacementsTable+` (
			tournament_id, team_id, placement, placement_lower, placement_upper,
			prize_money, currency
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tournament_id, team_id) DO UPDATE SET
			placement = EXCLUDED.placement,
			placement_lower = EXCLUDED.placement_lower,
			placement_upper = EXCLUDED.placement_upper,
			prize_money = EXCLUDED.prize_money,
			currency = EXCLUDED.currency
		RETURNING (xmax = 0)`,
		p.TournamentID, p.TeamID, p.Placement, p.Lower, p.Upper,
		p.PrizeMoney, nilEmpty(p.Currency),
	).Scan(&inserted)
	return inserted, err
}

// UpsertPlayedMap writes a played map keyed by the external game id.
func UpsertPlayedMap(ctx context.Context, q Querier, m PlayedMap) (inserted bool, err error) {
	err = q.QueryRow(ctx, `
		INSERT INTO `+config.MapsTable+` (
			map_id, series_id, map_name, map_number,
			team1_score, team2_score, winner_team_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (map_id) DO UPDATE SET
			series_id = EXCLUDED.series_id,
			map_name = EXCLUDED.map_name,
			map_number = EXCLUDED.map_number,
			team1_score = EXCLUDED.team1_score,
			team2_score = EXCLUDED.team2_score,
			winner_team_id = EXCLUDED.winner_team_id
		RETURNING (xmax = 0)`,
		m.ID, m.SeriesID, m.Name, m.Number,
		m.Team1Score, m.Team2Score, m.WinnerTeamID,
	).Scan(&inserted)
	return inserted, err
}

// UpsertMapStat writes one player's map line keyed by (map_id, player_id).
func UpsertMapStat(ctx context.Context, q Querier, s MapStat) (inserted bool, err error) {
	err = q.QueryRow(ctx, `
		INSERT INTO `+config.MapStatsTable+` (
			map_id, player_id, team_id, kills, deaths, assists,
			adr, headshot_pct, agent, rating
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (map_id, player_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			kills = EXCLUDED.kills,
			deaths = EXCLUDED.deaths,
			assists = EXCLUDED.assists,
			adr = EXCLUDED.adr,
			headshot_pct = EXCLUDED.headshot_pct,
			agent = EXCLUDED.agent,
			rating = EXCLUDED.rating
		RETURNING (xmax = 0)`,
		s.MapID, s.PlayerID, s.TeamID, s.Kills, s.Deaths, s.Assists,
		s.ADR, s.HeadshotPct, nilEmpty(s.Agent), s.Rating,
	).Scan(&inserted)
	return inserted, err
}
