package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/projectares/aresdata/internal/config"
	"github.com/projectares/aresdata/internal/liquipedia"
	"github.com/projectares/aresdata/internal/store"
)

// Source is the slice of the Liquipedia client the stages use. Narrow so
// tests can substitute canned pages.
type Source interface {
	FetchAll(ctx context.Context, endpoint string, p liquipedia.Params, fn func(page []json.RawMessage) error) error
}

// Pipeline binds the source client and database to the stage set.
type Pipeline struct {
	db     store.Querier
	source Source
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

func NewPipeline(db store.Querier, source Source, cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{db: db, source: source, cfg: cfg, logger: logger, now: time.Now}
}

// Stages returns the full stage set wired with dependencies and priorities.
func (p *Pipeline) Stages() []*Stage {
	return []*Stage{
		{Name: "games", Priority: 1, Run: p.runGames},
		{Name: "teams", Priority: 2, DependsOn: []string{"games"},
			RequiresRows: []string{config.GamesTable}, Run: p.runTeams},
		{Name: "players", Priority: 3, DependsOn: []string{"games"},
			RequiresRows: []string{config.GamesTable}, Run: p.runPlayers},
		{Name: "tournaments", Priority: 4, DependsOn: []string{"games"},
			RequiresRows: []string{config.GamesTable}, Run: p.runTournaments},
		{Name: "rosters", Priority: 5, DependsOn: []string{"teams", "players"},
			RequiresRows: []string{config.TeamsTable, config.PlayersTable}, Run: p.runRosters},
		{Name: "series", Priority: 6, DependsOn: []string{"tournaments", "teams"},
			RequiresRows: []string{config.TournamentsTable, config.TeamsTable}, Run: p.runSeries},
		{Name: "placements", Priority: 7, DependsOn: []string{"tournaments", "teams"},
			RequiresRows: []string{config.TournamentsTable, config.TeamsTable}, Run: p.runPlacements},
		{Name: "mapstats", Priority: 8, DependsOn: []string{"series", "players", "teams"},
			RequiresRows: []string{config.SeriesTable, config.PlayersTable}, Run: p.runMapStats},
	}
}

// games returns the configured games in deterministic order.
func (p *Pipeline) games() []config.GameConfig {
	out := make([]config.GameConfig, 0, len(config.GameRegistry))
	for _, g := range config.GameRegistry {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// sinceFor returns the lower date bound for time-sensitive fetches: the
// later of the game's epoch and the configured global floor.
func (p *Pipeline) sinceFor(g config.GameConfig) time.Time {
	since, err := time.Parse("2006-01-02", p.cfg.FetchSince)
	if err != nil {
		since = time.Time{}
	}
	if g.EpochStart.After(since) {
		return g.EpochStart
	}
	return since
}

// ----- games ---------------------------------------------------------------

// runGames seeds the game registry. No fetch; the registry is configuration.
func (p *Pipeline) runGames(ctx context.Context) (*store.Result, error) {
	res := store.NewResult()
	for _, g := range p.games() {
		inserted, err := store.UpsertGame(ctx, p.db, store.Game{ID: g.ID, Name: g.Name, Wiki: g.Wiki})
		if err != nil {
			return res, fmt.Errorf("upsert game %s: %w", g.ID, err)
		}
		res.Record(inserted)
	}
	return res, nil
}

// ----- teams ---------------------------------------------------------------

func (p *Pipeline) runTeams(ctx context.Context) (*store.Result, error) {
	res := store.NewResult()
	for _, g := range p.games() {
		params := liquipedia.Params{
			Wiki:  g.Wiki,
			Query: "pagename, name, region, locations, status",
			Order: "name ASC",
		}
		err := p.source.FetchAll(ctx, "team", params, func(page []json.RawMessage) error {
			for _, raw := range page {
				var rec liquipedia.TeamRecord
				if err := json.Unmarshal(raw, &rec); err != nil {
					res.Skip("team: decode: %v", err)
					continue
				}
				name := strings.TrimSpace(rec.Name)
				if name == "" {
					name = pageToName(rec.Pagename)
				}
				if name == "" {
					res.Skip("team: missing name (page %q)", rec.Pagename)
					continue
				}
				_, inserted, err := store.UpsertTeam(ctx, p.db, store.Team{
					Name:      name,
					GameID:    g.ID,
					Region:    strings.TrimSpace(rec.Region),
					Location:  teamLocation(rec.Locations),
					Disbanded: strings.EqualFold(rec.Status, "disbanded"),
				})
				if store.IsForeignKeyViolation(err) {
					res.Skip("team %q: %v", name, err)
					continue
				}
				if err != nil {
					return fmt.Errorf("upsert team %q: %w", name, err)
				}
				res.Record(inserted)
			}
			return nil
		})
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// teamLocation picks the most specific location entry the record carries.
func teamLocation(locations map[string]string) string {
	for _, key := range []string{"city1", "country1", "region1"} {
		if v := strings.TrimSpace(locations[key]); v != "" {
			return v
		}
	}
	return ""
}

// ----- players -------------------------------------------------------------

func (p *Pipeline) runPlayers(ctx context.Context) (*store.Result, error) {
	res := store.NewResult()
	for _, g := range p.games() {
		params := liquipedia.Params{
			Wiki:       g.Wiki,
			Query:      "id, pagename, name, nationality, birthdate, status, type, extradata",
			Conditions: "[[status::Active]] AND [[type::Player]]",
			Order:      "id ASC",
		}
		err := p.source.FetchAll(ctx, "player", params, func(page []json.RawMessage) error {
			for _, raw := range page {
				var rec liquipedia.PlayerRecord
				if err := json.Unmarshal(raw, &rec); err != nil {
					res.Skip("player: decode: %v", err)
					continue
				}
				nickname := strings.TrimSpace(rec.ID)
				if nickname == "" {
					nickname = pageToName(rec.Pagename)
				}
				if nickname == "" {
					res.Skip("player: missing nickname (page %q)", rec.Pagename)
					continue
				}
				_, inserted, err := store.UpsertPlayer(ctx, p.db, store.Player{
					Nickname:    nickname,
					GameID:      g.ID,
					BirthDate:   parseDate(rec.BirthDate),
					Nationality: strings.TrimSpace(rec.Nationality),
					Status:      strings.TrimSpace(rec.Status),
					Role:        strings.TrimSpace(rec.Role()),
					Type:        strings.TrimSpace(rec.Type),
				})
				if store.IsForeignKeyViolation(err) {
					res.Skip("player %q: %v", nickname, err)
					continue
				}
				if err != nil {
					return fmt.Errorf("upsert player %q: %w", nickname, err)
				}
				res.Record(inserted)
			}
			return nil
		})
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// ----- tournaments ---------------------------------------------------------

// runTournaments buffers a game's records before writing because the
// tournament weight normalizes prize pools against the min and max observed
// in the same fetch.
func (p *Pipeline) runTournaments(ctx context.Context) (*store.Result, error) {
	res := store.NewResult()
	for _, g := range p.games() {
		since := p.sinceFor(g)
		params := liquipedia.Params{
			Wiki: g.Wiki,
			Query: "pagename, name, startdate, enddate, prizepool, " +
				"liquipediatier, type, locations, status",
			Conditions: fmt.Sprintf("[[startdate::>%s]] AND [[enddate::<%s]] AND [[liquipediatiertype::!Points]]",
				since.Format("2006-01-02"), p.now().Format("2006-01-02")),
			Order: "startdate ASC",
		}

		var records []liquipedia.TournamentRecord
		err := p.source.FetchAll(ctx, "tournament", params, func(page []json.RawMessage) error {
			for _, raw := range page {
				var rec liquipedia.TournamentRecord
				if err := json.Unmarshal(raw, &rec); err != nil {
					res.Skip("tournament: decode: %v", err)
					continue
				}
				records = append(records, rec)
			}
			return nil
		})
		if err != nil {
			return res, err
		}

		minPrize, maxPrize := prizeRange(records)
		for _, rec := range records {
			name := strings.TrimSpace(rec.Name)
			if name == "" {
				name = pageToName(rec.Pagename)
			}
			start := parseDate(rec.StartDate)
			if name == "" || start == nil {
				res.Skip("tournament %q: missing name or start date", rec.Pagename)
				continue
			}
			end := parseDate(rec.EndDate)
			if end == nil {
				end = start
			}
			var prize *float64
			if v := float64(rec.PrizePool); v > 0 {
				prize = &v
			}
			t := store.Tournament{
				Name:      name,
				GameID:    g.ID,
				Tier:      strings.TrimSpace(rec.Tier),
				StartDate: *start,
				EndDate:   *end,
				Type:      strings.TrimSpace(rec.Type),
				Region:    strings.TrimSpace(rec.Locations["region1"]),
				Location:  teamLocation(rec.Locations),
				PrizePool: prize,
				Weight:    tournamentWeight(rec.Tier, float64(rec.PrizePool), minPrize, maxPrize),
			}
			_, inserted, err := store.UpsertTournament(ctx, p.db, t)
			if store.IsForeignKeyViolation(err) {
				res.Skip("tournament %q: %v", name, err)
				continue
			}
			if err != nil {
				return res, fmt.Errorf("upsert tournament %q: %w", name, err)
			}
			res.Record(inserted)
		}
	}
	return res, nil
}

// prizeRange returns the min and max positive prize pools in the batch.
func prizeRange(records []liquipedia.TournamentRecord) (min, max float64) {
	first := true
	for _, rec := range records {
		v := float64(rec.PrizePool)
		if v <= 0 {
			continue
		}
		if first {
			min, max, first = v, v, false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// ----- rosters -------------------------------------------------------------

func (p *Pipeline) runRosters(ctx context.Context) (*store.Result, error) {
	res := store.NewResult()
	for _, g := range p.games() {
		params := liquipedia.Params{
			Wiki: g.Wiki,
			Query: "id, name, nationality, role, type, status, joindate, " +
				"leavedate, pagename, link, extradata",
			Conditions: "[[status::active]]",
			Order:      "pagename ASC",
		}
		err := p.source.FetchAll(ctx, "squadplayer", params, func(page []json.RawMessage) error {
			for _, raw := range page {
				var rec liquipedia.SquadRecord
				if err := json.Unmarshal(raw, &rec); err != nil {
					res.Skip("squad: decode: %v", err)
					continue
				}
				if err := p.upsertSquadEntry(ctx, g, rec, res); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Pipeline) upsertSquadEntry(ctx context.Context, g config.GameConfig, rec liquipedia.SquadRecord, res *store.Result) error {
	nickname := strings.TrimSpace(rec.ID)
	if nickname == "" {
		nickname = pageToName(rec.PlayerPagename())
	}
	if nickname == "" {
		res.Skip("squad: missing player id (team %q)", rec.Pagename)
		return nil
	}

	role := rec.EffectiveRole()
	staff := isStaffRole(role) || (rec.Type != "" && !strings.EqualFold(rec.Type, "player"))

	playerType := strings.TrimSpace(rec.Type)
	playerRole := role
	if staff {
		// Staff keep their role out of curr_role so the vocabulary pass
		// does not purge them; the type column records what they do.
		playerRole = ""
		if playerType == "" {
			playerType = "staff"
		}
	}
	playerID, _, err := store.UpsertPlayer(ctx, p.db, store.Player{
		Nickname:    nickname,
		GameID:      g.ID,
		Nationality: strings.TrimSpace(rec.Nationality),
		Status:      strings.TrimSpace(rec.Status),
		Role:        playerRole,
		Type:        playerType,
	})
	if store.IsForeignKeyViolation(err) {
		res.Skip("squad player %q: %v", nickname, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("upsert squad player %q: %w", nickname, err)
	}
	if staff {
		res.Skip("squad %q/%q: staff entry, player refreshed only", rec.Pagename, nickname)
		return nil
	}

	if leave := parseDate(rec.LeaveDate); leave != nil {
		res.Skip("squad %q/%q: departed %s", rec.Pagename, nickname, leave.Format("2006-01-02"))
		return nil
	}
	join := parseDate(rec.JoinDate)
	if join == nil {
		res.Skip("squad %q/%q: missing join date", rec.Pagename, nickname)
		return nil
	}

	teamName := pageToName(rec.Pagename)
	teamID, err := store.TeamIDByName(ctx, p.db, teamName, g.ID)
	if err != nil {
		if store.IsNotFound(err) {
			res.Skip("squad %q/%q: unknown team", teamName, nickname)
			return nil
		}
		return err
	}

	inserted, err := store.UpsertRoster(ctx, p.db, store.RosterEntry{
		TeamID:     teamID,
		PlayerID:   playerID,
		Nickname:   nickname,
		JoinDate:   *join,
		Substitute: strings.EqualFold(rec.Type, "substitute") || strings.Contains(strings.ToLower(role), "substitute"),
		Role:       role,
		Status:     "active",
	})
	if store.IsForeignKeyViolation(err) {
		res.Skip("roster %q/%q: %v", teamName, nickname, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("upsert roster %q/%q: %w", teamName, nickname, err)
	}
	res.Record(inserted)
	return nil
}

// ----- series --------------------------------------------------------------

func (p *Pipeline) runSeries(ctx context.Context) (*store.Result, error) {
	res := store.NewResult()
	for _, g := range p.games() {
		since := p.sinceFor(g)
		params := liquipedia.Params{
			Wiki: g.Wiki,
			Query: "match2id, tournament, date, match2opponents, winner, " +
				"bestof, walkover, liquipediatier",
			Conditions: fmt.Sprintf("[[finished::1]] AND [[date::>%s]]", since.Format("2006-01-02")),
			Order:      "date ASC",
		}
		// The source occasionally repeats a series across adjacent pages;
		// the first occurrence in a run wins.
		seen := make(map[string]bool)
		err := p.source.FetchAll(ctx, "match", params, func(page []json.RawMessage) error {
			for _, raw := range page {
				var rec liquipedia.MatchRecord
				if err := json.Unmarshal(raw, &rec); err != nil {
					res.Skip("match: decode: %v", err)
					continue
				}
				if rec.Match2ID == "" {
					res.Skip("match: missing match2id")
					continue
				}
				if seen[rec.Match2ID] {
					continue
				}
				seen[rec.Match2ID] = true
				if err := p.upsertSeriesRecord(ctx, g, rec, res); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Pipeline) upsertSeriesRecord(ctx context.Context, g config.GameConfig, rec liquipedia.MatchRecord, res *store.Result) error {
	date := parseTimestamp(rec.Date)
	if date == nil {
		res.Skip("match %s: missing date", rec.Match2ID)
		return nil
	}
	if len(rec.Opponents) < 2 {
		res.Skip("match %s: fewer than two opponents", rec.Match2ID)
		return nil
	}

	tournamentID, err := store.FindTournamentForDate(ctx, p.db, rec.Tournament, g.ID, *date)
	if err != nil {
		if store.IsNotFound(err) {
			res.Skip("match %s: tournament %q unresolved", rec.Match2ID, rec.Tournament)
			return nil
		}
		return err
	}

	team1Name := rec.Opponents[0].DisplayName()
	team2Name := rec.Opponents[1].DisplayName()
	team1ID, err1 := store.TeamIDByName(ctx, p.db, team1Name, g.ID)
	if err1 != nil && !store.IsNotFound(err1) {
		return err1
	}
	team2ID, err2 := store.TeamIDByName(ctx, p.db, team2Name, g.ID)
	if err2 != nil && !store.IsNotFound(err2) {
		return err2
	}
	if err1 != nil || err2 != nil {
		// Both sides must resolve; a series with one known team is
		// unrepresentable under the FK contract.
		res.Skip("match %s: unresolved opponent (%q, %q)", rec.Match2ID, team1Name, team2Name)
		return nil
	}

	var winner *int
	switch string(rec.Winner) {
	case "1":
		winner = &team1ID
	case "2":
		winner = &team2ID
	}

	inserted, err := store.UpsertSeries(ctx, p.db, store.Series{
		ID:           rec.Match2ID,
		TournamentID: tournamentID,
		GameID:       g.ID,
		Date:         *date,
		Team1ID:      team1ID,
		Team2ID:      team2ID,
		Team1Score:   int(rec.Opponents[0].Score),
		Team2Score:   int(rec.Opponents[1].Score),
		WinnerTeamID: winner,
		BestOf:       int(rec.BestOf),
		Forfeit:      strings.TrimSpace(string(rec.Walkover)) != "",
		Tier:         strings.TrimSpace(rec.Tier),
	})
	if store.IsForeignKeyViolation(err) {
		res.Skip("match %s: %v", rec.Match2ID, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("upsert series %s: %w", rec.Match2ID, err)
	}
	res.Record(inserted)
	return nil
}

// ----- placements ----------------------------------------------------------

func (p *Pipeline) runPlacements(ctx context.Context) (*store.Result, error) {
	res := store.NewResult()
	for _, g := range p.games() {
		since := p.sinceFor(g)
		params := liquipedia.Params{
			Wiki: g.Wiki,
			Query: "tournament, pagename, opponentname, placement, " +
				"prizemoney, prizemoneycurrency, date",
			Conditions: fmt.Sprintf("[[opponenttype::team]] AND [[date::>%s]]", since.Format("2006-01-02")),
			Order:      "date ASC",
		}
		err := p.source.FetchAll(ctx, "placement", params, func(page []json.RawMessage) error {
			for _, raw := range page {
				var rec liquipedia.PlacementRecord
				if err := json.Unmarshal(raw, &rec); err != nil {
					res.Skip("placement: decode: %v", err)
					continue
				}
				if err := p.upsertPlacementRecord(ctx, g, rec, res); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Pipeline) upsertPlacementRecord(ctx context.Context, g config.GameConfig, rec liquipedia.PlacementRecord, res *store.Result) error {
	lower, upper, err := parsePlacement(rec.Placement)
	if err != nil {
		res.Skip("placement %q: %v", rec.Tournament, err)
		return nil
	}
	date := parseTimestamp(rec.Date)
	if date == nil {
		res.Skip("placement %q: missing date", rec.Tournament)
		return nil
	}

	tournamentID, err := store.FindTournamentForDate(ctx, p.db, rec.Tournament, g.ID, *date)
	if err != nil {
		if store.IsNotFound(err) {
			res.Skip("placement: tournament %q unresolved", rec.Tournament)
			return nil
		}
		return err
	}

	teamName := strings.TrimSpace(rec.OpponentName)
	if teamName == "" {
		teamName = pageToName(rec.Pagename)
	}
	teamID, err := store.TeamIDByName(ctx, p.db, teamName, g.ID)
	if err != nil {
		if store.IsNotFound(err) {
			res.Skip("placement %q: unknown team %q", rec.Tournament, teamName)
			return nil
		}
		return err
	}

	var prize *float64
	if v := float64(rec.PrizeMoney); v > 0 {
		prize = &v
	}
	inserted, err := store.UpsertPlacement(ctx, p.db, store.Placement{
		TournamentID: tournamentID,
		TeamID:       teamID,
		Placement:    strings.TrimSpace(rec.Placement),
		Lower:        lower,
		Upper:        upper,
		PrizeMoney:   prize,
		Currency:     strings.TrimSpace(rec.Currency),
	})
	if store.IsForeignKeyViolation(err) {
		res.Skip("placement %q/%q: %v", rec.Tournament, teamName, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("upsert placement %q/%q: %w", rec.Tournament, teamName, err)
	}
	res.Record(inserted)
	return nil
}

// ----- mapstats ------------------------------------------------------------

func (p *Pipeline) runMapStats(ctx context.Context) (*store.Result, error) {
	res := store.NewResult()
	for _, g := range p.games() {
		since := p.sinceFor(g)
		params := liquipedia.Params{
			Wiki:       g.Wiki,
			Query:      "gameid, match2id, map, winner, scores, participants",
			Conditions: fmt.Sprintf("[[date::>%s]]", since.Format("2006-01-02")),
			Order:      "date ASC",
		}
		// Map number is positional within a series in fetch order.
		mapCount := make(map[string]int)
		err := p.source.FetchAll(ctx, "game", params, func(page []json.RawMessage) error {
			for _, raw := range page {
				var rec liquipedia.MapRecord
				if err := json.Unmarshal(raw, &rec); err != nil {
					res.Skip("game: decode: %v", err)
					continue
				}
				if err := p.upsertMapRecord(ctx, g, rec, mapCount, res); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Pipeline) upsertMapRecord(ctx context.Context, g config.GameConfig, rec liquipedia.MapRecord, mapCount map[string]int, res *store.Result) error {
	if rec.GameID == "" || rec.SeriesID == "" {
		res.Skip("game: missing id or series reference")
		return nil
	}

	team1ID, team2ID, err := p.seriesTeams(ctx, rec.SeriesID)
	if err != nil {
		if store.IsNotFound(err) {
			res.Skip("game %s: series %s not stored", rec.GameID, rec.SeriesID)
			return nil
		}
		return err
	}

	var winner *int
	switch string(rec.Winner) {
	case "1":
		winner = &team1ID
	case "2":
		winner = &team2ID
	}
	var score1, score2 int
	if len(rec.Scores) > 0 {
		score1 = int(rec.Scores[0])
	}
	if len(rec.Scores) > 1 {
		score2 = int(rec.Scores[1])
	}

	mapCount[rec.SeriesID]++
	inserted, err := store.UpsertPlayedMap(ctx, p.db, store.PlayedMap{
		ID:           rec.GameID,
		SeriesID:     rec.SeriesID,
		Name:         strings.TrimSpace(rec.MapName),
		Number:       mapCount[rec.SeriesID],
		Team1Score:   score1,
		Team2Score:   score2,
		WinnerTeamID: winner,
	})
	if store.IsForeignKeyViolation(err) || store.IsUniqueViolation(err) {
		res.Skip("game %s: %v", rec.GameID, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("upsert played map %s: %w", rec.GameID, err)
	}
	res.Record(inserted)

	// Participant keys are "teamslot_playerslot".
	keys := make([]string, 0, len(rec.Participants))
	for k := range rec.Participants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		part := rec.Participants[key]
		nickname := strings.TrimSpace(part.Player)
		if nickname == "" {
			continue
		}
		slot := liquipedia.TeamSlot(key)
		var teamID int
		switch slot {
		case 1:
			teamID = team1ID
		case 2:
			teamID = team2ID
		default:
			res.Skip("game %s: bad participant key %q", rec.GameID, key)
			continue
		}
		playerID, err := store.PlayerIDByNickname(ctx, p.db, nickname, g.ID)
		if err != nil {
			if store.IsNotFound(err) {
				res.Skip("game %s: unknown player %q", rec.GameID, nickname)
				continue
			}
			return err
		}
		inserted, err := store.UpsertMapStat(ctx, p.db, store.MapStat{
			MapID:       rec.GameID,
			PlayerID:    playerID,
			TeamID:      teamID,
			Kills:       int(part.Kills),
			Deaths:      int(part.Deaths),
			Assists:     int(part.Assists),
			ADR:         float64(part.ADR),
			HeadshotPct: float64(part.HeadshotPct),
			Agent:       strings.TrimSpace(part.Agent),
			Rating:      float64(part.Rating),
		})
		if store.IsForeignKeyViolation(err) {
			res.Skip("game %s/%q: %v", rec.GameID, nickname, err)
			continue
		}
		if err != nil {
			return fmt.Errorf("upsert map stat %s/%q: %w", rec.GameID, nickname, err)
		}
		res.Record(inserted)
	}
	return nil
}

// seriesTeams looks up the stored team sides of a series.
func (p *Pipeline) seriesTeams(ctx context.Context, seriesID string) (team1, team2 int, err error) {
	err = p.db.QueryRow(ctx,
		"SELECT team1_id, team2_id FROM match_series WHERE series_id = $1", seriesID,
	).Scan(&team1, &team2)
	if err != nil {
		if store.IsNoRows(err) {
			return 0, 0, fmt.Errorf("series %s: %w", seriesID, store.ErrNotFound)
		}
		return 0, 0, fmt.Errorf("lookup series %s: %w", seriesID, err)
	}
	return team1, team2, nil
}
