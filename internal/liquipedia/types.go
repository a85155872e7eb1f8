package liquipedia

import (
	"bytes"
	"strconv"
	"strings"
)

// Raw record shapes for the v3 endpoints the pipeline consumes. The API is
// loosely typed: numeric fields arrive as numbers or strings depending on
// the wiki, so scores and similar fields use the Flex types below.

// TeamRecord is one row from the /team endpoint.
type TeamRecord struct {
	Pagename  string            `json:"pagename"`
	Name      string            `json:"name"`
	Region    string            `json:"region"`
	Locations map[string]string `json:"locations"`
	Status    string            `json:"status"`
}

// PlayerRecord is one row from the /player endpoint.
type PlayerRecord struct {
	ID          string            `json:"id"` // in-game handle
	Pagename    string            `json:"pagename"`
	Name        string            `json:"name"`
	Nationality string            `json:"nationality"`
	BirthDate   string            `json:"birthdate"`
	Status      string            `json:"status"`
	Type        string            `json:"type"`
	Extradata   map[string]string `json:"extradata"`
}

// Role returns the player role, preferring extradata.role over
// extradata.role2.
func (r PlayerRecord) Role() string {
	if role := r.Extradata["role"]; role != "" {
		return role
	}
	return r.Extradata["role2"]
}

// TournamentRecord is one row from the /tournament endpoint.
type TournamentRecord struct {
	Pagename  string            `json:"pagename"`
	Name      string            `json:"name"`
	StartDate string            `json:"startdate"`
	EndDate   string            `json:"enddate"`
	PrizePool FlexFloat         `json:"prizepool"`
	Tier      string            `json:"liquipediatier"`
	Type      string            `json:"type"`
	Locations map[string]string `json:"locations"`
	Status    string            `json:"status"`
}

// SquadRecord is one row from the /squadplayer endpoint. Pagename is the
// team's page; ID is the player's handle.
type SquadRecord struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Nationality string            `json:"nationality"`
	Role        string            `json:"role"`
	Type        string            `json:"type"`
	Status      string            `json:"status"`
	JoinDate    string            `json:"joindate"`
	LeaveDate   string            `json:"leavedate"`
	NewTeam     string            `json:"newteam"`  // team template/display name
	Pagename    string            `json:"pagename"` // team page
	Link        string            `json:"link"`     // player page path
	Extradata   map[string]string `json:"extradata"`
}

// PlayerPagename derives the player's own page name from the link field.
func (r SquadRecord) PlayerPagename() string {
	if i := strings.LastIndex(r.Link, "/"); i >= 0 {
		return r.Link[i+1:]
	}
	return r.Link
}

// EffectiveRole falls back to extradata when the primary role field is empty.
func (r SquadRecord) EffectiveRole() string {
	if role := strings.TrimSpace(r.Role); role != "" {
		return role
	}
	if role := r.Extradata["role"]; role != "" {
		return strings.TrimSpace(role)
	}
	return strings.TrimSpace(r.Extradata["role2"])
}

// MatchOpponent is one entry of a match's match2opponents array.
type MatchOpponent struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Pagename string  `json:"pagename"`
	Score    FlexInt `json:"score"`
}

// DisplayName resolves the opponent team name, underscores normalized.
func (o MatchOpponent) DisplayName() string {
	raw := o.Name
	if raw == "" {
		raw = o.Pagename
	}
	if raw == "" {
		raw = o.ID
	}
	return strings.TrimSpace(strings.ReplaceAll(raw, "_", " "))
}

// MatchRecord is one row from the /match endpoint (a whole series).
type MatchRecord struct {
	Match2ID   string          `json:"match2id"`
	Tournament string          `json:"tournament"`
	Date       string          `json:"date"`
	Opponents  []MatchOpponent `json:"match2opponents"`
	Winner     FlexString      `json:"winner"`
	BestOf     FlexInt         `json:"bestof"`
	Walkover   FlexString      `json:"walkover"`
	Tier       string          `json:"liquipediatier"`
}

// PlacementRecord is one row from the /placement endpoint.
type PlacementRecord struct {
	Tournament   string    `json:"tournament"`
	Pagename     string    `json:"pagename"`
	OpponentName string    `json:"opponentname"`
	Placement    string    `json:"placement"`
	PrizeMoney   FlexFloat `json:"prizemoney"`
	Currency     string    `json:"prizemoneycurrency"`
	Date         string    `json:"date"`
}

// MapParticipant is one player's line on a played map.
type MapParticipant struct {
	Player      string    `json:"player"`
	Kills       FlexInt   `json:"kills"`
	Deaths      FlexInt   `json:"deaths"`
	Assists     FlexInt   `json:"assists"`
	ADR         FlexFloat `json:"adr"`
	HeadshotPct FlexFloat `json:"headshot_percentage"`
	Agent       string    `json:"agent"`
	Rating      FlexFloat `json:"rating"`
}

// MapRecord is one row from the /game endpoint (a single played map).
// Participant keys look like "1_2": team slot, then player slot.
type MapParticipants map[string]MapParticipant

type MapRecord struct {
	GameID       string          `json:"gameid"`
	SeriesID     string          `json:"match2id"`
	MapName      string          `json:"map"`
	Winner       FlexString      `json:"winner"`
	Scores       []FlexInt       `json:"scores"`
	Participants MapParticipants `json:"participants"`
}

// TeamSlot parses the team slot (1 or 2) from a participants key.
func TeamSlot(key string) int {
	idx := strings.IndexByte(key, '_')
	if idx <= 0 {
		return 0
	}
	n, err := strconv.Atoi(key[:idx])
	if err != nil {
		return 0
	}
	return n
}

// --------------------------------------------------------------------------
// Flex types — tolerate string-or-number JSON encodings
// --------------------------------------------------------------------------

// FlexInt decodes from a JSON number or numeric string. Empty strings and
// null decode to zero.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = unquote(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(int(n))
	return nil
}

// FlexFloat decodes from a JSON number or numeric string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = unquote(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(n)
	return nil
}

// FlexString decodes from a JSON string or number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	*f = FlexString(bytes.TrimSpace(unquote(data)))
	return nil
}

func unquote(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		return data[1 : len(data)-1]
	}
	return data
}
