package liquipedia

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexTypesTolerateStringsAndNumbers(t *testing.T) {
	var rec MatchRecord
	raw := `{
		"match2id": "m1",
		"winner": 1,
		"bestof": "3",
		"walkover": "",
		"match2opponents": [
			{"name": "Team_A", "score": "2"},
			{"name": "Team B", "score": 1}
		]
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, FlexString("1"), rec.Winner)
	assert.Equal(t, FlexInt(3), rec.BestOf)
	assert.Equal(t, FlexString(""), rec.Walkover)
	require.Len(t, rec.Opponents, 2)
	assert.Equal(t, FlexInt(2), rec.Opponents[0].Score)
	assert.Equal(t, "Team A", rec.Opponents[0].DisplayName())
	assert.Equal(t, "Team B", rec.Opponents[1].DisplayName())
}

func TestFlexIntGarbageDecodesToZero(t *testing.T) {
	var f FlexInt
	require.NoError(t, f.UnmarshalJSON([]byte(`"W"`)))
	assert.Equal(t, FlexInt(0), f)
}

func TestPlayerRecordRoleFallback(t *testing.T) {
	rec := PlayerRecord{Extradata: map[string]string{"role2": "awper"}}
	assert.Equal(t, "awper", rec.Role())

	rec.Extradata["role"] = "igl"
	assert.Equal(t, "igl", rec.Role())
}

func TestSquadRecordPlayerPagename(t *testing.T) {
	rec := SquadRecord{Link: "Natus_Vincere/s1mple"}
	assert.Equal(t, "s1mple", rec.PlayerPagename())

	rec = SquadRecord{Link: "s1mple"}
	assert.Equal(t, "s1mple", rec.PlayerPagename())
}

func TestTeamSlot(t *testing.T) {
	assert.Equal(t, 1, TeamSlot("1_3"))
	assert.Equal(t, 2, TeamSlot("2_1"))
	assert.Equal(t, 0, TeamSlot("bogus"))
	assert.Equal(t, 0, TeamSlot("_2"))
}
