package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/killergame/internal/model"
)

func TestDetectLayoutFrenchHeader(t *testing.T) {
	header := []string{
		"Horodateur", "Nom", "Prénom", "Surnom", "MDP", "Année",
		"Photo visage", "Photo pieds", "Cible actuelle", "Action actuelle",
		"Statut", "Nombre de kills", "Ordre d'élimination", "Tué par", "Admin",
	}
	l, err := DetectLayout(header)
	require.NoError(t, err)

	want := map[model.Field]int{
		model.FieldName:             1,
		model.FieldFirstName:        2,
		model.FieldNickname:         3,
		model.FieldPassword:         4,
		model.FieldYear:             5,
		model.FieldPersonPhoto:      6,
		model.FieldFeetPhoto:        7,
		model.FieldTarget:           8,
		model.FieldAction:           9,
		model.FieldStatus:           10,
		model.FieldKillCount:        11,
		model.FieldEliminationOrder: 12,
		model.FieldKilledBy:         13,
		model.FieldIsAdmin:          14,
	}
	for f, col := range want {
		got, ok := l.Column(f)
		assert.True(t, ok, "field %s", f)
		assert.Equal(t, col, got, "field %s", f)
	}
}

func TestDetectLayoutCanonicalHeader(t *testing.T) {
	header := model.CanonicalHeader()
	l, err := DetectLayout(header)
	require.NoError(t, err)

	for i, h := range header {
		col, ok := l.Column(model.Field(h))
		assert.True(t, ok, h)
		assert.Equal(t, i, col, h)
	}
}

func TestDetectLayoutFirstColumnWins(t *testing.T) {
	l, err := DetectLayout([]string{"Nickname", "Target", "Previous target"})
	require.NoError(t, err)
	col, _ := l.Column(model.FieldTarget)
	assert.Equal(t, 1, col)
}

func TestDetectLayoutRequiresNickname(t *testing.T) {
	_, err := DetectLayout([]string{"Nom", "MDP"})
	assert.ErrorIs(t, err, model.ErrInvalidLayout)
}

func TestParseRowDefaultsShortRows(t *testing.T) {
	l, err := DetectLayout(model.CanonicalHeader())
	require.NoError(t, err)

	p, ok := ParseRow(l, 7, []string{" alice ", "pw"})
	require.True(t, ok)
	assert.Equal(t, 7, p.Row)
	assert.Equal(t, "alice", p.Nickname)
	assert.Equal(t, "pw", p.Password)
	assert.Equal(t, "", p.Target)
	assert.Equal(t, model.StatusAlive, p.Status)
	assert.Equal(t, 0, p.KillCount)
	assert.Equal(t, 0, p.EliminationOrder)
	assert.False(t, p.IsAdmin)
}

func TestParseRowMalformedCells(t *testing.T) {
	l, _ := DetectLayout(model.CanonicalHeader())
	cells := make([]string, 14)
	cells[0] = "bob"
	cells[9] = "MORT"
	cells[10] = "-3"
	cells[11] = "abc"
	cells[13] = "oui"

	p, ok := ParseRow(l, 1, cells)
	require.True(t, ok)
	assert.Equal(t, model.StatusDead, p.Status)
	assert.Equal(t, 0, p.KillCount)
	assert.Equal(t, 0, p.EliminationOrder)
	assert.True(t, p.IsAdmin)
}

func TestParseRowNotParticipating(t *testing.T) {
	l, _ := DetectLayout(model.CanonicalHeader())
	cells := make([]string, 14)
	cells[0] = "referee"
	cells[11] = "-1"

	p, _ := ParseRow(l, 1, cells)
	assert.False(t, p.IsParticipating())
}

func TestParseRowSkipsBlankNickname(t *testing.T) {
	l, _ := DetectLayout(model.CanonicalHeader())
	_, ok := ParseRow(l, 1, []string{"   ", "pw"})
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, model.StatusDead, ParseStatus("dead"))
	assert.Equal(t, model.StatusDead, ParseStatus("Morte"))
	assert.Equal(t, model.StatusGaveUp, ParseStatus("gaveup"))
	assert.Equal(t, model.StatusGaveUp, ParseStatus("Abandonné"))
	assert.Equal(t, model.StatusAlive, ParseStatus(""))
	assert.Equal(t, model.StatusAlive, ParseStatus("vivant"))
}
