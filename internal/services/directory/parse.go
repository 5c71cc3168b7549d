package directory

import (
	"strconv"
	"strings"

	"github.com/mcoot/killergame/internal/model"
)

// ParseRow turns one sheet row into a Player. It is the only place where
// missing or malformed cells are defaulted: text to "", numbers to 0,
// admin to false and status to alive. Rows without a nickname are skipped.
func ParseRow(l Layout, row int, cells []string) (model.Player, bool) {
	get := func(f model.Field) string {
		col, ok := l.Column(f)
		if !ok || col >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[col])
	}

	nickname := get(model.FieldNickname)
	if nickname == "" {
		return model.Player{}, false
	}

	return model.Player{
		Row:              row,
		Nickname:         nickname,
		Password:         get(model.FieldPassword),
		Name:             get(model.FieldName),
		FirstName:        get(model.FieldFirstName),
		Year:             get(model.FieldYear),
		PersonPhoto:      get(model.FieldPersonPhoto),
		FeetPhoto:        get(model.FieldFeetPhoto),
		Target:           get(model.FieldTarget),
		Action:           get(model.FieldAction),
		Status:           ParseStatus(get(model.FieldStatus)),
		KillCount:        max(parseInt(get(model.FieldKillCount)), 0),
		EliminationOrder: parseInt(get(model.FieldEliminationOrder)),
		KilledBy:         get(model.FieldKilledBy),
		IsAdmin:          parseBool(get(model.FieldIsAdmin)),
	}, true
}

// ParseStatus reads a status cell in English or French; anything unknown is alive
func ParseStatus(s string) model.Status {
	switch model.FoldNickname(s) {
	case "dead", "mort", "morte", "killed":
		return model.StatusDead
	case "gaveup", "gave up", "give up", "abandon", "abandonne", "abandonnee":
		return model.StatusGaveUp
	default:
		return model.StatusAlive
	}
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseBool(s string) bool {
	switch model.FoldNickname(s) {
	case "true", "1", "yes", "oui", "vrai", "x":
		return true
	}
	return false
}

// FormatInt is the cell form of a counter
func FormatInt(n int) string {
	return strconv.Itoa(n)
}

// FormatBool is the cell form of a flag
func FormatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
