package directory

import (
	"strings"

	"github.com/mcoot/killergame/internal/model"
)

// Layout maps each known field to its column in the sheet
type Layout struct {
	columns map[model.Field]int
	width   int
}

// headerRule recognises a field from a folded header cell.
// Rules are tried in order: "surnom" and "prenom" both contain "nom",
// "killed by" contains "kill", so the more specific fields come first.
type headerRule struct {
	field    model.Field
	keywords []string
}

var headerRules = []headerRule{
	{model.FieldNickname, []string{"surnom", "nickname", "pseudo"}},
	{model.FieldPassword, []string{"mdp", "password", "mot de passe"}},
	{model.FieldFirstName, []string{"prenom", "first name", "firstname", "first_name"}},
	{model.FieldKilledBy, []string{"tue par", "killed by", "killed_by", "killedby"}},
	{model.FieldEliminationOrder, []string{"ordre", "elimination"}},
	{model.FieldKillCount, []string{"kill"}},
	{model.FieldPersonPhoto, []string{"visage", "face", "person"}},
	{model.FieldFeetPhoto, []string{"pied", "feet", "foot"}},
	{model.FieldTarget, []string{"cible", "target"}},
	{model.FieldAction, []string{"action", "defi"}},
	{model.FieldStatus, []string{"statut", "status", "etat"}},
	{model.FieldIsAdmin, []string{"admin"}},
	{model.FieldYear, []string{"annee", "year", "promo"}},
	{model.FieldName, []string{"nom", "name"}},
}

// DetectLayout finds the column of every recognised field in the header.
// The first column matching a field wins. A nickname column is required.
func DetectLayout(header []string) (Layout, error) {
	l := Layout{columns: make(map[model.Field]int), width: len(header)}
	for col, cell := range header {
		h := model.FoldNickname(cell)
		if h == "" {
			continue
		}
		for _, rule := range headerRules {
			if !containsAny(h, rule.keywords) {
				continue
			}
			if _, taken := l.columns[rule.field]; !taken {
				l.columns[rule.field] = col
			}
			break
		}
	}
	if _, ok := l.columns[model.FieldNickname]; !ok {
		return Layout{}, model.ErrInvalidLayout
	}
	return l, nil
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Column returns the column index of a field
func (l Layout) Column(f model.Field) (int, bool) {
	col, ok := l.columns[f]
	return col, ok
}

// Width is the number of header cells
func (l Layout) Width() int {
	return l.width
}

// Missing returns the given fields that have no column, in the order given
func (l Layout) Missing(fields []model.Field) []model.Field {
	var out []model.Field
	for _, f := range fields {
		if _, ok := l.columns[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// withAppended returns a copy of the layout with new columns after the last header cell
func (l Layout) withAppended(fields []model.Field) Layout {
	out := Layout{columns: make(map[model.Field]int, len(l.columns)+len(fields)), width: l.width}
	for f, c := range l.columns {
		out.columns[f] = c
	}
	for _, f := range fields {
		out.columns[f] = out.width
		out.width++
	}
	return out
}
