package model

// Field identifies a column of a player record
type Field string

const (
	FieldNickname         Field = "nickname"
	FieldPassword         Field = "password"
	FieldName             Field = "name"
	FieldFirstName        Field = "first_name"
	FieldYear             Field = "year"
	FieldPersonPhoto      Field = "person_photo"
	FieldFeetPhoto        Field = "feet_photo"
	FieldTarget           Field = "target"
	FieldAction           Field = "action"
	FieldStatus           Field = "status"
	FieldKillCount        Field = "kill_count"
	FieldEliminationOrder Field = "elimination_order"
	FieldKilledBy         Field = "killed_by"
	FieldIsAdmin          Field = "is_admin"
)

// CanonicalHeader returns the column order used by stores that own their layout
func CanonicalHeader() []string {
	return []string{
		string(FieldNickname),
		string(FieldPassword),
		string(FieldName),
		string(FieldFirstName),
		string(FieldYear),
		string(FieldPersonPhoto),
		string(FieldFeetPhoto),
		string(FieldTarget),
		string(FieldAction),
		string(FieldStatus),
		string(FieldKillCount),
		string(FieldEliminationOrder),
		string(FieldKilledBy),
		string(FieldIsAdmin),
	}
}

// GameFields are the columns written by game transitions
func GameFields() []Field {
	return []Field{
		FieldTarget,
		FieldAction,
		FieldStatus,
		FieldKillCount,
		FieldEliminationOrder,
		FieldKilledBy,
	}
}
