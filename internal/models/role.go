package models

// Role — закрытый набор ролей персонала. Анонимный отправитель аккаунта не имеет.
type Role string

const (
	SuperAdmin    Role = "super_admin"
	DistrictAdmin Role = "district_admin"
	Teacher       Role = "teacher"
)

var roleLabels = map[Role]string{
	SuperAdmin:    "Супер-админ",
	DistrictAdmin: "Районный отдел",
	Teacher:       "Учитель",
}

func (r Role) IsStaff() bool {
	switch r {
	case SuperAdmin, DistrictAdmin, Teacher:
		return true
	}
	return false
}

func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// ParseRole принимает только значения из закрытого набора.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsStaff()
}

// AllRoles — порядок фиксированный, используется в формах и экспорте.
func AllRoles() []Role {
	return []Role{SuperAdmin, DistrictAdmin, Teacher}
}
