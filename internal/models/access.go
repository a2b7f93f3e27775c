package models

// Единая точка проверки прав. Все хендлеры (веб и бот) должны ходить сюда,
// а не сравнивать role по месту.

// CanViewReport — учитель видит только обращения своей школы,
// админские роли — все, включая общие (school_id IS NULL).
func CanViewReport(u *User, r *Report) bool {
	if u == nil || !u.Role.IsStaff() {
		return false
	}
	switch u.Role {
	case SuperAdmin, DistrictAdmin:
		return true
	case Teacher:
		if u.SchoolID == nil || r.SchoolID == nil {
			return false
		}
		return *u.SchoolID == *r.SchoolID
	}
	return false
}

// CanMutateReport — правило то же, что и для просмотра: кто видит, тот и
// меняет статус и пишет комментарии.
func CanMutateReport(u *User, r *Report) bool {
	return CanViewReport(u, r)
}

// CanManageSchools — справочник школ ведут обе админские роли.
func CanManageSchools(u *User) bool {
	return u != nil && (u.Role == SuperAdmin || u.Role == DistrictAdmin)
}

// CanManageUsers — учётные записи ведут обе админские роли;
// какие роли можно назначать — см. AssignableRoles.
func CanManageUsers(u *User) bool {
	return u != nil && (u.Role == SuperAdmin || u.Role == DistrictAdmin)
}

// AssignableRoles — районный отдел создаёт и правит только учителей.
// Назначить super_admin или district_admin может только super_admin.
func AssignableRoles(u *User) []Role {
	if u == nil {
		return nil
	}
	switch u.Role {
	case SuperAdmin:
		return AllRoles()
	case DistrictAdmin:
		return []Role{Teacher}
	}
	return nil
}

func CanAssignRole(u *User, r Role) bool {
	for _, allowed := range AssignableRoles(u) {
		if allowed == r {
			return true
		}
	}
	return false
}

// SeesAllSchools — для списков и статистики: нужен ли фильтр по школе.
func SeesAllSchools(u *User) bool {
	return u != nil && (u.Role == SuperAdmin || u.Role == DistrictAdmin)
}
