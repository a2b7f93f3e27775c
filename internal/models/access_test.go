package models

import "testing"

func ptr(v int64) *int64 { return &v }

func TestCanViewReport(t *testing.T) {
	schoolA := ptr(1)
	schoolB := ptr(2)

	reportA := &Report{ID: 10, SchoolID: schoolA}
	reportB := &Report{ID: 11, SchoolID: schoolB}
	general := &Report{ID: 12, SchoolID: nil}

	t.Run("teacher_only_own_school", func(t *testing.T) {
		u := &User{Role: Teacher, SchoolID: schoolA}
		if !CanViewReport(u, reportA) {
			t.Fatal("учитель должен видеть обращения своей школы")
		}
		if CanViewReport(u, reportB) {
			t.Fatal("учитель не должен видеть обращения чужой школы")
		}
		if CanViewReport(u, general) {
			t.Fatal("учитель не должен видеть общие обращения")
		}
	})

	t.Run("teacher_without_school_sees_nothing", func(t *testing.T) {
		u := &User{Role: Teacher}
		if CanViewReport(u, reportA) || CanViewReport(u, general) {
			t.Fatal("учитель без школы не имеет доступа к обращениям")
		}
	})

	t.Run("admin_roles_see_everything", func(t *testing.T) {
		for _, role := range []Role{SuperAdmin, DistrictAdmin} {
			u := &User{Role: role}
			for _, r := range []*Report{reportA, reportB, general} {
				if !CanViewReport(u, r) {
					t.Fatalf("роль %s должна видеть обращение #%d", role, r.ID)
				}
			}
		}
	})

	t.Run("non_staff_denied", func(t *testing.T) {
		if CanViewReport(nil, reportA) {
			t.Fatal("nil-пользователь не имеет доступа")
		}
		if CanViewReport(&User{Role: Role("student")}, reportA) {
			t.Fatal("неизвестная роль не имеет доступа")
		}
	})

	t.Run("mutate_matches_view", func(t *testing.T) {
		u := &User{Role: Teacher, SchoolID: schoolA}
		if CanMutateReport(u, reportA) != CanViewReport(u, reportA) {
			t.Fatal("правила просмотра и изменения должны совпадать")
		}
		if CanMutateReport(u, reportB) {
			t.Fatal("учитель не может менять чужое обращение")
		}
	})
}

func TestAssignableRoles(t *testing.T) {
	t.Run("super_admin_assigns_all", func(t *testing.T) {
		u := &User{Role: SuperAdmin}
		if !CanAssignRole(u, SuperAdmin) || !CanAssignRole(u, DistrictAdmin) || !CanAssignRole(u, Teacher) {
			t.Fatal("супер-админ назначает любую роль")
		}
	})

	t.Run("district_admin_assigns_only_teacher", func(t *testing.T) {
		u := &User{Role: DistrictAdmin}
		if !CanAssignRole(u, Teacher) {
			t.Fatal("районный отдел может создавать учителей")
		}
		if CanAssignRole(u, SuperAdmin) || CanAssignRole(u, DistrictAdmin) {
			t.Fatal("районный отдел не может назначать админские роли")
		}
	})

	t.Run("teacher_assigns_nothing", func(t *testing.T) {
		u := &User{Role: Teacher}
		if len(AssignableRoles(u)) != 0 {
			t.Fatal("учитель не управляет учётными записями")
		}
	})
}

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		if got, ok := ParseStatus(string(s)); !ok || got != s {
			t.Fatalf("статус %q должен приниматься", s)
		}
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Fatal("неизвестный статус должен отклоняться")
	}
	if _, ok := ParseStatus(""); ok {
		t.Fatal("пустой статус должен отклоняться")
	}
}

func TestParseProblemType(t *testing.T) {
	for _, p := range AllProblemTypes() {
		if got, ok := ParseProblemType(string(p)); !ok || got != p {
			t.Fatalf("тип %q должен приниматься", p)
		}
	}
	if _, ok := ParseProblemType("hacking"); ok {
		t.Fatal("неизвестный тип должен отклоняться")
	}
}

func TestReportSchoolLabel(t *testing.T) {
	r := &Report{SchoolID: ptr(3), SchoolName: "Школа №1"}
	if r.SchoolLabel() != "Школа №1" {
		t.Fatalf("ожидали имя школы, получили %q", r.SchoolLabel())
	}
	g := &Report{}
	if g.SchoolLabel() != "Районный отдел образования" {
		t.Fatalf("ожидали районный отдел, получили %q", g.SchoolLabel())
	}
}
