package models

import "time"

// Status — статус обращения. Переходы свободные: любой допущенный сотрудник
// может выставить любой статус в любой момент.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusSpam       Status = "spam"
)

var statusLabels = map[Status]string{
	StatusNew:        "Новое",
	StatusInProgress: "В работе",
	StatusResolved:   "Решено",
	StatusSpam:       "Спам",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, st.Valid()
}

func AllStatuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusResolved, StatusSpam}
}

// ProblemType — тип проблемы, выбирается на первом шаге анкеты.
type ProblemType string

const (
	ProblemBullying       ProblemType = "bullying"
	ProblemExtortion      ProblemType = "extortion"
	ProblemViolence       ProblemType = "violence"
	ProblemDiscrimination ProblemType = "discrimination"
	ProblemAcademic       ProblemType = "academic"
	ProblemOther          ProblemType = "other"
)

var problemTypeLabels = map[ProblemType]string{
	ProblemBullying:       "Буллинг",
	ProblemExtortion:      "Вымогательство",
	ProblemViolence:       "Насилие",
	ProblemDiscrimination: "Дискриминация",
	ProblemAcademic:       "Академические проблемы",
	ProblemOther:          "Другое",
}

func (p ProblemType) Valid() bool {
	_, ok := problemTypeLabels[p]
	return ok
}

func (p ProblemType) Label() string {
	if l, ok := problemTypeLabels[p]; ok {
		return l
	}
	return string(p)
}

func ParseProblemType(s string) (ProblemType, bool) {
	p := ProblemType(s)
	return p, p.Valid()
}

func AllProblemTypes() []ProblemType {
	return []ProblemType{ProblemBullying, ProblemExtortion, ProblemViolence, ProblemDiscrimination, ProblemAcademic, ProblemOther}
}

// Report — анонимное обращение. Создаётся только через публичную анкету,
// после создания отправителем не редактируется.
type Report struct {
	ID          int64
	Problem     string
	Help        string
	Contact     string
	ProblemType ProblemType
	Status      Status
	SchoolID    *int64 // NULL — обращение в районный отдел
	SchoolName  string // подтягивается JOIN'ом, пустая строка для общих обращений
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SchoolLabel — имя школы для карточек и уведомлений.
func (r *Report) SchoolLabel() string {
	if r.SchoolID == nil || r.SchoolName == "" {
		return "Районный отдел образования"
	}
	return r.SchoolName
}

// InternalComment — внутренняя заметка персонала, только добавление.
type InternalComment struct {
	ID         int64
	ReportID   int64
	AuthorID   *int64 // NULL после удаления автора
	AuthorName string
	Text       string
	CreatedAt  time.Time
}
