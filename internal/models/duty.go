package models

// SessionDuty is the staffing outcome for one session.
type SessionDuty struct {
	Session   Session       `json:"session"`
	Assigned  []Invigilator `json:"assigned"`
	Shortfall int           `json:"shortfall"`
}

// InvigilatorLoad counts sessions held by one invigilator.
type InvigilatorLoad struct {
	Invigilator Invigilator `json:"invigilator"`
	Sessions    []string    `json:"sessions"`
	Load        int         `json:"load"`
}

// DutyRoster is the assembled duty allocation with load and staffing summaries.
type DutyRoster struct {
	Sessions     []SessionDuty     `json:"sessions"`
	Loads        []InvigilatorLoad `json:"loads"`
	Understaffed []string          `json:"understaffed"`
}
