package allocation

import "github.com/noah-isme/exam-logistics-api/internal/models"

// AllocateDuties staffs sessions in order. Each slot goes to the least-loaded invigilator
// not already on that session; ties go to the earliest invigilator in input order.
// Sessions that cannot be filled report a shortfall instead of failing.
func AllocateDuties(invigilators []models.Invigilator, sessions []models.Session) []models.SessionDuty {
	loads := make([]int, len(invigilators))
	duties := make([]models.SessionDuty, 0, len(sessions))
	for _, session := range sessions {
		duty := models.SessionDuty{Session: session, Assigned: []models.Invigilator{}}
		used := make(map[int]bool, session.Required)
		for slot := 0; slot < session.Required; slot++ {
			pick := -1
			for i := range invigilators {
				if used[i] {
					continue
				}
				if pick < 0 || loads[i] < loads[pick] {
					pick = i
				}
			}
			if pick < 0 {
				break
			}
			used[pick] = true
			loads[pick]++
			duty.Assigned = append(duty.Assigned, invigilators[pick])
		}
		duty.Shortfall = session.Required - len(duty.Assigned)
		duties = append(duties, duty)
	}
	return duties
}
