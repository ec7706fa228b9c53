package domain

import "time"

type CaseType string

const (
	CaseTypeAccess        CaseType = "Access"
	CaseTypeMail          CaseType = "Mail"
	CaseTypeFeedback      CaseType = "Feedback"
	CaseTypeExcel         CaseType = "Excel"
	CaseTypeIpacs         CaseType = "Ipacs"
	CaseTypeRemboursement CaseType = "Remboursement"
	CaseTypeUrgence       CaseType = "Urgence"
)

var CaseTypes = []CaseType{
	CaseTypeAccess,
	CaseTypeMail,
	CaseTypeFeedback,
	CaseTypeExcel,
	CaseTypeIpacs,
	CaseTypeRemboursement,
	CaseTypeUrgence,
}

// PerformanceRecord est la saisie journalière d'un agent. Immuable après création.
type PerformanceRecord struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	UserID      int64     `json:"userID"`
	UserName    string    `json:"userName"`
	Team        string    `json:"team"`
	CaseType    CaseType  `json:"caseType"`
	Resolved    int       `json:"resolved"`
	Unreachable int       `json:"unreachable"`
	Untreated   int       `json:"untreated"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Les compteurs négatifs sont ramenés à zéro, jamais rejetés.
func (p *PerformanceRecord) ResolvedCount() int    { return nonNegative(p.Resolved) }
func (p *PerformanceRecord) UnreachableCount() int { return nonNegative(p.Unreachable) }
func (p *PerformanceRecord) UntreatedCount() int   { return nonNegative(p.Untreated) }

func (p *PerformanceRecord) TotalCases() int {
	return p.ResolvedCount() + p.UnreachableCount() + p.UntreatedCount()
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
