package service

import (
	"sort"
	"time"

	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pipeline"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
)

// DashboardService 仪表盘汇总。和列表页一样全量拉内存里算，
// 数据量在这个产品的规模下可控。
type DashboardService struct {
	leadRepo     *repository.LeadRepository
	callRepo     *repository.CallRepository
	teamRepo     *repository.TeamRepository
	analysisRepo *repository.AnalysisRepository
}

func NewDashboardService(leadRepo *repository.LeadRepository, callRepo *repository.CallRepository, teamRepo *repository.TeamRepository, analysisRepo *repository.AnalysisRepository) *DashboardService {
	return &DashboardService{
		leadRepo:     leadRepo,
		callRepo:     callRepo,
		teamRepo:     teamRepo,
		analysisRepo: analysisRepo,
	}
}

// Summary 仪表盘汇总数据
func (s *DashboardService) Summary(companyID int64, q *dto.DashboardQuery) (*dto.DashboardResponse, error) {
	managers, err := s.teamRepo.ListManagers(companyID)
	if err != nil {
		return nil, err
	}
	employees, err := s.teamRepo.ListEmployees(companyID)
	if err != nil {
		return nil, err
	}
	roster := pipeline.BuildRoster(managers, employees)

	leads, err := s.leadRepo.ListAll(companyID)
	if err != nil {
		return nil, err
	}
	calls, err := s.callRepo.ListAll(companyID)
	if err != nil {
		return nil, err
	}

	var dateRange pipeline.DateRange
	if q.DatePreset != "" {
		dateRange = pipeline.PresetRange(q.DatePreset, time.Now())
	}

	leadByID := make(map[int64]*model.Lead, len(leads))
	for _, l := range leads {
		leadByID[l.ID] = l
	}

	resp := &dto.DashboardResponse{
		OutcomeCounts: map[string]int{},
	}
	type agentAcc struct {
		role          string
		leadCount     int
		callCount     int
		answeredCalls int
		talkSecs      int
	}
	agents := map[string]*agentAcc{}
	acc := func(owner pipeline.Owner) *agentAcc {
		name := owner.Name()
		a, ok := agents[name]
		if !ok {
			a = &agentAcc{}
			if owner.Employee != nil {
				a.role = model.RoleEmployee
			} else if owner.Manager != nil {
				a.role = model.RoleManager
			}
			agents[name] = a
		}
		return a
	}

	for _, l := range leads {
		owner := roster.ResolveOwner(l.AssignedTo, l.UserID)
		if !ownerSelected(owner, q.ManagerID, q.EmployeeID, roster) {
			continue
		}
		if !dateRange.IsZero() && !dateRange.Contains(l.CreatedAt.Format(time.RFC3339)) {
			continue
		}

		resp.TotalLeads++
		switch l.Status {
		case model.LeadStatusActive:
			resp.ActiveLeads++
		case model.LeadStatusConverted:
			resp.ConvertedLeads++
		case model.LeadStatusUnassigned:
			resp.UnassignedLeads++
		}
		acc(owner).leadCount++
	}

	var selectedCallIDs []int64
	for _, c := range calls {
		employeeID := c.EmployeeID
		owner := roster.ResolveOwner(nil, &employeeID)
		if owner.Unassigned() {
			if l, ok := leadByID[c.LeadID]; ok {
				owner = roster.ResolveOwner(l.AssignedTo, l.UserID)
			}
		}
		if !ownerSelected(owner, q.ManagerID, q.EmployeeID, roster) {
			continue
		}
		if !dateRange.IsZero() && !dateRange.Contains(c.CallDate) {
			continue
		}

		selectedCallIDs = append(selectedCallIDs, c.ID)
		resp.TotalCalls++
		outcome := model.NormalizeOutcome(c.Outcome)
		resp.OutcomeCounts[outcome]++

		a := acc(owner)
		a.callCount++
		if outcomeAnswered(c.Outcome) {
			resp.AnsweredCalls++
			a.answeredCalls++
			a.talkSecs += c.DurationSeconds
		}
	}

	if resp.TotalLeads > 0 {
		resp.ConversionRate = float64(resp.ConvertedLeads) / float64(resp.TotalLeads)
	}

	analysisByCall, err := s.analysisRepo.ListByCallIDs(companyID, selectedCallIDs)
	if err != nil {
		return nil, err
	}
	var completed, sentiment, engagement, confidence, closure int
	for _, a := range analysisByCall {
		if a.Status != model.AnalysisStatusCompleted {
			continue
		}
		completed++
		sentiment += a.SentimentScore
		engagement += a.EngagementScore
		confidence += a.ConfidenceScore
		closure += a.ClosureProbability
	}
	if completed > 0 {
		n := float64(completed)
		resp.ScoreAverages = &dto.ScoreAverages{
			AnalyzedCalls:      completed,
			Sentiment:          float64(sentiment) / n,
			Engagement:         float64(engagement) / n,
			Confidence:         float64(confidence) / n,
			ClosureProbability: float64(closure) / n,
		}
	}

	resp.AgentStats = make([]dto.AgentStatItem, 0, len(agents))
	for name, a := range agents {
		resp.AgentStats = append(resp.AgentStats, dto.AgentStatItem{
			Name:          name,
			Role:          a.role,
			LeadCount:     a.leadCount,
			CallCount:     a.callCount,
			AnsweredCalls: a.answeredCalls,
			TotalTalkSecs: a.talkSecs,
		})
	}
	// 通话多的排前面，同量按名字稳定
	sort.SliceStable(resp.AgentStats, func(i, j int) bool {
		if resp.AgentStats[i].CallCount != resp.AgentStats[j].CallCount {
			return resp.AgentStats[i].CallCount > resp.AgentStats[j].CallCount
		}
		return resp.AgentStats[i].Name < resp.AgentStats[j].Name
	})

	return resp, nil
}

// ownerSelected 归属是否命中经理/员工筛选
func ownerSelected(owner pipeline.Owner, managerID, employeeID int64, roster *pipeline.Roster) bool {
	if employeeID != 0 &&
		(owner.Employee == nil || owner.Employee.UserID != employeeID) {
		return false
	}
	if managerID != 0 {
		if owner.Manager != nil && owner.Manager.ID == managerID {
			return true
		}
		if owner.Employee != nil {
			if m := roster.ManagerOf(owner.Employee); m != nil && m.ID == managerID {
				return true
			}
		}
		return false
	}
	return true
}
