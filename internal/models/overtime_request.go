package models

import (
	"time"

	"gorm.io/datatypes"
)

type RequestStatus string

const (
	StatusPendingApproval RequestStatus = "PENDING_APPROVAL"
	StatusApproved        RequestStatus = "APPROVED"
	StatusRejected        RequestStatus = "REJECTED"
	StatusCancelled       RequestStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// BlocksDates reports whether dates of a request in this status may not be requested again.
func (s RequestStatus) BlocksDates() bool {
	return s == StatusPendingApproval || s == StatusApproved
}

// OvertimeRequest is one submission attempt. It is created PENDING_APPROVAL and moves
// exactly once to a terminal status.
type OvertimeRequest struct {
	ID          uint                             `gorm:"primarykey" json:"id"`
	SubmitterID string                           `gorm:"type:varchar(32);not null;index" json:"submitter_id"`
	Status      RequestStatus                    `gorm:"type:varchar(20);not null;default:'PENDING_APPROVAL';index" json:"status"`
	Payload     datatypes.JSONType[OvertimeForm] `json:"payload"`

	AssignedApproverID *string    `gorm:"type:varchar(32)" json:"assigned_approver_id"`
	ForwardedAt        *time.Time `json:"forwarded_at"`

	ApproverID *string    `gorm:"type:varchar(32)" json:"approver_id"`
	DecidedAt  *time.Time `json:"decided_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OvertimeRequest) TableName() string {
	return "overtime_requests"
}

// Form returns the structured payload.
func (r *OvertimeRequest) Form() OvertimeForm {
	return r.Payload.Data()
}

func (r *OvertimeRequest) IsForwarded() bool {
	return r.ForwardedAt != nil
}

// OvertimeForm is the payload collected by the workflow and rendered into the document.
type OvertimeForm struct {
	Employee      EmployeeProfile    `json:"employee"`
	Days          []SelectedDay      `json:"days"`
	Justification string             `json:"justification"`
	Activities    string             `json:"activities"`
	Compensation  CompensationChoice `json:"compensation"`
	GeneratedOn   string             `json:"generated_on,omitempty"`
}

// TotalOvertimeMinutes sums the overtime of every selected day.
func (f OvertimeForm) TotalOvertimeMinutes() int {
	total := 0
	for _, d := range f.Days {
		total += d.OvertimeMinutes
	}
	return total
}

// Dates returns the YYYY-MM-DD keys of the selected days.
func (f OvertimeForm) Dates() []string {
	dates := make([]string, 0, len(f.Days))
	for _, d := range f.Days {
		dates = append(dates, d.Date)
	}
	return dates
}

type SelectedDay struct {
	Date            string   `json:"date"`
	Punches         []string `json:"punches"`
	WorkedMinutes   int      `json:"worked_minutes"`
	OvertimeMinutes int      `json:"overtime_minutes"`
}

// EmployeeProfile is the directory snapshot taken when the request is filled in.
type EmployeeProfile struct {
	DiscordID   string `json:"discord_id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	Department  string `json:"department"`
	ManagerName string `json:"manager_name"`
	TeamID      uint   `json:"team_id"`
}

// ApprovalStamp identifies who approved a request and when.
type ApprovalStamp struct {
	Name string
	ID   string
	At   time.Time
}
