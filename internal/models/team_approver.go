package models

import "time"

// TeamApprover maps a team of the corporate directory to its responsible approver.
type TeamApprover struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	TeamID     uint      `gorm:"not null;uniqueIndex" json:"team_id"`
	ApproverID string    `gorm:"type:varchar(32);not null" json:"approver_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (TeamApprover) TableName() string {
	return "team_approvers"
}
