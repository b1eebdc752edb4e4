package models

import "time"

// PortalEmployee mirrors the corporate directory table. The bot only reads it.
type PortalEmployee struct {
	ID          uint       `gorm:"primarykey"`
	DiscordID   string     `gorm:"column:id_discord;type:varchar(32);index"`
	Name        string     `gorm:"column:nome"`
	Email       string     `gorm:"column:email"`
	Role        string     `gorm:"column:cargo"`
	Department  string     `gorm:"column:departamento"`
	ManagerName string     `gorm:"column:nome_responsavel"`
	TeamID      uint       `gorm:"column:id_equipe"`
	PIS         string     `gorm:"column:pis_numero;index"`
	DismissedAt *time.Time `gorm:"column:desligamento_data"`
}

func (PortalEmployee) TableName() string {
	return "colaboradores"
}

func (e PortalEmployee) Profile() EmployeeProfile {
	return EmployeeProfile{
		DiscordID:   e.DiscordID,
		Name:        e.Name,
		Email:       e.Email,
		Role:        e.Role,
		Department:  e.Department,
		ManagerName: e.ManagerName,
		TeamID:      e.TeamID,
	}
}

// PortalPunch is one time-clock mark, keyed by the employee PIS number.
type PortalPunch struct {
	ID   uint      `gorm:"primarykey"`
	PIS  string    `gorm:"column:pis;index"`
	Date time.Time `gorm:"column:data;type:date;index"`
	Time string    `gorm:"column:hora;type:varchar(5)"`
}

func (PortalPunch) TableName() string {
	return "ponto_marcacoes"
}
