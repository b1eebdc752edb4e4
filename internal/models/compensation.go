package models

// CompensationChoice is how the submitter wants the overtime compensated.
type CompensationChoice string

const (
	CompensationPayment CompensationChoice = "pagamento"   // paid with the next payroll
	CompensationTimeOff CompensationChoice = "compensacao" // compensated with time off
	CompensationBank    CompensationChoice = "banco"       // accrued in the hours bank
)

// CompensationChoices lists the choices in the order they are offered.
var CompensationChoices = []CompensationChoice{
	CompensationPayment,
	CompensationTimeOff,
	CompensationBank,
}

func (c CompensationChoice) IsValid() bool {
	switch c {
	case CompensationPayment, CompensationTimeOff, CompensationBank:
		return true
	}
	return false
}

// Label returns the user facing name of the choice.
func (c CompensationChoice) Label() string {
	switch c {
	case CompensationPayment:
		return "Pagamento de Horas"
	case CompensationTimeOff:
		return "Horas a Compensar"
	case CompensationBank:
		return "Banco de Horas"
	}
	return string(c)
}
