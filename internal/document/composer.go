package document

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hr-ops-bot/internal/models"

	"github.com/sirupsen/logrus"
)

var ErrEmptyForm = errors.New("form has no days to render")

// Composer renders overtime forms into PDF documents and stamps approvals onto them.
type Composer struct {
	logger *logrus.Logger
}

func NewComposer() *Composer {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &Composer{logger: logger}
}

// Compose renders form. The output depends only on form, so rendering the same
// form twice yields identical bytes.
func (c *Composer) Compose(form models.OvertimeForm) ([]byte, error) {
	if len(form.Days) == 0 {
		return nil, ErrEmptyForm
	}

	l := newLayout()

	l.paragraph("Solicitação Para Realização de Horas Extras", bold, 14, alignCenter)
	l.space(10)
	l.paragraph("De acordo com a proposta de jornada de trabalho abaixo, solicito a autorização para realização de horas extras.", regular, 10, alignCenter)
	l.space(12)

	employeeBlock(l, form.Employee)
	l.space(10)
	l.paragraph("TIPO DE COMPENSAÇÃO: "+form.Compensation.Label(), bold, 10, alignLeft)

	l.heading("Justificativa para a realização de Horas Extras")
	l.paragraph(form.Justification, regular, 10, alignLeft)

	l.heading("Atividades Desenvolvidas")
	l.paragraph(form.Activities, regular, 10, alignLeft)

	l.heading("Detalhamento dos Dias Solicitados")
	if err := dayTable(l, form); err != nil {
		return nil, err
	}

	l.space(24)
	signatureBlock(l, form.GeneratedOn)

	doc := writeDocument(l.pageContents())

	c.logger.WithFields(logrus.Fields{
		"employee": form.Employee.Name,
		"days":     len(form.Days),
		"pages":    len(l.pages),
		"bytes":    len(doc),
	}).Debug("Overtime document composed")

	return doc, nil
}

func employeeBlock(l *layout, e models.EmployeeProfile) {
	half := contentWidth / 2
	field := func(label, value string) cell {
		if strings.TrimSpace(value) == "" {
			value = "N/A"
		}
		lines := append([]string{label}, wrap(value, regular, cellSize, half-2*cellPadding)...)
		return cell{lines: lines, font: regular, width: half}
	}

	for _, pair := range [][2]cell{
		{field("NOME:", e.Name), field("DEPARTAMENTO:", e.Department)},
		{field("CARGO:", e.Role), field("RESPONSÁVEL:", e.ManagerName)},
	} {
		cells := pair[:]
		l.ensure(rowHeight(cells))
		l.row(cells)
	}
}

var dayColumns = [3]float64{0.25, 0.5, 0.25}

func dayTableHeader(l *layout) {
	headers := []string{"DATA", "BATIDAS DO PONTO", "HORAS EXTRAS"}
	cells := make([]cell, len(headers))
	for i, h := range headers {
		cells[i] = cell{lines: []string{h}, font: bold, align: alignCenter, width: contentWidth * dayColumns[i], filled: true, gray: 0.5, white: true}
	}
	l.row(cells)
}

// dayTable lists the days and repeats the header on every page it spans.
func dayTable(l *layout, form models.OvertimeForm) error {
	l.ensure(2 * (cellLeading + 2*cellPadding))
	dayTableHeader(l)

	for _, day := range form.Days {
		date, err := time.Parse(models.DateLayout, day.Date)
		if err != nil {
			return fmt.Errorf("invalid day %q: %w", day.Date, err)
		}

		cells := []cell{
			{lines: []string{date.Format("02/01/2006")}, font: regular, align: alignCenter, width: contentWidth * dayColumns[0]},
			{lines: wrap(strings.Join(day.Punches, " - "), regular, cellSize, contentWidth*dayColumns[1]-2*cellPadding), font: regular, align: alignCenter, width: contentWidth * dayColumns[1]},
			{lines: []string{models.FormatMinutes(day.OvertimeMinutes)}, font: regular, align: alignCenter, width: contentWidth * dayColumns[2]},
		}

		if l.ensure(rowHeight(cells)) {
			dayTableHeader(l)
		}
		l.row(cells)
	}

	total := []cell{
		{lines: []string{"TOTAL"}, font: bold, align: alignRight, width: contentWidth * (dayColumns[0] + dayColumns[1]), filled: true, gray: 0.92},
		{lines: []string{models.FormatMinutes(form.TotalOvertimeMinutes())}, font: bold, align: alignCenter, width: contentWidth * dayColumns[2], filled: true, gray: 0.92},
	}
	if l.ensure(rowHeight(total)) {
		dayTableHeader(l)
	}
	l.row(total)

	return nil
}

func signatureBlock(l *layout, generatedOn string) {
	date := "___ / ___ / ______"
	if t, err := time.Parse(models.DateLayout, generatedOn); err == nil {
		date = t.Format("02 / 01 / 2006")
	}

	l.ensure(80)
	half := contentWidth / 2
	left, right := marginLeft, marginLeft+half

	l.y -= 12
	l.textAt(left, l.y, regular, 9, "DATA: "+date, alignCenter, half)
	l.textAt(right, l.y, regular, 9, "DATA: "+date, alignCenter, half)

	l.y -= 40
	l.line(left+30, l.y, left+half-30, l.y)
	l.line(right+30, l.y, right+half-30, l.y)

	l.y -= 14
	l.textAt(left, l.y, regular, 9, "ASSINATURA DO COLABORADOR", alignCenter, half)
	l.textAt(right, l.y, regular, 9, "ASSINATURA DO RESPONSÁVEL", alignCenter, half)
}
