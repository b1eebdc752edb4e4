package handler

import (
	"fmt"
	"strings"
	"time"

	"hr-ops-bot/internal/models"
	"hr-ops-bot/internal/workflow"

	"github.com/bwmarrin/discordgo"
)

// Discord limits.
const (
	maxSelectOptions = 25
	maxContentLength = 2000
	maxTextInput     = 1000
)

const (
	justificationInputID = "justificativa"
	activitiesInputID    = "atividades"
)

// rendered is a view turned into message content and components.
type rendered struct {
	Content    string
	Components []discordgo.MessageComponent
}

var weekdays = map[time.Weekday]string{
	time.Monday:    "Segunda-feira",
	time.Tuesday:   "Terça-feira",
	time.Wednesday: "Quarta-feira",
	time.Thursday:  "Quinta-feira",
	time.Friday:    "Sexta-feira",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

// formatDate renders a YYYY-MM-DD key as "dd/mm/yyyy - Dia".
func formatDate(key string) string {
	t, err := time.Parse(models.DateLayout, key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s - %s", t.Format("02/01/2006"), weekdays[t.Weekday()])
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func row(components ...discordgo.MessageComponent) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: components}
}

// render turns a view into a message. sessionID is only used by views of an
// in-memory session.
func render(view workflow.View, sessionID string) rendered {
	switch v := view.(type) {
	case workflow.ChoicePrompt:
		return renderChoicePrompt(sessionID)
	case workflow.DatePicker:
		return renderDatePicker(v, sessionID)
	case workflow.ReviewSummary:
		return renderReview(v, sessionID)
	case workflow.Notice:
		return renderNotice(v, sessionID)
	case workflow.SubmitterReviewDM:
		return renderSubmitterDM(v)
	case workflow.ApproverRequestDM:
		return renderApproverDM(v)
	case workflow.DecisionDM:
		return renderDecisionDM(v)
	case workflow.JustificationForm:
		return rendered{Content: "Preencha a justificativa no formulário."}
	}
	return rendered{Content: noticeText(workflow.Notice{Code: workflow.InternalError})}
}

func renderChoicePrompt(sessionID string) rendered {
	buttons := make([]discordgo.MessageComponent, 0, len(models.CompensationChoices))
	for _, choice := range models.CompensationChoices {
		buttons = append(buttons, discordgo.Button{
			Label:    choice.Label(),
			Style:    discordgo.PrimaryButton,
			CustomID: workflow.SessionControlID(sessionID, workflow.ActionChoice+":"+string(choice)),
		})
	}

	return rendered{
		Content:    "Qual tipo de compensação você deseja para as suas horas extras?",
		Components: []discordgo.MessageComponent{row(buttons...)},
	}
}

func renderDatePicker(v workflow.DatePicker, sessionID string) rendered {
	selected := make(map[string]bool, len(v.Selected))
	for _, s := range v.Selected {
		selected[s] = true
	}

	candidates := v.Candidates
	if len(candidates) > maxSelectOptions {
		candidates = candidates[:maxSelectOptions]
	}

	options := make([]discordgo.SelectMenuOption, 0, len(candidates))
	for _, c := range candidates {
		options = append(options, discordgo.SelectMenuOption{
			Label:       fmt.Sprintf("%s | %sh extras", formatDate(c.Key()), models.FormatMinutes(c.OvertimeMinutes)),
			Value:       c.Key(),
			Description: clip("Batidas: "+c.PunchesString(), 100),
			Default:     selected[c.Key()],
		})
	}

	minValues := 1
	return rendered{
		Content: fmt.Sprintf("Você selecionou: **%s**.\nSelecione os dias que deseja incluir no seu formulário e confirme:", v.Choice.Label()),
		Components: []discordgo.MessageComponent{
			row(discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    workflow.SessionControlID(sessionID, workflow.ActionDates),
				Placeholder: "Selecione os dias que deseja incluir...",
				MinValues:   &minValues,
				MaxValues:   len(options),
				Options:     options,
			}),
			row(discordgo.Button{
				Label:    "✔️ Confirmar Seleção",
				Style:    discordgo.SuccessButton,
				CustomID: workflow.SessionControlID(sessionID, workflow.ActionConfirmDates),
			}),
		},
	}
}

// justificationModal builds the form, pre-filled when the submitter is correcting it.
func justificationModal(v workflow.JustificationForm, sessionID string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: workflow.SessionControlID(sessionID, workflow.ActionJustify),
		Title:    "Justificativa e Atividades",
		Components: []discordgo.MessageComponent{
			row(discordgo.TextInput{
				CustomID:    justificationInputID,
				Label:       "Justificativa das Horas Extras",
				Style:       discordgo.TextInputParagraph,
				Placeholder: "Ex: Demanda urgente no projeto X para atender ao prazo do cliente Y.",
				Value:       clip(v.Justification, maxTextInput),
				Required:    true,
				MaxLength:   maxTextInput,
			}),
			row(discordgo.TextInput{
				CustomID:    activitiesInputID,
				Label:       "Atividades Desenvolvidas",
				Style:       discordgo.TextInputParagraph,
				Placeholder: "Ex: Correção do bug #123, desenvolvimento da funcionalidade Z...",
				Value:       clip(v.Activities, maxTextInput),
				Required:    true,
				MaxLength:   maxTextInput,
			}),
		},
	}
}

func daysSummary(form models.OvertimeForm) string {
	var b strings.Builder
	for _, d := range form.Days {
		fmt.Fprintf(&b, "• %s | %s (%s)\n", formatDate(d.Date), models.FormatMinutes(d.OvertimeMinutes), strings.Join(d.Punches, " - "))
	}
	fmt.Fprintf(&b, "**Total:** %s", models.FormatMinutes(form.TotalOvertimeMinutes()))
	return b.String()
}

func renderReview(v workflow.ReviewSummary, sessionID string) rendered {
	f := v.Form
	content := fmt.Sprintf("**Revise sua solicitação antes de gerar o PDF**\n"+
		"**Colaborador:** %s\n**Compensação:** %s\n**Dias:**\n%s\n"+
		"**Justificativa:** %s\n**Atividades:** %s",
		f.Employee.Name, f.Compensation.Label(), daysSummary(f),
		clip(f.Justification, 600), clip(f.Activities, 600))

	return rendered{
		Content: clip(content, maxContentLength),
		Components: []discordgo.MessageComponent{row(
			discordgo.Button{
				Label:    "Confirmar e gerar PDF",
				Style:    discordgo.SuccessButton,
				CustomID: workflow.SessionControlID(sessionID, workflow.ActionReviewConfirm),
			},
			discordgo.Button{
				Label:    "Corrigir",
				Style:    discordgo.SecondaryButton,
				CustomID: workflow.SessionControlID(sessionID, workflow.ActionReviewEdit),
			},
			discordgo.Button{
				Label:    "Cancelar",
				Style:    discordgo.DangerButton,
				CustomID: workflow.SessionControlID(sessionID, workflow.ActionReviewCancel),
			},
		)},
	}
}

func renderSubmitterDM(v workflow.SubmitterReviewDM) rendered {
	content := fmt.Sprintf("📄 Sua solicitação #%d de horas extras (%s) foi gerada.\n%s\n\n"+
		"Revise o PDF em anexo e clique em **Encaminhar** para enviá-la ao responsável da sua equipe, "+
		"ou em **Cancelar** para descartá-la.",
		v.RequestID, v.Form.Compensation.Label(), daysSummary(v.Form))

	return rendered{
		Content: clip(content, maxContentLength),
		Components: []discordgo.MessageComponent{row(
			discordgo.Button{
				Label:    "📨 Encaminhar",
				Style:    discordgo.PrimaryButton,
				CustomID: workflow.RecordControlID(v.RequestID, workflow.ActionForward),
			},
			discordgo.Button{
				Label:    "Cancelar",
				Style:    discordgo.DangerButton,
				CustomID: workflow.RecordControlID(v.RequestID, workflow.ActionCancel),
			},
		)},
	}
}

func renderApproverDM(v workflow.ApproverRequestDM) rendered {
	content := fmt.Sprintf("Olá! O colaborador **%s** enviou a solicitação #%d de horas extras para sua aprovação.\n"+
		"**Compensação:** %s\n%s",
		v.Form.Employee.Name, v.RequestID, v.Form.Compensation.Label(), daysSummary(v.Form))

	return rendered{
		Content: clip(content, maxContentLength),
		Components: []discordgo.MessageComponent{row(
			discordgo.Button{
				Label:    "✔️ Aprovar",
				Style:    discordgo.SuccessButton,
				CustomID: workflow.RecordControlID(v.RequestID, workflow.ActionApprove),
			},
			discordgo.Button{
				Label:    "✖️ Rejeitar",
				Style:    discordgo.DangerButton,
				CustomID: workflow.RecordControlID(v.RequestID, workflow.ActionReject),
			},
		)},
	}
}

func renderDecisionDM(v workflow.DecisionDM) rendered {
	switch {
	case v.Approved && v.EmailFailed:
		return rendered{Content: fmt.Sprintf("⚠️ Sua solicitação #%d de horas extras foi **aprovada** por %s, mas ocorreu um erro no envio para o RH. Fale com um administrador.", v.RequestID, v.ApproverName)}
	case v.Approved:
		return rendered{Content: fmt.Sprintf("✅ Sua solicitação #%d de horas extras foi **aprovada** por %s e enviada ao RH. O PDF assinado está em anexo.", v.RequestID, v.ApproverName)}
	}
	return rendered{Content: fmt.Sprintf("❌ Sua solicitação #%d de horas extras foi **rejeitada** por %s.", v.RequestID, v.ApproverName)}
}

func renderNotice(n workflow.Notice, sessionID string) rendered {
	r := rendered{Content: noticeText(n)}

	if n.Code == workflow.EmptyJustification && sessionID != "" {
		r.Components = []discordgo.MessageComponent{row(discordgo.Button{
			Label:    "Preencher novamente",
			Style:    discordgo.PrimaryButton,
			CustomID: workflow.SessionControlID(sessionID, workflow.ActionJustify),
		})}
	}

	return r
}

func noticeText(n workflow.Notice) string {
	id := n.RequestID

	switch n.Code {
	case workflow.SessionExpired:
		return "⌛ Esta etapa expirou. Use /horas-extras para começar de novo."
	case workflow.StaleControl:
		return "Este controle não está mais ativo."
	case workflow.NoCandidates:
		return "Nenhuma hora extra disponível para solicitar nos últimos dias."
	case workflow.DataSourceFailed:
		return "❌ Erro ao buscar seus dados no portal. Tente novamente mais tarde."
	case workflow.NoDatesSelected:
		return "❌ Você precisa selecionar pelo menos um dia no menu acima."
	case workflow.ProfileNotFound:
		return "❌ Não foi possível encontrar seus dados cadastrais."
	case workflow.EmptyJustification:
		return "❌ A justificativa e as atividades são obrigatórias."
	case workflow.Cancelled:
		return "Solicitação descartada. Nada foi registrado."
	case workflow.PersistenceFailed:
		return "❌ Não foi possível registrar sua solicitação. Tente novamente mais tarde."
	case workflow.CompositionFailed:
		return fmt.Sprintf("❌ A solicitação #%d foi registrada, mas o PDF não pôde ser gerado. Tente reenviar pelo /minhas-solicitacoes ou fale com um administrador.", id)
	case workflow.DocumentSent:
		return fmt.Sprintf("✅ Solicitação #%d registrada! Enviei o PDF por mensagem direta para você revisar e encaminhar.", id)
	case workflow.DMForbidden:
		return fmt.Sprintf("⚠️ A solicitação #%d foi registrada, mas não consegui enviar a mensagem direta. Habilite mensagens diretas deste servidor e use /minhas-solicitacoes para reenviar.", id)
	case workflow.DeliveryFailed:
		return fmt.Sprintf("⚠️ A solicitação #%d foi registrada, mas o envio da mensagem direta falhou. Use /minhas-solicitacoes para reenviar.", id)
	case workflow.NoApprover:
		return "❌ Sua equipe não tem um responsável cadastrado. Peça a um administrador para usar /definir-responsavel e tente novamente."
	case workflow.ApproverUnreachable:
		return fmt.Sprintf("❌ Não consegui enviar a solicitação #%d ao responsável. Tente novamente em instantes.", id)
	case workflow.Forwarded:
		return fmt.Sprintf("📨 Solicitação #%d encaminhada para <@%s>. Você será notificado(a) da decisão por aqui.", id, n.Subject)
	case workflow.AlreadyForwarded:
		return fmt.Sprintf("A solicitação #%d já foi encaminhada ao responsável.", id)
	case workflow.RequestCancelled:
		return fmt.Sprintf("🗑️ Solicitação #%d cancelada.", id)
	case workflow.CancelFailed:
		return fmt.Sprintf("❌ A solicitação #%d não pôde ser cancelada porque não está mais pendente.", id)
	case workflow.StoreUnavailable:
		return "❌ Não foi possível acessar as solicitações agora. Tente novamente."
	case workflow.NotAuthorized:
		return "⛔ Você não pode usar este controle."
	case workflow.AlreadyResolved:
		return fmt.Sprintf("A solicitação #%d já foi resolvida.", id)
	case workflow.Approved:
		return fmt.Sprintf("Solicitação #%d de %s **aprovada** por você.", id, n.Subject)
	case workflow.Rejected:
		return fmt.Sprintf("Solicitação #%d de %s **rejeitada** por você.", id, n.Subject)
	case workflow.ControlsExpired:
		return fmt.Sprintf("⌛ O prazo para decidir a solicitação #%d por aqui expirou. Fale com o RH.", id)
	case workflow.RequestNotFound:
		return fmt.Sprintf("Solicitação #%d não encontrada.", id)
	case workflow.RateLimited:
		return "⏳ Aguarde alguns segundos antes de iniciar outra solicitação."
	}
	return "❌ Ocorreu um erro inesperado."
}

var statusLabels = map[models.RequestStatus]string{
	models.StatusPendingApproval: "Pendente",
	models.StatusApproved:        "Aprovada",
	models.StatusRejected:        "Rejeitada",
	models.StatusCancelled:       "Cancelada",
}

// maxResendButtons fits the resend controls in one action row.
const maxResendButtons = 5

// renderRequestList lists the requests of /minhas-solicitacoes. Pending requests
// not yet forwarded get a button that sends their review message again.
func renderRequestList(requests []*models.OvertimeRequest) rendered {
	if len(requests) == 0 {
		return rendered{Content: "Você ainda não tem solicitações de horas extras."}
	}

	var b strings.Builder
	b.WriteString("**Suas últimas solicitações**\n")
	for _, req := range requests {
		form := req.Form()
		status := statusLabels[req.Status]
		if req.Status == models.StatusPendingApproval && req.IsForwarded() {
			status += " (com o responsável)"
		}

		dates := make([]string, 0, len(form.Days))
		for _, d := range form.Dates() {
			if t, err := time.Parse(models.DateLayout, d); err == nil {
				dates = append(dates, t.Format("02/01"))
			}
		}

		fmt.Fprintf(&b, "#%d • %s • %s • %s • %s\n",
			req.ID, req.CreatedAt.Format("02/01/2006"), strings.Join(dates, ", "),
			models.FormatMinutes(form.TotalOvertimeMinutes()), status)
	}

	var resend []discordgo.MessageComponent
	for _, req := range requests {
		if req.Status != models.StatusPendingApproval || req.IsForwarded() || len(resend) == maxResendButtons {
			continue
		}
		resend = append(resend, discordgo.Button{
			Label:    fmt.Sprintf("📄 Reenviar #%d", req.ID),
			Style:    discordgo.SecondaryButton,
			CustomID: workflow.RecordControlID(req.ID, workflow.ActionResend),
		})
	}

	r := rendered{Content: clip(strings.TrimRight(b.String(), "\n"), maxContentLength)}
	if len(resend) > 0 {
		r.Components = []discordgo.MessageComponent{row(resend...)}
	}
	return r
}
