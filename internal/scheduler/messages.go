package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"example.com/bill-reminder/backend/internal/models"
)

// Тексты оповещений повторяют формулировки продукта на pt-BR.
var ptBRMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// composeAlert собирает заголовок и описание оповещения для порога.
func composeAlert(bill models.Bill, due time.Time, threshold models.Threshold) (string, string) {
	amount := formatBRL(bill.AmountCents)

	switch threshold {
	case models.ThresholdWarning:
		title := fmt.Sprintf("O boleto %s vence em 24 horas", bill.Name)
		description := fmt.Sprintf("Valor: %s - Vence em %s às %s", amount, formatDueDay(due), bill.DueTime)
		return title, description
	case models.ThresholdUrgent:
		title := fmt.Sprintf("O boleto %s vence em breve!", bill.Name)
		description := fmt.Sprintf("Valor: %s - Vence em poucas horas às %s", amount, bill.DueTime)
		return title, description
	default:
		title := fmt.Sprintf("O boleto %s venceu!", bill.Name)
		description := fmt.Sprintf("Valor: %s - Venceu às %s", amount, bill.DueTime)
		return title, description
	}
}

// toastFor сопоставляет порогу серьезность и длительность тоста.
func toastFor(threshold models.Threshold) (models.ToastSeverity, int) {
	switch threshold {
	case models.ThresholdWarning:
		return models.ToastInfo, 6000
	case models.ThresholdUrgent:
		return models.ToastWarning, 8000
	default:
		return models.ToastError, 10000
	}
}

// formatBRL форматирует сумму в сентаво как бразильский реал:
// точка между тысячами, запятая перед сентаво.
func formatBRL(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}

	whole := strconv.FormatInt(cents/100, 10)
	fraction := fmt.Sprintf("%02d", cents%100)

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}

	return sign + "R$ " + b.String() + "," + fraction
}

// formatDueDay возвращает дату в виде "dd de <месяц>" на pt-BR.
func formatDueDay(due time.Time) string {
	return fmt.Sprintf("%02d de %s", due.Day(), ptBRMonths[due.Month()-1])
}
