package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/bill-reminder/backend/internal/auth"
	"example.com/bill-reminder/backend/internal/models"
	"example.com/bill-reminder/backend/internal/notifications"
	"example.com/bill-reminder/backend/internal/repository"
	"example.com/bill-reminder/backend/internal/scheduler"
	"example.com/bill-reminder/backend/internal/urgency"
)

const (
	defaultDueTime = "12:00"
	timeLayout     = time.RFC3339
)

// Сообщения об ошибках формы повторяют формулировки продукта на pt-BR.
const (
	errNameRequired    = "Nome do boleto é obrigatório"
	errAmountPositive  = "Valor deve ser maior que zero"
	errDueDateRequired = "Data de vencimento é obrigatória"
)

type BillHandler struct {
	Bills     *repository.BillRepository
	Scheduler *scheduler.Scheduler
	Notifier  *notifications.Hub
}

// NewBillHandler создает обработчик счетов.
func NewBillHandler(bills *repository.BillRepository, sched *scheduler.Scheduler, notifier *notifications.Hub) *BillHandler {
	return &BillHandler{Bills: bills, Scheduler: sched, Notifier: notifier}
}

type BillRequest struct {
	Name    string `json:"name" validate:"max=200"`
	Amount  string `json:"amount"`
	DueDate string `json:"due_date"`
	DueTime string `json:"due_time"`
}

type TogglePaidRequest struct {
	IsPaid *bool `json:"is_paid"`
}

type BillResponse struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	AmountCents int64         `json:"amount_cents"`
	DueDate     string        `json:"due_date"`
	DueTime     string        `json:"due_time"`
	IsPaid      bool          `json:"is_paid"`
	Urgency     urgency.State `json:"urgency"`
	CreatedAt   time.Time     `json:"created_at"`
}

// List возвращает коллекцию счетов с вычисленной срочностью.
func (h *BillHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	bills, err := h.Bills.List(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	now := time.Now()
	response := make([]BillResponse, 0, len(bills))
	for _, bill := range bills {
		response = append(response, toBillResponse(bill, now))
	}

	return c.JSON(http.StatusOK, map[string][]BillResponse{"bills": response})
}

// Create валидирует форму и добавляет счёт в начало коллекции.
func (h *BillHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req BillRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, errNameRequired)
	}

	amountCents, err := parseAmountCents(req.Amount)
	if err != nil {
		return badRequest(c, errAmountPositive)
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return badRequest(c, errDueDateRequired)
	}

	dueTime, err := parseDueTime(req.DueTime)
	if err != nil {
		return badRequest(c, "invalid due time")
	}

	bill := models.Bill{
		ID:          uuid.New(),
		Name:        name,
		AmountCents: amountCents,
		DueDate:     dueDate,
		DueTime:     dueTime,
		IsPaid:      false,
		CreatedAt:   time.Now(),
	}

	if err := h.Bills.Add(c.Request().Context(), userID, bill); err != nil {
		return serverError(c)
	}

	h.Notifier.Publish(userID, notifications.BillsUpdated())

	return c.JSON(http.StatusCreated, toBillResponse(bill, time.Now()))
}

// TogglePaid переключает отметку оплаты; оплата стирает срабатывания
// счета и глушит звук.
func (h *BillHandler) TogglePaid(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid bill id")
	}

	var req TogglePaidRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	bill, err := h.Bills.SetPaid(c.Request().Context(), userID, billID, req.IsPaid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "bill not found")
		}
		return serverError(c)
	}

	if bill.IsPaid {
		if err := h.Scheduler.ClearBill(c.Request().Context(), userID, billID); err != nil {
			return serverError(c)
		}
	}

	h.Notifier.Publish(userID, notifications.BillsUpdated())

	return c.JSON(http.StatusOK, toBillResponse(bill, time.Now()))
}

// Delete удаляет счёт из коллекции и стирает его срабатывания.
func (h *BillHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid bill id")
	}

	if err := h.Bills.Delete(c.Request().Context(), userID, billID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "bill not found")
		}
		return serverError(c)
	}

	if err := h.Scheduler.ClearBill(c.Request().Context(), userID, billID); err != nil {
		return serverError(c)
	}

	h.Notifier.Publish(userID, notifications.BillsUpdated())

	return c.NoContent(http.StatusNoContent)
}

// ExportJSON выгружает коллекцию счетов в JSON-файл.
func (h *BillHandler) ExportJSON(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	bills, err := h.Bills.List(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	now := time.Now()
	response := make([]BillResponse, 0, len(bills))
	for _, bill := range bills {
		response = append(response, toBillResponse(bill, now))
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/json")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\"bills.json\"")
	return c.JSON(http.StatusOK, map[string][]BillResponse{"bills": response})
}

// ExportCSV выгружает коллекцию счетов в CSV-файл.
func (h *BillHandler) ExportCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	bills, err := h.Bills.List(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"id", "name", "amount_cents", "due_date", "due_time", "is_paid", "urgency", "created_at"}
	if err := writer.Write(header); err != nil {
		return serverError(c)
	}

	now := time.Now()
	for _, bill := range bills {
		record := []string{
			bill.ID.String(),
			bill.Name,
			strconv.FormatInt(bill.AmountCents, 10),
			bill.DueDate,
			bill.DueTime,
			strconv.FormatBool(bill.IsPaid),
			string(urgency.ClassifyBill(bill, now)),
			bill.CreatedAt.Format(timeLayout),
		}
		if err := writer.Write(record); err != nil {
			return serverError(c)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\"bills.csv\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func toBillResponse(bill models.Bill, now time.Time) BillResponse {
	return BillResponse{
		ID:          bill.ID,
		Name:        bill.Name,
		AmountCents: bill.AmountCents,
		DueDate:     bill.DueDate,
		DueTime:     bill.DueTime,
		IsPaid:      bill.IsPaid,
		Urgency:     urgency.ClassifyBill(bill, now),
		CreatedAt:   bill.CreatedAt,
	}
}

// parseAmountCents разбирает сумму из строки формы: только цифры и не
// более одной десятичной точки, итог строго больше нуля.
func parseAmountCents(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, errors.New("amount is required")
	}

	whole, fraction, found := strings.Cut(value, ".")
	if strings.Contains(fraction, ".") {
		return 0, errors.New("multiple decimal points")
	}
	if whole == "" && fraction == "" {
		return 0, errors.New("amount is empty")
	}

	if whole == "" {
		whole = "0"
	}
	if !found || fraction == "" {
		fraction = "0"
	}

	if !digitsOnly(whole) || !digitsOnly(fraction) {
		return 0, errors.New("amount must be numeric")
	}

	if len(fraction) > 2 {
		fraction = fraction[:2]
	}
	for len(fraction) < 2 {
		fraction += "0"
	}

	wholeValue, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}

	fractionValue, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil {
		return 0, err
	}

	cents := wholeValue*100 + fractionValue
	if cents <= 0 {
		return 0, errors.New("amount must be positive")
	}

	return cents, nil
}

func parseDueDate(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", errors.New("due date is required")
	}

	parsed, err := time.Parse(models.DueDateLayout, value)
	if err != nil {
		return "", err
	}

	return parsed.Format(models.DueDateLayout), nil
}

func parseDueTime(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultDueTime, nil
	}

	parsed, err := time.Parse(models.DueTimeLayout, value)
	if err != nil {
		return "", err
	}

	return parsed.Format(models.DueTimeLayout), nil
}

func digitsOnly(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
