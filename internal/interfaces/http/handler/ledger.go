package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maia/backend/internal/application/ledger"
)

// LedgerHandler serves one record kind. The router mounts one instance for
// payables and one for receivables; both expect the owner key middleware to
// have run.
type LedgerHandler struct {
	BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// Create godoc
// @Summary      Create a record
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body CreateRecordRequest true "Record"
// @Success      201 {object} dto.Response{data=ledger.RecordResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payables [post]
// @Router       /receivables [post]
func (h *LedgerHandler) Create(c *gin.Context) {
	owner, ok := h.ownerKey(c)
	if !ok {
		return
	}
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	record, err := h.service.Create(c.Request.Context(), owner, req.toDetails())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// List godoc
// @Summary      List the owner's records
// @Tags         ledger
// @Produce      json
// @Success      200 {object} dto.Response{data=[]ledger.RecordResponse}
// @Router       /payables [get]
// @Router       /receivables [get]
func (h *LedgerHandler) List(c *gin.Context) {
	owner, ok := h.ownerKey(c)
	if !ok {
		return
	}
	records, err := h.service.ListByOwner(c.Request.Context(), owner)
	h.respondList(c, records, err)
}

// ListByCategory godoc
// @Summary      List records in a category
// @Tags         ledger
// @Produce      json
// @Param        category path string true "Category"
// @Success      200 {object} dto.Response{data=[]ledger.RecordResponse}
// @Router       /payables/category/{category} [get]
func (h *LedgerHandler) ListByCategory(c *gin.Context) {
	owner, ok := h.ownerKey(c)
	if !ok {
		return
	}
	records, err := h.service.ListByCategory(c.Request.Context(), owner, c.Param("category"))
	h.respondList(c, records, err)
}

// ListByStatus godoc
// @Summary      List records with a paid status
// @Tags         ledger
// @Produce      json
// @Param        status path string true "Paid status"
// @Success      200 {object} dto.Response{data=[]ledger.RecordResponse}
// @Router       /payables/paid-status/{status} [get]
func (h *LedgerHandler) ListByStatus(c *gin.Context) {
	owner, ok := h.ownerKey(c)
	if !ok {
		return
	}
	records, err := h.service.ListByStatus(c.Request.Context(), owner, c.Param("status"))
	h.respondList(c, records, err)
}

// ListByDateRange godoc
// @Summary      List records due within an inclusive range
// @Tags         ledger
// @Produce      json
// @Param        start_date query string true "YYYY-MM-DD"
// @Param        end_date query string true "YYYY-MM-DD"
// @Success      200 {object} dto.Response{data=[]ledger.RecordResponse}
// @Router       /payables/date-range [get]
func (h *LedgerHandler) ListByDateRange(c *gin.Context) {
	owner, ok := h.ownerKey(c)
	if !ok {
		return
	}
	var q DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	records, err := h.service.ListByDateRange(c.Request.Context(), owner, q.StartDate, q.EndDate)
	h.respondList(c, records, err)
}

// ListByYearMonth godoc
// @Summary      List records of a year and month
// @Tags         ledger
// @Produce      json
// @Param        year query string true "YYYY"
// @Param        month query string true "MM"
// @Success      200 {object} dto.Response{data=[]ledger.RecordResponse}
// @Router       /payables/year-month [get]
func (h *LedgerHandler) ListByYearMonth(c *gin.Context) {
	owner, ok := h.ownerKey(c)
	if !ok {
		return
	}
	var q YearMonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	records, err := h.service.ListByYearMonth(c.Request.Context(), owner, q.Year, q.Month)
	h.respondList(c, records, err)
}

func (h *LedgerHandler) respondList(c *gin.Context, records []ledger.RecordResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// Total godoc
// @Summary      Sum of the owner's amounts
// @Tags         ledger
// @Produce      json
// @Success      200 {object} dto.Response{data=ledger.TotalResponse}
// @Router       /payables/total [get]
func (h *LedgerHandler) Total(c *gin.Context) {
	h.total(c, nil)
}

// TotalByStatus godoc
// @Summary      Sum of the owner's amounts with a paid status
// @Tags         ledger
// @Produce      json
// @Param        status path string true "Paid status"
// @Success      200 {object} dto.Response{data=ledger.TotalResponse}
// @Router       /payables/total/paid-status/{status} [get]
func (h *LedgerHandler) TotalByStatus(c *gin.Context) {
	status := c.Param("status")
	h.total(c, &status)
}

func (h *LedgerHandler) total(c *gin.Context, status *string) {
	owner, ok := h.ownerKey(c)
	if !ok {
		return
	}
	total, err := h.service.SumAmount(c.Request.Context(), owner, status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, total)
}

// GetByID godoc
// @Summary      Get a record
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledger.RecordResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payables/{id} [get]
func (h *LedgerHandler) GetByID(c *gin.Context) {
	owner, ok := h.ownerKey(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	record, err := h.service.GetByID(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Update godoc
// @Summary      Partially update a record
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body UpdateRecordRequest true "Changes"
// @Success      200 {object} dto.Response{data=ledger.RecordResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payables/{id} [patch]
func (h *LedgerHandler) Update(c *gin.Context) {
	owner, ok := h.ownerKey(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	record, err := h.service.Update(c.Request.Context(), owner, id, req.toPatch())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Delete godoc
// @Summary      Delete a record
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payables/{id} [delete]
func (h *LedgerHandler) Delete(c *gin.Context) {
	owner, ok := h.ownerKey(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), owner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": h.service.Kind().Label() + " deleted"})
}
