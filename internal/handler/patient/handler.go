package patient

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-table/internal/handler"
	"github.com/jwalitptl/patient-table/internal/model"
	"github.com/jwalitptl/patient-table/internal/service/patient"
	apperrors "github.com/jwalitptl/patient-table/pkg/errors"
	"github.com/jwalitptl/patient-table/pkg/logger"
)

// Handler maps each table gesture to exactly one store operation and
// answers with the view to redraw.
type Handler struct {
	mu    sync.Mutex
	store *patient.Store
	log   *logger.Logger
}

func NewHandler(store *patient.Store, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{store: store, log: log}
}

// Initialize hands the seed dataset to the store. It may run while requests
// are being served.
func (h *Handler) Initialize(seed []model.Patient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.store.Initialize(seed)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.PATCH("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}

	draft := r.Group("/draft")
	{
		draft.POST("/toggle", h.ToggleDraft)
		draft.POST("/cancel", h.CancelDraft)
		draft.PATCH("", h.UpdateDraft)
		draft.POST("/commit", h.CommitDraft)
	}

	r.PUT("/sort", h.SortPatients)
	r.PUT("/search", h.SearchPatients)
}

func (h *Handler) ListPatients(c *gin.Context) {
	h.apply(c, nil)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req model.FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	id := c.Param("id")
	field := h.resolveField(req.Field)
	h.apply(c, func(s *patient.Store) error {
		s.UpdateField(id, field, req.Value)
		return nil
	})
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id := c.Param("id")
	h.apply(c, func(s *patient.Store) error {
		s.Remove(id)
		return nil
	})
}

func (h *Handler) ToggleDraft(c *gin.Context) {
	h.apply(c, func(s *patient.Store) error {
		s.BeginCreate()
		return nil
	})
}

func (h *Handler) CancelDraft(c *gin.Context) {
	h.apply(c, func(s *patient.Store) error {
		s.CancelCreate()
		return nil
	})
}

func (h *Handler) UpdateDraft(c *gin.Context) {
	var req model.FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	field := h.resolveField(req.Field)
	h.apply(c, func(s *patient.Store) error {
		s.UpdateDraftField(field, req.Value)
		return nil
	})
}

func (h *Handler) CommitDraft(c *gin.Context) {
	h.apply(c, func(s *patient.Store) error {
		return s.CommitDraft()
	})
}

func (h *Handler) SortPatients(c *gin.Context) {
	var req model.SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	field := h.resolveField(req.Field)
	h.apply(c, func(s *patient.Store) error {
		s.SortBy(field)
		return nil
	})
}

func (h *Handler) SearchPatients(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	h.apply(c, func(s *patient.Store) error {
		s.SetSearchTerm(req.Term)
		return nil
	})
}

// apply runs op and reads the resulting view under one lock, so concurrent
// requests see the store one operation at a time.
func (h *Handler) apply(c *gin.Context, op func(*patient.Store) error) {
	h.mu.Lock()
	var err error
	if op != nil {
		err = op(h.store)
	}
	view := h.store.View()
	h.mu.Unlock()

	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			appErr = apperrors.NewInternal(err)
		}
		_ = c.Error(appErr)
		c.JSON(appErr.StatusCode(), handler.NewErrorResponseWithData(appErr.Error(), view))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

// resolveField accepts camelCase aliases. Unknown names are passed through;
// the store ignores and logs them.
func (h *Handler) resolveField(name string) model.Field {
	field, err := model.ParseField(name)
	if err != nil {
		h.log.Debug("client sent unknown field", "field", name)
		return model.Field(name)
	}
	return field
}
