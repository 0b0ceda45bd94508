package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	request "contacto_profesionales/internal/adapter/http/dto/request"
	response "contacto_profesionales/internal/adapter/http/dto/response"
	"contacto_profesionales/internal/adapter/http/middleware"
	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/platform/metrics"
	"contacto_profesionales/internal/usecase"
	"contacto_profesionales/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidServiceRequestPayload = pkg.NewDomainErrorSimple("INVALID_SERVICE_REQUEST_INPUT", "Invalid service request payload", http.StatusBadRequest)
	errInvalidPartyID               = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Path id must be a positive integer", http.StatusBadRequest)
	errUnauthenticated              = pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Authentication required", http.StatusUnauthorized)
	errForbidden                    = pkg.NewDomainErrorSimple(string(usecase.KindNotOwner), "Not allowed to act on this resource", http.StatusForbidden)
)

// ServiceRequestHandler exposes the service request lifecycle over HTTP.
// Every route expects middleware.JWTAuth to have resolved the caller.
type ServiceRequestHandler struct {
	usecase usecase.IServiceRequestUseCase
	metrics *metrics.MetricsManager
	loc     *time.Location
}

func NewServiceRequestHandler(uc usecase.IServiceRequestUseCase, m *metrics.MetricsManager) *ServiceRequestHandler {
	return &ServiceRequestHandler{usecase: uc, metrics: m, loc: time.UTC}
}

// WithLocation sets the zone service_date and service_time are read in.
func (h *ServiceRequestHandler) WithLocation(loc *time.Location) *ServiceRequestHandler {
	if loc != nil {
		h.loc = loc
	}
	return h
}

// CreateServiceRequest godoc
// @Summary      Open a service request
// @Description  The caller must be a client; client_id is taken from the token.
// @Tags         service-requests
// @Accept       json
// @Produce      json
// @Param        request body request.CreateServiceRequestRequest true "Service request"
// @Success      201 {object} response.ServiceRequestResponse
// @Failure      400 {object} pkg.HTTPError
// @Failure      403 {object} pkg.HTTPError
// @Failure      409 {object} pkg.HTTPError
// @Security     Bearer
// @Router       /service-requests [post]
func (h *ServiceRequestHandler) CreateServiceRequest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if actor.Role != entities.RoleClient {
		writeError(c, errForbidden)
		return
	}

	var payload request.CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidServiceRequestPayload)
		return
	}
	in, err := payload.ToInput(actor.ID, h.loc)
	if err != nil {
		writeError(c, pkg.NewDomainErrorSimple(string(usecase.KindValidation), err.Error(), http.StatusBadRequest).WithField(dateField(err)))
		return
	}

	created, err := h.usecase.CreateRequest(c.Request.Context(), in)
	if err != nil {
		writeError(c, mapServiceRequestError(err))
		return
	}
	h.metrics.ObserveCreated()

	c.JSON(http.StatusCreated, response.FromServiceRequest(created))
}

// GetServiceRequest godoc
// @Summary      Get a service request
// @Tags         service-requests
// @Produce      json
// @Param        id path string true "Service request id"
// @Success      200 {object} response.ServiceRequestResponse
// @Failure      403 {object} pkg.HTTPError
// @Failure      404 {object} pkg.HTTPError
// @Security     Bearer
// @Router       /service-requests/{id} [get]
func (h *ServiceRequestHandler) GetServiceRequest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	sr, err := h.usecase.GetRequest(c.Request.Context(), c.Param("id"), actor.ID, actor.Role)
	if err != nil {
		writeError(c, mapServiceRequestError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromServiceRequest(sr))
}

// AcceptServiceRequest godoc
// @Summary      Accept a pending service request
// @Tags         service-requests
// @Produce      json
// @Param        id path string true "Service request id"
// @Success      200 {object} response.ServiceRequestResponse
// @Failure      403 {object} pkg.HTTPError
// @Failure      404 {object} pkg.HTTPError
// @Failure      409 {object} pkg.HTTPError
// @Security     Bearer
// @Router       /service-requests/{id}/accept [patch]
func (h *ServiceRequestHandler) AcceptServiceRequest(c *gin.Context) {
	h.transition(c, entities.EventAccept)
}

// RejectServiceRequest godoc
// @Summary      Reject a pending service request
// @Tags         service-requests
// @Produce      json
// @Param        id path string true "Service request id"
// @Success      200 {object} response.ServiceRequestResponse
// @Failure      403 {object} pkg.HTTPError
// @Failure      404 {object} pkg.HTTPError
// @Failure      409 {object} pkg.HTTPError
// @Security     Bearer
// @Router       /service-requests/{id}/reject [patch]
func (h *ServiceRequestHandler) RejectServiceRequest(c *gin.Context) {
	h.transition(c, entities.EventReject)
}

// CompleteServiceRequest godoc
// @Summary      Complete an accepted service request
// @Tags         service-requests
// @Produce      json
// @Param        id path string true "Service request id"
// @Success      200 {object} response.ServiceRequestResponse
// @Failure      403 {object} pkg.HTTPError
// @Failure      404 {object} pkg.HTTPError
// @Failure      409 {object} pkg.HTTPError
// @Security     Bearer
// @Router       /service-requests/{id}/complete [patch]
func (h *ServiceRequestHandler) CompleteServiceRequest(c *gin.Context) {
	h.transition(c, entities.EventComplete)
}

// CancelServiceRequest godoc
// @Summary      Cancel a pending service request
// @Tags         service-requests
// @Produce      json
// @Param        id path string true "Service request id"
// @Success      200 {object} response.ServiceRequestResponse
// @Failure      403 {object} pkg.HTTPError
// @Failure      404 {object} pkg.HTTPError
// @Failure      409 {object} pkg.HTTPError
// @Security     Bearer
// @Router       /service-requests/{id}/cancel [patch]
func (h *ServiceRequestHandler) CancelServiceRequest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if actor.Role != entities.RoleClient {
		// the use case still decides between 404, 409 and 403
		h.transition(c, entities.EventCancel)
		return
	}

	sr, err := h.usecase.Cancel(c.Request.Context(), c.Param("id"), actor.ID)
	h.writeTransitionResult(c, entities.EventCancel, sr, err)
}

func (h *ServiceRequestHandler) transition(c *gin.Context, event entities.Event) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	sr, err := h.usecase.Transition(c.Request.Context(), usecase.TransitionInput{
		RequestID: c.Param("id"),
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Event:     event,
	})
	h.writeTransitionResult(c, event, sr, err)
}

func (h *ServiceRequestHandler) writeTransitionResult(c *gin.Context, event entities.Event, sr entities.ServiceRequest, err error) {
	if err != nil {
		h.metrics.ObserveTransition(string(event), strings.ToLower(string(usecase.KindOf(err))))
		writeError(c, mapServiceRequestError(err))
		return
	}
	h.metrics.ObserveTransition(string(event), "applied")
	c.JSON(http.StatusOK, response.FromServiceRequest(sr))
}

// ListClientServiceRequests godoc
// @Summary      List a client's active service requests
// @Tags         service-requests
// @Produce      json
// @Param        id path int true "Client id"
// @Success      200 {object} response.ServiceRequestListResponse
// @Failure      403 {object} pkg.HTTPError
// @Security     Bearer
// @Router       /clients/{id}/service-requests [get]
func (h *ServiceRequestHandler) ListClientServiceRequests(c *gin.Context) {
	clientID, ok := requireSelf(c, entities.RoleClient)
	if !ok {
		return
	}

	items, err := h.usecase.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		writeError(c, mapServiceRequestError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromServiceRequests(items))
}

// ListProfessionalServiceRequests godoc
// @Summary      List a professional's active service requests
// @Tags         service-requests
// @Produce      json
// @Param        id path int true "Professional id"
// @Success      200 {object} response.ServiceRequestListResponse
// @Failure      403 {object} pkg.HTTPError
// @Security     Bearer
// @Router       /professionals/{id}/service-requests [get]
func (h *ServiceRequestHandler) ListProfessionalServiceRequests(c *gin.Context) {
	professionalID, ok := requireSelf(c, entities.RoleProfessional)
	if !ok {
		return
	}

	items, err := h.usecase.ListByProfessional(c.Request.Context(), professionalID)
	if err != nil {
		writeError(c, mapServiceRequestError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromServiceRequests(items))
}

// CountPendingServiceRequests godoc
// @Summary      Count a professional's pending service requests
// @Tags         service-requests
// @Produce      json
// @Param        id path int true "Professional id"
// @Success      200 {object} response.PendingCountResponse
// @Failure      403 {object} pkg.HTTPError
// @Security     Bearer
// @Router       /professionals/{id}/service-requests/pending/count [get]
func (h *ServiceRequestHandler) CountPendingServiceRequests(c *gin.Context) {
	professionalID, ok := requireSelf(c, entities.RoleProfessional)
	if !ok {
		return
	}

	n, err := h.usecase.CountPendingForProfessional(c.Request.Context(), professionalID)
	if err != nil {
		writeError(c, mapServiceRequestError(err))
		return
	}
	c.JSON(http.StatusOK, response.PendingCountResponse{ProfessionalID: professionalID, Pending: n})
}

func requireActor(c *gin.Context) (middleware.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		writeError(c, errUnauthenticated)
		return middleware.Actor{}, false
	}
	return actor, true
}

// requireSelf parses the :id path param and checks it names the caller acting as role.
func requireSelf(c *gin.Context, role entities.ActorRole) (int64, bool) {
	actor, ok := requireActor(c)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, errInvalidPartyID.WithField("id"))
		return 0, false
	}
	if actor.Role != role || actor.ID != id {
		writeError(c, errForbidden)
		return 0, false
	}
	return id, true
}

func dateField(err error) string {
	if errors.Is(err, request.ErrInvalidServiceTime) {
		return "service_time"
	}
	return "service_date"
}

func writeError(c *gin.Context, appErr *pkg.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func mapServiceRequestError(err error) *pkg.AppError {
	kind := string(usecase.KindOf(err))
	switch usecase.KindOf(err) {
	case usecase.KindValidation:
		appErr := pkg.NewDomainError(kind, err.Error(), err, http.StatusBadRequest)
		var vErr *usecase.ValidationError
		if errors.As(err, &vErr) {
			appErr = appErr.WithField(vErr.Field)
		}
		return appErr
	case usecase.KindDuplicateRequest:
		return pkg.NewDomainErrorSimple(kind, "A pending service request already exists for this professional", http.StatusConflict)
	case usecase.KindNotFound:
		return pkg.NewDomainErrorSimple(kind, "Service request not found", http.StatusNotFound)
	case usecase.KindNotOwner:
		return pkg.NewDomainErrorSimple(kind, "Not allowed to act on this service request", http.StatusForbidden)
	case usecase.KindInvalidTransition:
		return pkg.NewDomainError(kind, err.Error(), err, http.StatusConflict)
	default:
		return pkg.NewDomainError(string(usecase.KindUnknown), "An internal error occurred", err, http.StatusInternalServerError)
	}
}
