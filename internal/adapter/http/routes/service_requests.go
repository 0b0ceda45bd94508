package routes

import (
	"contacto_profesionales/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathServiceRequests = "/service-requests"
	PathClients         = "/clients"
	PathProfessionals   = "/professionals"
)

func addServiceRequestRoutes(rg *gin.RouterGroup, h *handlers.ServiceRequestHandler) {
	requests := rg.Group(PathServiceRequests)
	{
		requests.POST("", h.CreateServiceRequest)
		requests.GET("/:id", h.GetServiceRequest)
		requests.PATCH("/:id/accept", h.AcceptServiceRequest)
		requests.PATCH("/:id/reject", h.RejectServiceRequest)
		requests.PATCH("/:id/complete", h.CompleteServiceRequest)
		requests.PATCH("/:id/cancel", h.CancelServiceRequest)
	}

	rg.GET(PathClients+"/:id"+PathServiceRequests, h.ListClientServiceRequests)

	professionals := rg.Group(PathProfessionals + "/:id" + PathServiceRequests)
	{
		professionals.GET("", h.ListProfessionalServiceRequests)
		professionals.GET("/pending/count", h.CountPendingServiceRequests)
	}
}
