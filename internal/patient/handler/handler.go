package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/itakarlapalli/subcentre/internal/patient"
	"github.com/itakarlapalli/subcentre/internal/patient/service"
)

// RegisterPatientRoutes mounts the patient CRUD contract on r.
func RegisterPatientRoutes(r gin.IRoutes, svc service.Service) {
	h := &patientHandler{svc: svc}
	r.GET("/api/patients", h.list)
	r.POST("/api/patients", h.create)
	r.PUT("/api/patients/:id", h.update)
	r.DELETE("/api/patients/:id", h.delete)
}

type patientHandler struct {
	svc service.Service
}

func (h *patientHandler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to retrieve patients data")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *patientHandler) create(c *gin.Context) {
	var in patient.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, "Failed to add patient")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *patientHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in patient.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err, "Failed to update patient")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *patientHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete patient")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted successfully"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return 0, false
	}
	return id, true
}

// writeError maps the domain error taxonomy onto status codes. Storage
// details stay in the server log; clients get the generic failure text.
func writeError(c *gin.Context, err error, failure string) {
	var ve *patient.ValidationError
	var nf *patient.NotFoundError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
	}
}
