package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/service"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService *service.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// List godoc
// @Summary List clients
// @Description Get all clients, newest first
// @Tags Clients
// @Accept json
// @Produce json
// @Success 200 {array} domain.ClientDTO
// @Failure 500 {object} domain.ErrorResponse
// @Router /clients [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list clients",
		})
		return
	}

	respondJSON(w, http.StatusOK, clients)
}

// GetByID godoc
// @Summary Get client by ID
// @Description Get a single client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID" format(uuid)
// @Success 200 {object} domain.ClientDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid client ID format",
		})
		return
	}

	client, err := h.clientService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Client not found",
			})
			return
		}
		h.logger.Error("failed to get client", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get client",
		})
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// Create godoc
// @Summary Create client
// @Description Create a new client
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body domain.CreateClientRequest true "Client data"
// @Success 201 {object} domain.ClientDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create client", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create client",
		})
		return
	}

	w.Header().Set("Location", "/api/v1/clients/"+client.ID.String())
	respondJSON(w, http.StatusCreated, client)
}

// Update godoc
// @Summary Update client
// @Description Update an existing client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID" format(uuid)
// @Param request body domain.UpdateClientRequest true "Client data"
// @Success 200 {object} domain.ClientDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid client ID format",
		})
		return
	}

	var req domain.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Client not found",
			})
			return
		}
		h.logger.Error("failed to update client", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update client",
		})
		return
	}

	respondJSON(w, http.StatusOK, client)
}
