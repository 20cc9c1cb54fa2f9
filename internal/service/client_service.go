package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/mapper"
	"github.com/social-insight/timesheet-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ClientService struct {
	clientRepo *repository.ClientRepository
	logger     *zap.Logger
}

func NewClientService(clientRepo *repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	client := &domain.Client{
		Name:    req.Name,
		Address: req.Address,
		Email:   req.Email,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	client.Name = req.Name
	client.Address = req.Address
	client.Email = req.Email

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) List(ctx context.Context) ([]domain.ClientDTO, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
	}
	return dtos, nil
}
