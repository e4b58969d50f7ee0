package service

import (
	"context"

	"github.com/google/uuid"

	"clientapi/internal/cache"
	"clientapi/internal/errors"
	"clientapi/internal/model"
	"clientapi/internal/repository"
	"clientapi/pkg/logger"
)

// CreateClientInput carries the fields needed to create a directory record.
type CreateClientInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
	Type       string
}

// UpdateClientInput carries optional updates. Empty fields are left
// unchanged.
type UpdateClientInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
	Type       string
}

// ClientStats aggregates directory counts by status and type.
type ClientStats struct {
	Total         int64 `json:"total"`
	Active        int64 `json:"active"`
	Inactive      int64 `json:"inactive"`
	Suspended     int64 `json:"suspended"`
	Pending       int64 `json:"pending"`
	Individuals   int64 `json:"individuals"`
	Professionals int64 `json:"professionals"`
	Distributors  int64 `json:"distributors"`
}

// ClientService exposes the client directory operations.
type ClientService interface {
	CreateClient(ctx context.Context, input CreateClientInput) (*model.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	GetClientByEmail(ctx context.Context, email string) (*model.Client, error)
	ListClients(ctx context.Context, req repository.PageRequest) (repository.Page[model.Client], error)
	ListClientsByStatus(ctx context.Context, status string, req repository.PageRequest) (repository.Page[model.Client], error)
	ListClientsByType(ctx context.Context, clientType string, req repository.PageRequest) (repository.Page[model.Client], error)
	SearchClients(ctx context.Context, term string, req repository.PageRequest) (repository.Page[model.Client], error)
	UpdateClient(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*model.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ActivateClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	DeactivateClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Stats(ctx context.Context) (*ClientStats, error)
}

type clientService struct {
	repo  repository.ClientRepository
	cache *cache.Client
}

// NewClientService builds a ClientService with repository and cache.
func NewClientService(repo repository.ClientRepository, cache *cache.Client) ClientService {
	return &clientService{repo: repo, cache: cache}
}

const clientStatsCacheKey = "client:stats"

func (s *clientService) CreateClient(ctx context.Context, input CreateClientInput) (*model.Client, error) {
	clientType := input.Type
	if clientType == "" {
		clientType = model.TypeIndividual
	}
	if !model.ValidClientType(clientType) {
		return nil, errors.ErrInvalidClientType
	}

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrEmailAlreadyExists
	}

	client := &model.Client{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      model.NormalizeEmail(input.Email),
		Phone:      input.Phone,
		Address:    input.Address,
		City:       input.City,
		PostalCode: input.PostalCode,
		Country:    input.Country,
		Type:       clientType,
		Status:     model.StatusActive,
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, clientStatsCacheKey)
	lg := logger.Get()
	lg.Info().Str("client_id", client.ID.String()).Msg("client created")
	return client, nil
}

func (s *clientService) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *clientService) GetClientByEmail(ctx context.Context, email string) (*model.Client, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *clientService) ListClients(ctx context.Context, req repository.PageRequest) (repository.Page[model.Client], error) {
	return s.repo.List(ctx, req)
}

func (s *clientService) ListClientsByStatus(ctx context.Context, status string, req repository.PageRequest) (repository.Page[model.Client], error) {
	if !model.ValidStatus(status) {
		return repository.Page[model.Client]{}, errors.ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, status, req)
}

func (s *clientService) ListClientsByType(ctx context.Context, clientType string, req repository.PageRequest) (repository.Page[model.Client], error) {
	if !model.ValidClientType(clientType) {
		return repository.Page[model.Client]{}, errors.ErrInvalidClientType
	}
	return s.repo.ListByType(ctx, clientType, req)
}

func (s *clientService) SearchClients(ctx context.Context, term string, req repository.PageRequest) (repository.Page[model.Client], error) {
	return s.repo.Search(ctx, term, req)
}

func (s *clientService) UpdateClient(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*model.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != "" && model.NormalizeEmail(input.Email) != client.Email {
		taken, err := s.repo.ExistsByEmailExcluding(ctx, input.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errors.ErrEmailAlreadyExists
		}
		client.Email = model.NormalizeEmail(input.Email)
	}
	if input.FirstName != "" {
		client.FirstName = input.FirstName
	}
	if input.LastName != "" {
		client.LastName = input.LastName
	}
	if input.Phone != "" {
		client.Phone = input.Phone
	}
	if input.Address != "" {
		client.Address = input.Address
	}
	if input.City != "" {
		client.City = input.City
	}
	if input.PostalCode != "" {
		client.PostalCode = input.PostalCode
	}
	if input.Country != "" {
		client.Country = input.Country
	}
	if input.Type != "" {
		if !model.ValidClientType(input.Type) {
			return nil, errors.ErrInvalidClientType
		}
		client.Type = input.Type
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	lg := logger.Get()
	lg.Info().Str("client_id", id.String()).Msg("client updated")
	return client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, clientStatsCacheKey)
	lg := logger.Get()
	lg.Info().Str("client_id", id.String()).Msg("client deleted")
	return nil
}

func (s *clientService) ActivateClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return s.setStatus(ctx, id, model.StatusActive)
}

func (s *clientService) DeactivateClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return s.setStatus(ctx, id, model.StatusInactive)
}

func (s *clientService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func (s *clientService) Stats(ctx context.Context) (*ClientStats, error) {
	var cached ClientStats
	if s.cache.GetJSON(ctx, clientStatsCacheKey, &cached) {
		return &cached, nil
	}

	stats := &ClientStats{}
	var err error
	if stats.Total, err = s.repo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Active, err = s.repo.CountByStatus(ctx, model.StatusActive); err != nil {
		return nil, err
	}
	if stats.Inactive, err = s.repo.CountByStatus(ctx, model.StatusInactive); err != nil {
		return nil, err
	}
	if stats.Suspended, err = s.repo.CountByStatus(ctx, model.StatusSuspended); err != nil {
		return nil, err
	}
	if stats.Pending, err = s.repo.CountByStatus(ctx, model.StatusPending); err != nil {
		return nil, err
	}
	if stats.Individuals, err = s.repo.CountByType(ctx, model.TypeIndividual); err != nil {
		return nil, err
	}
	if stats.Professionals, err = s.repo.CountByType(ctx, model.TypeProfessional); err != nil {
		return nil, err
	}
	if stats.Distributors, err = s.repo.CountByType(ctx, model.TypeDistributor); err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, clientStatsCacheKey, stats, statsCacheTTL)
	return stats, nil
}

func (s *clientService) setStatus(ctx context.Context, id uuid.UUID, status string) (*model.Client, error) {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, clientStatsCacheKey)
	lg := logger.Get()
	lg.Info().Str("client_id", id.String()).Str("status", status).Msg("client status changed")
	return s.repo.FindByID(ctx, id)
}
