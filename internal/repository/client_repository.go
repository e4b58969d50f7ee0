package repository

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"clientapi/internal/errors"
	"clientapi/internal/model"
)

// ClientRepository defines client directory persistence operations.
type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	FindByEmail(ctx context.Context, email string) (*model.Client, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByEmailExcluding(ctx context.Context, email string, id uuid.UUID) (bool, error)
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, req PageRequest) (Page[model.Client], error)
	ListByStatus(ctx context.Context, status string, req PageRequest) (Page[model.Client], error)
	ListByType(ctx context.Context, clientType string, req PageRequest) (Page[model.Client], error)
	Search(ctx context.Context, term string, req PageRequest) (Page[model.Client], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountByType(ctx context.Context, clientType string) (int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository builds a GORM-backed client repository.
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		if isDuplicateEntry(err) {
			return errors.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindByEmail(ctx context.Context, email string) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).
		Where("email = ?", model.NormalizeEmail(email)).
		First(&client).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Client{}).
		Where("email = ?", model.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *clientRepository) ExistsByEmailExcluding(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Client{}).
		Where("email = ? AND id <> ?", model.NormalizeEmail(email), id).
		Count(&count).Error
	return count > 0, err
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	if err := r.db.WithContext(ctx).Save(client).Error; err != nil {
		if isDuplicateEntry(err) {
			return errors.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Client{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrClientNotFound
	}
	return nil
}

func (r *clientRepository) List(ctx context.Context, req PageRequest) (Page[model.Client], error) {
	return r.page(ctx, r.db.WithContext(ctx).Model(&model.Client{}), req)
}

func (r *clientRepository) ListByStatus(ctx context.Context, status string, req PageRequest) (Page[model.Client], error) {
	q := r.db.WithContext(ctx).Model(&model.Client{}).Where("status = ?", status)
	return r.page(ctx, q, req)
}

func (r *clientRepository) ListByType(ctx context.Context, clientType string, req PageRequest) (Page[model.Client], error) {
	q := r.db.WithContext(ctx).Model(&model.Client{}).Where("type = ?", clientType)
	return r.page(ctx, q, req)
}

// Search matches the term against name and email, case insensitively.
func (r *clientRepository) Search(ctx context.Context, term string, req PageRequest) (Page[model.Client], error) {
	pattern := "%" + term + "%"
	q := r.db.WithContext(ctx).Model(&model.Client{}).Where(
		"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
		pattern, pattern, pattern,
	)
	return r.page(ctx, q, req)
}

func (r *clientRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Client{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrClientNotFound
	}
	return nil
}

func (r *clientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Client{}).Count(&count).Error
	return count, err
}

func (r *clientRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Client{}).
		Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *clientRepository) CountByType(ctx context.Context, clientType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Client{}).
		Where("type = ?", clientType).Count(&count).Error
	return count, err
}

func (r *clientRepository) page(ctx context.Context, q *gorm.DB, req PageRequest) (Page[model.Client], error) {
	req = req.Normalize()

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[model.Client]{}, err
	}

	var clients []model.Client
	err := q.Order("last_name, first_name").
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&clients).Error
	if err != nil {
		return Page[model.Client]{}, err
	}
	return NewPage(clients, total, req), nil
}
