package repository

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"clientapi/internal/errors"
	"clientapi/internal/model"
)

// UserRepository defines identity persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByEmailExcluding(ctx context.Context, email string, id uuid.UUID) (bool, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, req PageRequest) (Page[model.User], error)
	ListByRole(ctx context.Context, role string, req PageRequest) (Page[model.User], error)
	ListByStatus(ctx context.Context, status string, req PageRequest) (Page[model.User], error)
	Search(ctx context.Context, term string, req PageRequest) (Page[model.User], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateEntry(err) {
			return errors.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail looks up by canonical email. Inputs are folded the same way
// writes are, so lookups are case-insensitive.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", model.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", model.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ExistsByEmailExcluding(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND id <> ?", model.NormalizeEmail(email), id).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isDuplicateEntry(err) {
			return errors.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, req PageRequest) (Page[model.User], error) {
	return r.page(ctx, r.db.WithContext(ctx).Model(&model.User{}), req)
}

func (r *userRepository) ListByRole(ctx context.Context, role string, req PageRequest) (Page[model.User], error) {
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role)
	return r.page(ctx, q, req)
}

func (r *userRepository) ListByStatus(ctx context.Context, status string, req PageRequest) (Page[model.User], error) {
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("status = ?", status)
	return r.page(ctx, q, req)
}

// Search matches the term against name, email and company, case
// insensitively.
func (r *userRepository) Search(ctx context.Context, term string, req PageRequest) (Page[model.User], error) {
	pattern := "%" + term + "%"
	q := r.db.WithContext(ctx).Model(&model.User{}).Where(
		"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR LOWER(company_name) LIKE LOWER(?)",
		pattern, pattern, pattern, pattern,
	)
	return r.page(ctx, q, req)
}

func (r *userRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}

func (r *userRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *userRepository) page(ctx context.Context, q *gorm.DB, req PageRequest) (Page[model.User], error) {
	req = req.Normalize()

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[model.User]{}, err
	}

	var users []model.User
	err := q.Order("last_name, first_name").
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&users).Error
	if err != nil {
		return Page[model.User]{}, err
	}
	return NewPage(users, total, req), nil
}
