package store

import (
	"context"

	"github.com/nbazone/nbazone/database/model"

	"gorm.io/gorm"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username = ?", username)
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email = ?", email)
}

func (s *UserStore) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).Where(query, arg).Count(&count).Error
	return count > 0, err
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{}
	err := s.db.WithContext(ctx).Where("username = ?", username).First(user).Error
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// RolesOf returns the role names attached to the user, ordered by role id.
func (s *UserStore) RolesOf(ctx context.Context, userID int64) ([]model.AppRole, error) {
	var names []model.AppRole
	err := s.db.WithContext(ctx).
		Model(&model.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id").
		Pluck("roles.role_name", &names).Error
	return names, err
}

// FindRole returns the seeded row for name.
func (s *UserStore) FindRole(ctx context.Context, name model.AppRole) (*model.Role, error) {
	role := &model.Role{}
	err := s.db.WithContext(ctx).Where("role_name = ?", name).First(role).Error
	if err != nil {
		return nil, translate(err)
	}
	return role, nil
}

// CreateWithRoles inserts the user and its role links in one transaction.
func (s *UserStore) CreateWithRoles(ctx context.Context, user *model.User, roles []model.Role) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		for _, role := range roles {
			link := &model.UserRole{UserId: user.Id, RoleId: role.Id}
			if err := tx.Create(link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}
