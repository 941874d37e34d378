package memory

import (
	"context"

	"github.com/xiebiao/bookreview/internal/domain/user"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

type userRepository struct {
	s *Store
}

// NewUserRepository 创建用户仓储（内存）
func NewUserRepository(s *Store) user.Repository {
	return &userRepository{s: s}
}

// Create 用户名唯一
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.users {
		if row.Username == u.Username {
			return apperrors.ErrUsernameDuplicate
		}
	}

	r.s.nextUserID++
	now := r.s.now()
	row := &userRow{
		ID:        r.s.nextUserID,
		Username:  u.Username,
		Password:  u.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.users[row.ID] = row

	u.ID = row.ID
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return row.toEntity(), nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.users {
		if row.Username == username {
			return row.toEntity(), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (row *userRow) toEntity() *user.User {
	return &user.User{
		ID:        row.ID,
		Username:  row.Username,
		Password:  row.Password,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
