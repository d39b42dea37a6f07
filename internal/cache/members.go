package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
)

// MemberTTL bounds how long a revoked role can linger if an invalidation is lost.
const MemberTTL = 5 * time.Minute

// MemberRepository caches membership lookups by (workspace, user).
// Every mutation goes to the wrapped repository first, then evicts. Inside a
// transaction the keys are evicted again after commit: a concurrent Get may
// have re-cached the committed row in between.
type MemberRepository struct {
	repositories.MemberRepository
	cache  *Cache[models.WorkspaceMember]
	logger *slog.Logger
}

// NewMemberRepository wraps next. With a nil client it returns next unchanged.
func NewMemberRepository(next repositories.MemberRepository, rc *redis.Client, prefix string, logger *slog.Logger) repositories.MemberRepository {
	if rc == nil {
		return next
	}
	return &MemberRepository{
		MemberRepository: next,
		cache:            New[models.WorkspaceMember](rc, prefix+"thecrew:member", MemberTTL, logger),
		logger:           logger,
	}
}

func (r *MemberRepository) Get(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error) {
	key := r.cache.Key(workspaceID, userID)
	cached, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("member cache read failed", "key", key, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	member, err := r.MemberRepository.Get(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, member); err != nil {
		r.logger.Warn("member cache write failed", "key", key, "error", err)
	}
	return member, nil
}

func (r *MemberRepository) UpdateRole(ctx context.Context, workspaceID, memberID string, role models.Role) error {
	member, err := r.MemberRepository.GetByID(ctx, workspaceID, memberID)
	if err != nil {
		return err
	}
	if err := r.MemberRepository.UpdateRole(ctx, workspaceID, memberID, role); err != nil {
		return err
	}
	r.evict(ctx, r.cache.Key(workspaceID, member.UserID))
	return nil
}

func (r *MemberRepository) Remove(ctx context.Context, workspaceID, memberID string) error {
	member, err := r.MemberRepository.GetByID(ctx, workspaceID, memberID)
	if err != nil {
		return err
	}
	if err := r.MemberRepository.Remove(ctx, workspaceID, memberID); err != nil {
		return err
	}
	r.evict(ctx, r.cache.Key(workspaceID, member.UserID))
	return nil
}

func (r *MemberRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	members, err := r.MemberRepository.List(ctx, workspaceID)
	if err != nil {
		return err
	}
	if err := r.MemberRepository.DeleteByWorkspace(ctx, workspaceID); err != nil {
		return err
	}
	keys := make([]string, 0, len(members))
	for _, m := range members {
		keys = append(keys, r.cache.Key(workspaceID, m.UserID))
	}
	r.evict(ctx, keys...)
	return nil
}

func (r *MemberRepository) evict(ctx context.Context, keys ...string) {
	r.cache.Delete(ctx, keys...)
	if repositories.InTx(ctx) {
		repositories.AfterCommit(ctx, func(ctx context.Context) {
			r.cache.Delete(ctx, keys...)
		})
	}
}
