package reaction

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rightsvoice/backend/internal/entity"
	reactionDto "github.com/rightsvoice/backend/internal/modules/reaction/dto"
	reactionRepo "github.com/rightsvoice/backend/internal/modules/reaction/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReactionServiceFixture(t *testing.T) (*gorm.DB, *redis.Client, ReactionService) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Role{}, &entity.User{}, &entity.Reaction{}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewReactionService(reactionRepo.NewReactionRepository(db), client, nil, nil, nil)
	return db, client, svc
}

func TestGetReactionsCachesEmptyEntity(t *testing.T) {
	db, client, svc := setupReactionServiceFixture(t)
	ctx := context.Background()
	refID := uuid.New()

	resp, err := svc.GetReactions(ctx, nil, refID, entity.ReferencePost)
	require.NoError(t, err)
	assert.Empty(t, resp.Counts)

	// The rebuild must leave a key behind even with nothing to count
	exists, err := client.Exists(ctx, countsKey(entity.ReferencePost, refID)).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, exists)

	// A row inserted behind the cache stays invisible until the key
	// expires, which proves the second read was served from redis
	require.NoError(t, db.Create(&entity.Reaction{
		UserID:        uuid.New(),
		ReferenceID:   refID,
		ReferenceType: entity.ReferencePost,
		Type:          entity.ReactionTrue,
	}).Error)

	resp, err = svc.GetReactions(ctx, nil, refID, entity.ReferencePost)
	require.NoError(t, err)
	assert.Empty(t, resp.Counts)
}

func TestGetReactionsRebuildsFromDB(t *testing.T) {
	db, client, svc := setupReactionServiceFixture(t)
	ctx := context.Background()
	refID := uuid.New()

	for _, reactionType := range []string{entity.ReactionTrue, entity.ReactionTrue, entity.ReactionFalse} {
		require.NoError(t, db.Create(&entity.Reaction{
			UserID:        uuid.New(),
			ReferenceID:   refID,
			ReferenceType: entity.ReferencePost,
			Type:          reactionType,
		}).Error)
	}
	require.NoError(t, client.FlushAll(ctx).Err())

	resp, err := svc.GetReactions(ctx, nil, refID, entity.ReferencePost)
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Counts[entity.ReactionTrue])
	assert.EqualValues(t, 1, resp.Counts[entity.ReactionFalse])
	_, leaked := resp.Counts[countsPlaceholderField]
	assert.False(t, leaked)
}

func TestToggleKeepsCacheInStep(t *testing.T) {
	_, _, svc := setupReactionServiceFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	req := reactionDto.ReactionToggleRequest{
		ReferenceID:   uuid.New(),
		ReferenceType: entity.ReferencePost,
		Type:          entity.ReactionTrue,
	}

	resp, err := svc.Toggle(ctx, userID, req)
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Counts[entity.ReactionTrue])
	require.NotNil(t, resp.UserReacted)
	assert.Equal(t, entity.ReactionTrue, *resp.UserReacted)

	req.Type = entity.ReactionNotice
	resp, err = svc.Toggle(ctx, userID, req)
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Counts[entity.ReactionNotice])
	assert.NotContains(t, resp.Counts, entity.ReactionTrue)

	resp, err = svc.Toggle(ctx, userID, req)
	require.NoError(t, err)
	assert.Empty(t, resp.Counts)
}
