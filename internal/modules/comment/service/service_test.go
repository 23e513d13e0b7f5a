package comment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	commentDto "github.com/rightsvoice/backend/internal/modules/comment/dto"
	commentRepo "github.com/rightsvoice/backend/internal/modules/comment/repository"
	pointsRepo "github.com/rightsvoice/backend/internal/modules/points/repository"
	points "github.com/rightsvoice/backend/internal/modules/points/service"
	postRepo "github.com/rightsvoice/backend/internal/modules/post/repository"
	reactionRepo "github.com/rightsvoice/backend/internal/modules/reaction/repository"
	reaction "github.com/rightsvoice/backend/internal/modules/reaction/service"
	userRepo "github.com/rightsvoice/backend/internal/modules/user/repository"
	"github.com/rightsvoice/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type commentFixture struct {
	db        *gorm.DB
	svc       CommentService
	pointsSvc points.PointsService
	user      entity.User
	post      entity.Post
}

func setupCommentFixture(t *testing.T) *commentFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Role{}, &entity.User{}, &entity.Post{}, &entity.Comment{},
		&entity.Reaction{}, &entity.PointsEarned{}, &entity.PointsDeduction{},
	))

	user := entity.User{Username: "amina", Email: "amina@example.org", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	post := entity.Post{UserID: user.ID, Content: "field report"}
	require.NoError(t, db.Create(&post).Error)

	comments := commentRepo.NewCommentRepository(db)
	posts := postRepo.NewPostRepository(db)
	users := userRepo.NewUserRepository(db)
	pointsSvc := points.NewPointsService(pointsRepo.NewPointsRepository(db))
	reactionSvc := reaction.NewReactionService(reactionRepo.NewReactionRepository(db), nil, nil, posts, comments)

	svc := NewCommentService(db, comments, posts, users, pointsSvc, reactionSvc, nil, nil)

	return &commentFixture{db: db, svc: svc, pointsSvc: pointsSvc, user: user, post: post}
}

func (f *commentFixture) award(t *testing.T, points int) {
	t.Helper()
	require.NoError(t, f.pointsSvc.Award(context.Background(), f.user.ID, points, entity.SourceWelcomeBonus, "Welcome"))
}

func (f *commentFixture) deductionCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&entity.PointsDeduction{}).Count(&count).Error)
	return count
}

func (f *commentFixture) commentCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&entity.Comment{}).Count(&count).Error)
	return count
}

// A zero balance rejects the comment before anything is written: no comment
// row, no deduction row.
func TestCreateCommentInsufficientBalance(t *testing.T) {
	f := setupCommentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:  f.post.ID.String(),
		Content: "hello",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInsufficientPoints))

	assert.Zero(t, f.commentCount(t))
	assert.Zero(t, f.deductionCount(t))
}

func TestCreateCommentChargesFixedCost(t *testing.T) {
	f := setupCommentFixture(t)
	ctx := context.Background()
	f.award(t, 10)

	resp, err := f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:  f.post.ID.String(),
		Content: "first comment",
	})
	require.NoError(t, err)
	assert.Equal(t, "first comment", resp.Content)
	assert.Nil(t, resp.ParentID)

	assert.EqualValues(t, 1, f.commentCount(t))
	assert.EqualValues(t, 1, f.deductionCount(t))
	assert.Equal(t, 8, f.pointsSvc.GetBalance(ctx, f.user.ID))
}

// 10 earned, a comment and a reply: 10 - 2 - 2 leaves 6, with one deduction
// record per action.
func TestCreateCommentAndReplyScenario(t *testing.T) {
	f := setupCommentFixture(t)
	ctx := context.Background()
	f.award(t, 10)

	parent, err := f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:  f.post.ID.String(),
		Content: "top level",
	})
	require.NoError(t, err)

	reply, err := f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:   f.post.ID.String(),
		ParentID: parent.ID.String(),
		Content:  "a reply",
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)

	assert.Equal(t, 6, f.pointsSvc.GetBalance(ctx, f.user.ID))

	var deductions []entity.PointsDeduction
	require.NoError(t, f.db.Order("id asc").Find(&deductions).Error)
	require.Len(t, deductions, 2)
	assert.Equal(t, entity.ActionCommentCreation, deductions[0].ActionType)
	assert.Equal(t, entity.ActionReplyCreation, deductions[1].ActionType)
}

// A balance of exactly the action cost is spendable; the next submission at
// zero is rejected.
func TestCreateCommentBoundaryBalance(t *testing.T) {
	f := setupCommentFixture(t)
	ctx := context.Background()
	f.award(t, entity.ActionCost)

	_, err := f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:  f.post.ID.String(),
		Content: "spends the last points",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.pointsSvc.GetBalance(ctx, f.user.ID))

	_, err = f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:  f.post.ID.String(),
		Content: "one too many",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInsufficientPoints))
	assert.EqualValues(t, 1, f.commentCount(t))
}

func TestCreateCommentUnknownPost(t *testing.T) {
	f := setupCommentFixture(t)
	f.award(t, 10)

	_, err := f.svc.Create(context.Background(), f.user.ID, commentDto.CreateCommentRequest{
		PostID:  uuid.NewString(),
		Content: "hello",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCreateReplyParentOnOtherPost(t *testing.T) {
	f := setupCommentFixture(t)
	ctx := context.Background()
	f.award(t, 10)

	otherPost := entity.Post{UserID: f.user.ID, Content: "another post"}
	require.NoError(t, f.db.Create(&otherPost).Error)

	parent, err := f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:  otherPost.ID.String(),
		Content: "on the other post",
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:   f.post.ID.String(),
		ParentID: parent.ID.String(),
		Content:  "cross-post reply",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestCreateCommentSanitizesContent(t *testing.T) {
	f := setupCommentFixture(t)
	f.award(t, 10)

	resp, err := f.svc.Create(context.Background(), f.user.ID, commentDto.CreateCommentRequest{
		PostID:  f.post.ID.String(),
		Content: `hello <script>alert("x")</script>world`,
	})
	require.NoError(t, err)
	assert.NotContains(t, resp.Content, "<script>")
	assert.Contains(t, resp.Content, "hello")
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	f := setupCommentFixture(t)
	ctx := context.Background()
	f.award(t, 10)

	created, err := f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:  f.post.ID.String(),
		Content: "original",
	})
	require.NoError(t, err)

	stranger := entity.User{Username: "other", Email: "other@example.org", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&stranger).Error)

	_, err = f.svc.Update(ctx, stranger.ID, created.ID, commentDto.UpdateCommentRequest{Content: "hijacked"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	updated, err := f.svc.Update(ctx, f.user.ID, created.ID, commentDto.UpdateCommentRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
}

func TestGetByPostIDBuildsTree(t *testing.T) {
	f := setupCommentFixture(t)
	ctx := context.Background()
	f.award(t, 10)

	parent, err := f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:  f.post.ID.String(),
		Content: "root",
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.user.ID, commentDto.CreateCommentRequest{
		PostID:   f.post.ID.String(),
		ParentID: parent.ID.String(),
		Content:  "reply",
	})
	require.NoError(t, err)

	tree, err := f.svc.GetByPostID(ctx, f.post.ID, &f.user.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, parent.ID, tree[0].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, "reply", tree[0].Replies[0].Content)
	assert.Equal(t, 1, tree[0].Replies[0].Depth)
}
