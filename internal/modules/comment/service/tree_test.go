package comment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	commentDto "github.com/rightsvoice/backend/internal/modules/comment/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id uuid.UUID, parentID *uuid.UUID, createdAt time.Time) *commentDto.CommentResponse {
	return &commentDto.CommentResponse{
		ID:        id,
		ParentID:  parentID,
		CreatedAt: createdAt,
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
	assert.Empty(t, BuildTree([]*commentDto.CommentResponse{}))
}

func TestBuildTreeNesting(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rootID := uuid.New()
	childID := uuid.New()
	grandchildID := uuid.New()

	tree := BuildTree([]*commentDto.CommentResponse{
		node(rootID, nil, base),
		node(childID, &rootID, base.Add(time.Minute)),
		node(grandchildID, &childID, base.Add(2*time.Minute)),
	})

	require.Len(t, tree, 1)
	assert.Equal(t, rootID, tree[0].ID)
	assert.Equal(t, 0, tree[0].Depth)

	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, childID, tree[0].Replies[0].ID)
	assert.Equal(t, 1, tree[0].Replies[0].Depth)

	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, grandchildID, tree[0].Replies[0].Replies[0].ID)
	assert.Equal(t, 2, tree[0].Replies[0].Replies[0].Depth)
}

// A comment referencing a parent that is not in the input is dropped, not
// promoted to root.
func TestBuildTreeDropsOrphans(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rootID := uuid.New()
	childID := uuid.New()
	missingID := uuid.New()

	tree := BuildTree([]*commentDto.CommentResponse{
		node(rootID, nil, base.Add(10*time.Second)),
		node(childID, &rootID, base.Add(20*time.Second)),
		node(uuid.New(), &missingID, base.Add(5*time.Second)),
	})

	require.Len(t, tree, 1)
	assert.Equal(t, rootID, tree[0].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, childID, tree[0].Replies[0].ID)
}

// An orphan's own children vanish with it: they attach to a node that never
// makes it into the tree.
func TestBuildTreeDropsOrphanSubtrees(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rootID := uuid.New()
	orphanID := uuid.New()
	missingID := uuid.New()

	tree := BuildTree([]*commentDto.CommentResponse{
		node(rootID, nil, base),
		node(orphanID, &missingID, base.Add(time.Minute)),
		node(uuid.New(), &orphanID, base.Add(2*time.Minute)),
	})

	require.Len(t, tree, 1)
	assert.Equal(t, rootID, tree[0].ID)
	assert.Empty(t, tree[0].Replies)
}

func TestBuildTreeSiblingsNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	oldest := node(uuid.New(), nil, base)
	middle := node(uuid.New(), nil, base.Add(time.Minute))
	newest := node(uuid.New(), nil, base.Add(2*time.Minute))

	tree := BuildTree([]*commentDto.CommentResponse{oldest, newest, middle})

	require.Len(t, tree, 3)
	assert.Equal(t, newest.ID, tree[0].ID)
	assert.Equal(t, middle.ID, tree[1].ID)
	assert.Equal(t, oldest.ID, tree[2].ID)
}

// Equal timestamps keep their input order.
func TestBuildTreeTieKeepsInputOrder(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	first := node(uuid.New(), nil, at)
	second := node(uuid.New(), nil, at)
	third := node(uuid.New(), nil, at)

	tree := BuildTree([]*commentDto.CommentResponse{first, second, third})

	require.Len(t, tree, 3)
	assert.Equal(t, first.ID, tree[0].ID)
	assert.Equal(t, second.ID, tree[1].ID)
	assert.Equal(t, third.ID, tree[2].ID)
}

func TestBuildTreeRepliesOrderedPerLevel(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rootID := uuid.New()
	earlyReply := node(uuid.New(), &rootID, base.Add(time.Minute))
	lateReply := node(uuid.New(), &rootID, base.Add(time.Hour))

	tree := BuildTree([]*commentDto.CommentResponse{
		node(rootID, nil, base),
		earlyReply,
		lateReply,
	})

	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, lateReply.ID, tree[0].Replies[0].ID)
	assert.Equal(t, earlyReply.ID, tree[0].Replies[1].ID)
}

// Rebuilding from the same input yields a structurally identical tree.
func TestBuildTreeIdempotent(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rootID := uuid.New()
	childID := uuid.New()
	missingID := uuid.New()

	flat := []*commentDto.CommentResponse{
		node(rootID, nil, base.Add(10*time.Second)),
		node(childID, &rootID, base.Add(20*time.Second)),
		node(uuid.New(), &missingID, base.Add(5*time.Second)),
	}

	first := BuildTree(flat)
	second := BuildTree(flat)

	require.Len(t, second, len(first))
	assert.Equal(t, first[0].ID, second[0].ID)
	require.Len(t, second[0].Replies, len(first[0].Replies))
	assert.Equal(t, first[0].Replies[0].ID, second[0].Replies[0].ID)
}

func TestBuildTreeLeavesHaveEmptyReplies(t *testing.T) {
	tree := BuildTree([]*commentDto.CommentResponse{
		node(uuid.New(), nil, time.Now()),
	})

	require.Len(t, tree, 1)
	assert.NotNil(t, tree[0].Replies)
	assert.Empty(t, tree[0].Replies)
}
