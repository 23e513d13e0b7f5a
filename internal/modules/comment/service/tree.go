package comment

import (
	"sort"

	"github.com/google/uuid"
	commentDto "github.com/rightsvoice/backend/internal/modules/comment/dto"
)

// BuildTree assembles a flat comment list into the parent/child hierarchy
// used for rendering. It is a pure function of its input: calling it twice on
// the same slice yields structurally identical trees.
//
// Rules:
//   - root comments (nil ParentID) form the top level
//   - a comment whose parent is missing from the input is an orphan and is
//     dropped, not promoted to root
//   - siblings are ordered newest first at every level; equal timestamps keep
//     their input order (stable sort)
//   - Depth is set per node, roots at 0, unbounded
func BuildTree(flat []*commentDto.CommentResponse) []*commentDto.CommentResponse {
	nodes := make(map[uuid.UUID]*commentDto.CommentResponse, len(flat))
	for _, c := range flat {
		c.Replies = nil
		nodes[c.ID] = c
	}

	var roots []*commentDto.CommentResponse
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
		// Dangling parent reference: the comment stays out of the tree.
	}

	sortLevel(roots, 0)
	return roots
}

func sortLevel(siblings []*commentDto.CommentResponse, depth int) {
	sort.SliceStable(siblings, func(i, j int) bool {
		return siblings[i].CreatedAt.After(siblings[j].CreatedAt)
	})

	for _, node := range siblings {
		node.Depth = depth
		if node.Replies == nil {
			node.Replies = []*commentDto.CommentResponse{}
		}
		sortLevel(node.Replies, depth+1)
	}
}
