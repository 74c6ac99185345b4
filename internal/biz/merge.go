package biz

import (
	"sort"

	"github.com/go-kratos/kratos/v2/log"
)

// MergeResult is the output of Merger.Merge.
type MergeResult struct {
	Posts []*Post
	// GroupsMerged counts groups that produced a record.
	GroupsMerged int
	// GroupsEmpty counts groups whose members were all excluded.
	GroupsEmpty int
	// MembersMissing counts group members absent from the input posts.
	MembersMissing int
	// PostsAbsorbed counts posts folded into another group member.
	PostsAbsorbed int
}

// Merger reconciles duplicate groups into single records.
type Merger struct {
	log *log.Helper
}

// NewMerger creates a Merger.
func NewMerger(logger log.Logger) *Merger {
	return &Merger{log: log.NewHelper(logger)}
}

// ResolveGroups turns duplicate list lines into sets of post ids. File hash
// members expand to every post in all that carries the hash. A post id
// appearing in two groups is a data consistency error.
func ResolveGroups(groups []DuplicateGroup, all []*Post) ([][]int64, error) {
	var byHash map[string][]int64
	for _, g := range groups {
		if len(g.FileHashes) > 0 {
			byHash = make(map[string][]int64, len(all))
			for _, p := range all {
				byHash[p.FileHash] = append(byHash[p.FileHash], p.PostID)
			}
			break
		}
	}

	owner := make(map[int64]int)
	resolved := make([][]int64, 0, len(groups))
	for _, g := range groups {
		seen := make(map[int64]struct{})
		var ids []int64
		add := func(id int64) error {
			if _, ok := seen[id]; ok {
				return nil
			}
			if line, ok := owner[id]; ok {
				return ErrorDataConsistency("post %d is in duplicate groups on lines %d and %d", id, line, g.Line)
			}
			seen[id] = struct{}{}
			owner[id] = g.Line
			ids = append(ids, id)
			return nil
		}

		for _, id := range g.PostIDs {
			if err := add(id); err != nil {
				return nil, err
			}
		}
		for _, h := range g.FileHashes {
			for _, id := range byHash[h] {
				if err := add(id); err != nil {
					return nil, err
				}
			}
		}
		resolved = append(resolved, ids)
	}
	return resolved, nil
}

// Merge folds every duplicate group into one record: tags are unioned, score
// and rating take the maximum, and post id and file hash come from the
// surviving member with the smallest post id. Posts outside any group pass
// through unchanged. Members missing from posts are skipped; a group with no
// surviving member yields nothing. Output is ordered by post id.
func (m *Merger) Merge(posts []*Post, groups [][]int64) (*MergeResult, error) {
	byID := make(map[int64]*Post, len(posts))
	for _, p := range posts {
		if _, ok := byID[p.PostID]; ok {
			return nil, ErrorDataConsistency("post %d appears more than once in the input", p.PostID)
		}
		byID[p.PostID] = p
	}

	res := &MergeResult{}
	grouped := make(map[int64]struct{})
	merged := make([]*Post, 0, len(groups))
	for i, group := range groups {
		survivors := make([]int64, 0, len(group))
		members := make(map[int64]struct{}, len(group))
		for _, id := range group {
			if _, ok := members[id]; ok {
				continue
			}
			if _, ok := grouped[id]; ok {
				return nil, ErrorDataConsistency("post %d is in more than one duplicate group", id)
			}
			members[id] = struct{}{}
			grouped[id] = struct{}{}
			if _, ok := byID[id]; ok {
				survivors = append(survivors, id)
			} else {
				res.MembersMissing++
			}
		}

		if len(survivors) == 0 {
			res.GroupsEmpty++
			m.log.Debugf("duplicate group %d has no surviving member", i)
			continue
		}

		sort.Slice(survivors, func(a, b int) bool { return survivors[a] < survivors[b] })
		merged = append(merged, mergeGroup(byID, survivors))
		res.GroupsMerged++
		res.PostsAbsorbed += len(survivors) - 1
	}

	out := make([]*Post, 0, len(posts)-res.PostsAbsorbed)
	for _, p := range posts {
		if _, ok := grouped[p.PostID]; !ok {
			out = append(out, p)
		}
	}
	out = append(out, merged...)
	sort.Slice(out, func(a, b int) bool { return out[a].PostID < out[b].PostID })

	res.Posts = out
	return res, nil
}

// mergeGroup expects ids sorted ascending and all present in byID.
func mergeGroup(byID map[int64]*Post, ids []int64) *Post {
	merged := byID[ids[0]].Clone()
	for _, id := range ids[1:] {
		p := byID[id]
		for t := range p.Tags {
			merged.Tags.Add(t)
		}
		merged.Score = max(merged.Score, p.Score)
		merged.Rating = max(merged.Rating, p.Rating)
	}
	return merged
}
