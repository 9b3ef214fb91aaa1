package public

import (
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/repository"
)

// CategoryView 分类响应结构
type CategoryView struct {
	models.Category
	Param string `json:"param"`
}

// DiscussionView 讨论响应结构，关联用户只输出公开信息
type DiscussionView struct {
	models.Discussion
	Poster     *UserView  `json:"poster,omitempty"`
	LastPoster *UserView  `json:"last_poster,omitempty"`
	Posts      []PostView `json:"posts,omitempty"`
	Param      string     `json:"param"`
	Labels     []string   `json:"labels"`
	HasLabels  bool       `json:"has_labels"`
}

// PostView 帖子响应结构
type PostView struct {
	models.Post
	User *UserView `json:"user,omitempty"`
}

// UserView 用户公开信息
type UserView struct {
	ID               uint   `json:"id"`
	Username         string `json:"username"`
	Name             string `json:"name"`
	Admin            bool   `json:"admin"`
	Trusted          bool   `json:"trusted"`
	DiscussionsCount int    `json:"discussions_count"`
	PostsCount       int    `json:"posts_count"`
}

func (h *Handler) categoryView(category models.Category) CategoryView {
	return CategoryView{
		Category: category,
		Param:    category.Param(h.Config.Forum.WorkSafeURLs),
	}
}

func discussionView(discussion models.Discussion) DiscussionView {
	view := DiscussionView{
		Discussion: discussion,
		Poster:     optionalUserView(discussion.Poster),
		LastPoster: optionalUserView(discussion.LastPoster),
		Param:      discussion.Param(),
		Labels:     discussion.Labels(),
		HasLabels:  discussion.HasLabels(),
	}
	if len(discussion.Posts) > 0 {
		view.Posts = mapSlice(discussion.Posts, postView)
	}
	return view
}

func postView(post models.Post) PostView {
	return PostView{Post: post, User: optionalUserView(post.User)}
}

func optionalUserView(user *models.User) *UserView {
	if user == nil {
		return nil
	}
	view := userView(user)
	return &view
}

func userView(user *models.User) UserView {
	return UserView{
		ID:               user.ID,
		Username:         user.Username,
		Name:             user.Name(),
		Admin:            user.IsAdmin(),
		Trusted:          user.IsTrusted(),
		DiscussionsCount: user.DiscussionsCount,
		PostsCount:       user.PostsCount,
	}
}

func mapSlice[T, V any](items []T, convert func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return out
}

// mapPage 转换分页结果中的条目，分页信息原样保留
func mapPage[T, V any](page *repository.Page[T], convert func(T) V) *repository.Page[V] {
	return &repository.Page[V]{
		Items:       mapSlice(page.Items, convert),
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		Offset:      page.Offset,
		Limit:       page.Limit,
	}
}
