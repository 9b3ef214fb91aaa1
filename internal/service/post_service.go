package service

import (
	"time"

	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/repository"
)

// PostService 帖子业务服务
type PostService struct {
	postRepo       repository.PostRepository
	discussionRepo repository.DiscussionRepository
	recounter      *Recounter
	pageLimit      int
}

// NewPostService 创建帖子服务
func NewPostService(
	postRepo repository.PostRepository,
	discussionRepo repository.DiscussionRepository,
	recounter *Recounter,
	pageLimit int,
) *PostService {
	return &PostService{
		postRepo:       postRepo,
		discussionRepo: discussionRepo,
		recounter:      recounter,
		pageLimit:      pageLimit,
	}
}

// List 分页列出讨论内帖子
func (s *PostService) List(viewer *models.User, discussionID uint, page, limit int) (*repository.Page[models.Post], error) {
	if _, err := s.viewableDiscussion(viewer, discussionID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.pageLimit
	}
	return s.postRepo.ListByDiscussion(discussionID, page, limit)
}

// Reply 回复讨论，已关闭的讨论只有管理员可回复
func (s *PostService) Reply(author *models.User, discussionID uint, body string) (*models.Post, error) {
	if author == nil || author.ID == 0 {
		return nil, ErrForbidden
	}
	if author.Banned {
		return nil, ErrUserBanned
	}
	discussion, err := s.viewableDiscussion(author, discussionID)
	if err != nil {
		return nil, err
	}
	if discussion.Closed && !author.IsAdmin() {
		return nil, ErrDiscussionClosed
	}
	post := &models.Post{
		DiscussionID: discussion.ID,
		UserID:       author.ID,
		Body:         sanitizeBody(body),
		Trusted:      discussion.Trusted,
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(post.ID)
}

// Edit 修改帖子内容
func (s *PostService) Edit(editor *models.User, id uint, body string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if _, err := s.viewableDiscussion(editor, post.DiscussionID); err != nil {
		return nil, ErrPostNotFound
	}
	if !post.EditableBy(editor) {
		return nil, ErrForbidden
	}
	if editor.Banned {
		return nil, ErrUserBanned
	}
	now := time.Now()
	post.Body = sanitizeBody(body)
	post.EditedAt = &now
	if err := post.Validate(); err != nil {
		return nil, err
	}
	post.User = nil
	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(id)
}

// Delete 删除单个帖子，首帖只能随讨论一起删除
func (s *PostService) Delete(editor *models.User, id uint) error {
	if !editor.CanModerate() {
		return ErrForbidden
	}
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	first, err := s.discussionRepo.FirstPost(post.DiscussionID)
	if err != nil {
		return err
	}
	if first != nil && first.ID == post.ID {
		return ErrFirstPostDelete
	}
	if err := s.postRepo.Delete(id); err != nil {
		return err
	}
	s.recounter.Discussion(post.DiscussionID)
	return nil
}

func (s *PostService) viewableDiscussion(viewer *models.User, discussionID uint) (*models.Discussion, error) {
	discussion, err := s.discussionRepo.GetByID(discussionID, false)
	if err != nil {
		return nil, err
	}
	if discussion == nil || !discussion.ViewableBy(viewer) {
		return nil, ErrDiscussionNotFound
	}
	return discussion, nil
}
