package service

import (
	"errors"
	"sort"
	"time"

	"github.com/fith/sugar/internal/constants"
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/repository"

	"gorm.io/gorm"
)

// editableDiscussionFields 编辑讨论时允许写入的字段
var editableDiscussionFields = []string{
	constants.DiscussionFieldTitle,
	constants.DiscussionFieldCategoryID,
	constants.DiscussionFieldClosed,
	constants.DiscussionFieldNSFW,
	constants.DiscussionFieldBody,
}

// DiscussionService 讨论业务服务
type DiscussionService struct {
	discussionRepo repository.DiscussionRepository
	categoryRepo   repository.CategoryRepository
	postRepo       repository.PostRepository
	recounter      *Recounter
	pageLimit      int
}

// NewDiscussionService 创建讨论服务
func NewDiscussionService(
	discussionRepo repository.DiscussionRepository,
	categoryRepo repository.CategoryRepository,
	postRepo repository.PostRepository,
	recounter *Recounter,
	pageLimit int,
) *DiscussionService {
	return &DiscussionService{
		discussionRepo: discussionRepo,
		categoryRepo:   categoryRepo,
		postRepo:       postRepo,
		recounter:      recounter,
		pageLimit:      pageLimit,
	}
}

// CreateDiscussionInput 发起讨论输入
type CreateDiscussionInput struct {
	Title      string
	CategoryID uint
	Body       string
	NSFW       bool
}

// FindPaginated 分页列出讨论
// categoryID 为 0 时列出全部分类，非可信用户看不到可信讨论
func (s *DiscussionService) FindPaginated(viewer *models.User, categoryID uint, page, limit int) (*repository.Page[models.Discussion], error) {
	if categoryID != 0 {
		category, err := s.categoryRepo.GetByID(categoryID)
		if err != nil {
			return nil, err
		}
		if category == nil || !category.ViewableBy(viewer) {
			return nil, ErrCategoryNotFound
		}
	}
	return s.discussionRepo.FindPaginated(repository.DiscussionListFilter{
		Page:          page,
		Limit:         s.resolveLimit(limit),
		CategoryID:    categoryID,
		OnlyUntrusted: !viewer.IsTrusted(),
	})
}

// FindByPoster 分页列出某用户发起的讨论
func (s *DiscussionService) FindByPoster(viewer *models.User, userID uint, page, limit int) (*repository.Page[models.Discussion], error) {
	return s.discussionRepo.FindPaginated(repository.DiscussionListFilter{
		Page:          page,
		Limit:         s.resolveLimit(limit),
		UserID:        userID,
		OnlyUntrusted: !viewer.IsTrusted(),
	})
}

// Get 获取讨论，不可见时视为不存在
func (s *DiscussionService) Get(viewer *models.User, id uint) (*models.Discussion, error) {
	discussion, err := s.discussionRepo.GetByID(id, false)
	if err != nil {
		return nil, err
	}
	if discussion == nil || !discussion.ViewableBy(viewer) {
		return nil, ErrDiscussionNotFound
	}
	return discussion, nil
}

// Create 发起讨论，讨论与首帖在同一事务内创建
func (s *DiscussionService) Create(poster *models.User, input CreateDiscussionInput) (*models.Discussion, error) {
	if poster == nil || poster.ID == 0 {
		return nil, ErrForbidden
	}
	if poster.Banned {
		return nil, ErrUserBanned
	}
	discussion := &models.Discussion{
		Title:      input.Title,
		CategoryID: input.CategoryID,
		UserID:     poster.ID,
		NSFW:       input.NSFW,
		Body:       sanitizeBody(input.Body),
	}
	if err := discussion.Validate(true); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil || !category.ViewableBy(poster) {
		return nil, invalidField(constants.DiscussionFieldCategoryID)
	}
	discussion.Trusted = category.Trusted

	err = s.discussionRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.discussionRepo.WithTx(tx).Create(discussion); err != nil {
			return err
		}
		_, err := s.createFirstPost(s.postRepo.WithTx(tx), discussion)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.discussionRepo.GetByID(discussion.ID, false)
}

// CreateFirstPost 以讨论的正文创建首帖
func (s *DiscussionService) CreateFirstPost(discussion *models.Discussion) (*models.Post, error) {
	return s.createFirstPost(s.postRepo, discussion)
}

func (s *DiscussionService) createFirstPost(repo repository.PostRepository, discussion *models.Discussion) (*models.Post, error) {
	post := &models.Post{
		DiscussionID: discussion.ID,
		UserID:       discussion.UserID,
		Body:         discussion.Body,
		Trusted:      discussion.Trusted,
		CreatedAt:    discussion.CreatedAt,
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := repo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

// ApplyUpdate 按参数更新讨论
// 禁写字段先被剔除，再按白名单取值；body 非空时只改写首帖
func (s *DiscussionService) ApplyUpdate(editor *models.User, id uint, params map[string]interface{}) (*models.Discussion, error) {
	discussion, err := s.discussionRepo.GetByID(id, false)
	if err != nil {
		return nil, err
	}
	if discussion == nil || !discussion.ViewableBy(editor) {
		return nil, ErrDiscussionNotFound
	}
	if !discussion.EditableBy(editor) {
		return nil, ErrForbidden
	}
	if editor.Banned {
		return nil, ErrUserBanned
	}

	safe := models.SafeDiscussionAttributes(params)
	if dropped := droppedUnsafeFields(params); len(dropped) > 0 {
		logger.Debugw("discussion_update_unsafe_fields_dropped", "discussion_id", id, "editor_id", editor.ID, "fields", dropped)
	}
	var errs models.ValidationErrors
	previousCategoryID := discussion.CategoryID
	body := ""
	for _, field := range editableDiscussionFields {
		raw, ok := safe[field]
		if !ok {
			continue
		}
		switch field {
		case constants.DiscussionFieldTitle:
			if value, ok := asString(raw); ok {
				discussion.Title = value
			} else {
				errs.Add(field, "invalid")
			}
		case constants.DiscussionFieldCategoryID:
			if value, ok := asUint(raw); ok {
				discussion.CategoryID = value
			} else {
				errs.Add(field, "invalid")
			}
		case constants.DiscussionFieldClosed:
			if value, ok := asBool(raw); ok {
				discussion.Closed = value
			} else {
				errs.Add(field, "invalid")
			}
		case constants.DiscussionFieldNSFW:
			if value, ok := asBool(raw); ok {
				discussion.NSFW = value
			} else {
				errs.Add(field, "invalid")
			}
		case constants.DiscussionFieldBody:
			if value, ok := asString(raw); ok {
				body = value
			} else {
				errs.Add(field, "invalid")
			}
		}
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	if err := discussion.Validate(false); err != nil {
		return nil, err
	}

	categoryChanged := discussion.CategoryID != previousCategoryID
	if categoryChanged {
		category, err := s.categoryRepo.GetByID(discussion.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil || !category.ViewableBy(editor) {
			return nil, invalidField(constants.DiscussionFieldCategoryID)
		}
		discussion.Trusted = category.Trusted
	}

	var firstPost *models.Post
	if hasContent(body) {
		firstPost, err = s.discussionRepo.FirstPost(discussion.ID)
		if err != nil {
			return nil, err
		}
		sanitized := sanitizeBody(body)
		if sanitized == "" {
			return nil, invalidField(constants.DiscussionFieldBody)
		}
		if firstPost != nil {
			now := time.Now()
			firstPost.Body = sanitized
			firstPost.EditedAt = &now
		}
	}

	discussion.Category = nil
	discussion.Poster = nil
	discussion.LastPoster = nil
	err = s.discussionRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.discussionRepo.WithTx(tx).Update(discussion); err != nil {
			return err
		}
		postRepo := s.postRepo.WithTx(tx)
		if categoryChanged {
			if err := postRepo.SetTrustedByDiscussion(discussion.ID, discussion.Trusted); err != nil {
				return err
			}
		}
		if firstPost != nil {
			return postRepo.Update(firstPost)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if categoryChanged {
		s.recounter.Categories(previousCategoryID, discussion.CategoryID)
	}
	return s.discussionRepo.GetByID(discussion.ID, false)
}

// Delete 删除讨论及全部帖子，仅管理员可操作
func (s *DiscussionService) Delete(editor *models.User, id uint) error {
	if !editor.CanModerate() {
		return ErrForbidden
	}
	discussion, err := s.discussionRepo.GetByID(id, false)
	if err != nil {
		return err
	}
	if discussion == nil {
		return ErrDiscussionNotFound
	}
	authorIDs, err := s.postRepo.AuthorIDs(id)
	if err != nil {
		return err
	}
	if err := s.discussionRepo.Delete(id); err != nil {
		return err
	}
	s.recounter.Users(appendMissing(authorIDs, discussion.UserID)...)
	return nil
}

// SetSticky 设置置顶，仅管理员可操作
func (s *DiscussionService) SetSticky(editor *models.User, id uint, sticky bool) (*models.Discussion, error) {
	return s.moderate(editor, id, map[string]interface{}{"sticky": sticky})
}

// SetClosed 设置关闭状态，仅管理员可操作
func (s *DiscussionService) SetClosed(editor *models.User, id uint, closed bool) (*models.Discussion, error) {
	return s.moderate(editor, id, map[string]interface{}{"closed": closed})
}

func (s *DiscussionService) moderate(editor *models.User, id uint, updates map[string]interface{}) (*models.Discussion, error) {
	if !editor.CanModerate() {
		return nil, ErrForbidden
	}
	if err := s.discussionRepo.UpdateColumns(id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscussionNotFound
		}
		return nil, err
	}
	return s.discussionRepo.GetByID(id, false)
}

func (s *DiscussionService) resolveLimit(limit int) int {
	if limit > 0 {
		return limit
	}
	return s.pageLimit
}

func appendMissing(ids []uint, id uint) []uint {
	for _, item := range ids {
		if item == id {
			return ids
		}
	}
	return append(ids, id)
}

func droppedUnsafeFields(params map[string]interface{}) []string {
	var dropped []string
	for key := range params {
		if models.IsUnsafeDiscussionAttribute(key) {
			dropped = append(dropped, key)
		}
	}
	sort.Strings(dropped)
	return dropped
}
