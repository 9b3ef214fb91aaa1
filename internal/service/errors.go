package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserBanned         = errors.New("user banned")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryInUse      = errors.New("category still has discussions")
	ErrDiscussionNotFound = errors.New("discussion not found")
	ErrDiscussionClosed   = errors.New("discussion closed")
	ErrPostNotFound       = errors.New("post not found")
	ErrFirstPostDelete    = errors.New("first post cannot be deleted alone")
)
