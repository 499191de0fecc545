package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrAssessmentNotFound  = errors.New("assessment not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionNotResumable = errors.New("session is not in progress")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrModuleNotFound      = errors.New("module not found")
	ErrPathNotFound        = errors.New("learning path not found")
	ErrNoResponses         = errors.New("responses are required")
	ErrAssessmentFinished  = errors.New("assessment already finished")
	ErrAlreadyCheckedIn    = errors.New("今日已签到")
)
