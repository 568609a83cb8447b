package util

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrPlanNotFound     = errors.New("learning plan not found")
	ErrWeekNotFound     = errors.New("week not found in plan")
	ErrDayNotFound      = errors.New("day not found in week")
	ErrNoPlanSelected   = errors.New("no learning plan selected")
	ErrNoWeekSelected   = errors.New("no week selected")
	ErrStaleResult      = errors.New("selection changed while request was in flight")
	ErrTokenExpired     = errors.New("token expired")
)
