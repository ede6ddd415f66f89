package course

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrDuplicateCode  = errors.New("course code already exists for this university")
	ErrNoUniversity   = errors.New("user has no university association")
)
