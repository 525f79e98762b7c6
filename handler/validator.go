package handler

import (
	"errors"
	"regexp"

	"phishtrack/entity"
	"phishtrack/pkg/goutil"
	"phishtrack/pkg/router"
	"phishtrack/pkg/validator"
)

var (
	ErrMissingFile      = errors.New("missing file")
	ErrFileSizeTooLarge = errors.New("file size too large")
	ErrInvalidFileType  = errors.New("invalid file type")
	ErrMissingUser      = errors.New("missing user")
)

func CampaignNameValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		MinLen:   1,
		MaxLen:   60,
		Regex:    regexp.MustCompile(`^[0-9a-zA-Z_\-.\s]+$`),
	}
}

func CampaignDescValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		MaxLen:   200,
	}
}

func EmailValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		MinLen:   3,
		MaxLen:   120,
		Regex:    regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`),
	}
}

func PasswordValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		MinLen:   8,
		MaxLen:   64,
	}
}

func DisplayNameValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		MaxLen:   60,
	}
}

const maxPageLimit = 100

type paginationValidator struct {
	optional bool
}

func (v *paginationValidator) Validate(value interface{}) error {
	p, ok := value.(*entity.Pagination)
	if !ok {
		return errors.New("expect Pagination")
	}

	if p == nil {
		if v.optional {
			return nil
		}
		return errors.New("is required")
	}

	if p.GetLimit() > maxPageLimit {
		return errors.New("limit too large")
	}

	return nil
}

func PaginationValidator(optional bool) validator.Validator {
	return &paginationValidator{optional: optional}
}

type contextInfoValidator struct{}

func (v *contextInfoValidator) Validate(value interface{}) error {
	ci, ok := value.(ContextInfo)
	if !ok {
		return errors.New("expect ContextInfo")
	}

	if ci.User == nil {
		return ErrMissingUser
	}

	return nil
}

var ContextInfoValidator validator.Validator = new(contextInfoValidator)

type fileInfoValidator struct {
	maxSize     int64
	contentType []string
	optional    bool
}

func (v *fileInfoValidator) Validate(value interface{}) error {
	fileInfo, ok := value.(*router.FileMeta)
	if !ok {
		return errors.New("expect FileMeta")
	}

	if fileInfo == nil || fileInfo.File == nil {
		if !v.optional {
			return ErrMissingFile
		}
	} else {
		if fileInfo.FileHeader.Size > v.maxSize {
			return ErrFileSizeTooLarge
		}
		if len(v.contentType) > 0 && !goutil.ContainsStr(v.contentType, fileInfo.FileHeader.Header.Get("Content-Type")) {
			return ErrInvalidFileType
		}
	}

	return nil
}

func FileInfoValidator(optional bool, maxSize int64, contentType []string) validator.Validator {
	return &fileInfoValidator{
		optional:    optional,
		maxSize:     maxSize,
		contentType: contentType,
	}
}
