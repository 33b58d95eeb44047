package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrWrongPhase         = errors.New("action not allowed in current state")
	ErrMissingStudent     = errors.New("student is not selected")
	ErrMissingTeacher     = errors.New("teacher is not selected")
	ErrMissingSubject     = errors.New("subject is not selected")
	ErrMissingMonth       = errors.New("month is not selected")
	ErrNoWeekdaySelected  = errors.New("no weekday selected")
	ErrUnknownSubject     = errors.New("subject does not belong to selected teacher")
	ErrQuotaLoading       = errors.New("subscription is still loading")
	ErrSuperseded         = errors.New("lookup superseded by newer selection")
	ErrEndNotAfterStart   = errors.New("end time must be after start time")
	ErrInvalidWeekdayTime = errors.New("invalid weekday time")
)

// InputError поля формы, не прошедшие проверку
type InputError struct {
	Fields []string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", strings.Join(e.Fields, ", "))
}
