package repository

import "errors"

// ErrDuplicate is returned when a conditional insert hits an existing
// (class_id, student_email) row.
var ErrDuplicate = errors.New("duplicate class/student pair")
