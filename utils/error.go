package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

func ErrorDuplicateValue(column string) error {
	return errors.New("duplicate value for " + column)
}
