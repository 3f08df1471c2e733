package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorReportLocked is returned when another request holds the write lock of a report.
var ErrorReportLocked = errors.New("report is being updated by another request")
