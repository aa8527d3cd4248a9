package exceptions

import (
	"fmt"
	"sort"
	"strings"
)

// ServiceError is the boundary shape every request error reduces to. Code is
// the short machine-readable value surfaced in the response body, Cause is
// kept for logging.
type ServiceError struct {
	StatusCode int
	Code       string
	Cause      error
}

func (se *ServiceError) Error() string {
	return se.Cause.Error()
}

type RequestError interface {
	ToServiceError() *ServiceError
	Error() string
}

type NotFoundError struct {
	Resource string
	Id       string
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find a %s with id: %s", nfe.Resource, nfe.Id)
}

func (nfe *NotFoundError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 404,
		Code:       "NotFound",
		Cause:      nfe,
	}
}

func NotFound(resource string, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Id:       id,
	}
}

type ConflictError struct {
	Resource string
	Id       string
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("Found conflicting %s with id: %s", ce.Resource, ce.Id)
}

func (ce *ConflictError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 409,
		Code:       "AlreadyExists",
		Cause:      ce,
	}
}

func Conflict(resource string, id string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Id:       id,
	}
}

// InvalidInputError carries optional field-level detail for schema failures.
type InvalidInputError struct {
	Message string
	Fields  map[string]string
}

func (ie *InvalidInputError) Error() string {
	if len(ie.Fields) == 0 {
		return ie.Message
	}
	names := make([]string, 0, len(ie.Fields))
	for name := range ie.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	details := make([]string, 0, len(names))
	for _, name := range names {
		details = append(details, fmt.Sprintf("%s: %s", name, ie.Fields[name]))
	}
	return fmt.Sprintf("%s (%s)", ie.Message, strings.Join(details, ", "))
}

func (ie *InvalidInputError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 400,
		Code:       "ValidationError",
		Cause:      ie,
	}
}

func InvalidInput(message string) *InvalidInputError {
	return &InvalidInputError{
		Message: message,
	}
}

func InvalidFields(message string, fields map[string]string) *InvalidInputError {
	return &InvalidInputError{
		Message: message,
		Fields:  fields,
	}
}

type InvalidIdError struct {
	Id     string
	Reason string
}

func (ie *InvalidIdError) Error() string {
	return fmt.Sprintf("Invalid identifier %q: %s", ie.Id, ie.Reason)
}

func (ie *InvalidIdError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 400,
		Code:       "InvalidId",
		Cause:      ie,
	}
}

func InvalidId(id string, reason string) *InvalidIdError {
	return &InvalidIdError{
		Id:     id,
		Reason: reason,
	}
}

type MalformedKeyError struct {
	Key string
}

func (me *MalformedKeyError) Error() string {
	return fmt.Sprintf("Malformed composite key: %s", me.Key)
}

func (me *MalformedKeyError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 500,
		Code:       "MalformedKey",
		Cause:      me,
	}
}

func MalformedKey(key string) *MalformedKeyError {
	return &MalformedKeyError{
		Key: key,
	}
}

// UnauthorizedError keeps the verification failure for logging. The response
// body only ever sees Code and a generic message.
type UnauthorizedError struct {
	Code   string
	Reason error
}

func (ue *UnauthorizedError) Error() string {
	return "Unauthorized"
}

func (ue *UnauthorizedError) Unwrap() error {
	return ue.Reason
}

func (ue *UnauthorizedError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 401,
		Code:       ue.Code,
		Cause:      ue,
	}
}

func MissingToken() *UnauthorizedError {
	return &UnauthorizedError{Code: "MissingToken"}
}

func InvalidHeaderFormat() *UnauthorizedError {
	return &UnauthorizedError{Code: "InvalidHeaderFormat"}
}

func TokenVerificationFailed(reason error) *UnauthorizedError {
	return &UnauthorizedError{
		Code:   "TokenVerificationFailed",
		Reason: reason,
	}
}

type StoreUnavailableError struct {
	Cause error
}

func (se *StoreUnavailableError) Error() string {
	return fmt.Sprintf("Store operation did not complete: %s", se.Cause)
}

func (se *StoreUnavailableError) Unwrap() error {
	return se.Cause
}

func (se *StoreUnavailableError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 503,
		Code:       "StoreUnavailable",
		Cause:      se,
	}
}

func StoreUnavailable(cause error) *StoreUnavailableError {
	return &StoreUnavailableError{
		Cause: cause,
	}
}

// PartialFailureError reports a multi-step operation that stopped partway.
// Remaining lists the step identifiers left to apply; the whole operation is
// safe to retry since every step is an idempotent write.
type PartialFailureError struct {
	Operation string
	Remaining []string
	Cause     error
}

func (pe *PartialFailureError) Error() string {
	return fmt.Sprintf("%s stopped with %d steps remaining: %s", pe.Operation, len(pe.Remaining), pe.Cause)
}

func (pe *PartialFailureError) Unwrap() error {
	return pe.Cause
}

func (pe *PartialFailureError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 500,
		Code:       "PartialFailure",
		Cause:      pe,
	}
}

func PartialFailure(operation string, remaining []string, cause error) *PartialFailureError {
	return &PartialFailureError{
		Operation: operation,
		Remaining: remaining,
		Cause:     cause,
	}
}

type InternalServerError struct {
	Message string
}

func (ie *InternalServerError) Error() string {
	return ie.Message
}

func (ie *InternalServerError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 500,
		Code:       "InternalError",
		Cause:      ie,
	}
}

func InternalServer(message string) *InternalServerError {
	return &InternalServerError{
		Message: message,
	}
}
