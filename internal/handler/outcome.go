package handler

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/artur/tubegrab/internal/database/models"
	"github.com/artur/tubegrab/internal/downloader"
)

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeClientError
	outcomeCapabilityError
	outcomeInternalError
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeSuccess:
		return "success"
	case outcomeClientError:
		return "client_error"
	case outcomeCapabilityError:
		return "capability_error"
	default:
		return "internal_error"
	}
}

// outcome is what a handler pipeline produced. The boundary turns it into
// exactly one audit row and one response.
type outcome struct {
	kind    outcomeKind
	status  int           // HTTP status for non-success outcomes
	audit   models.Status // status written to the audit row
	message string        // client-facing error
	detail  string        // audit/log detail
}

func succeeded() outcome {
	return outcome{kind: outcomeSuccess, status: http.StatusOK, audit: models.StatusSuccess}
}

func clientError(message, detail string) outcome {
	return outcome{
		kind:    outcomeClientError,
		status:  http.StatusBadRequest,
		audit:   models.StatusFailed,
		message: message,
		detail:  detail,
	}
}

func capabilityError(err *downloader.ExtractionError, prefix string) outcome {
	return outcome{
		kind:    outcomeCapabilityError,
		status:  http.StatusBadRequest,
		audit:   models.StatusError,
		message: capabilityMessage(err.Message, prefix),
		detail:  err.Message,
	}
}

func internalError(detail string) outcome {
	return outcome{
		kind:    outcomeInternalError,
		status:  http.StatusInternalServerError,
		audit:   models.StatusError,
		message: msgInternalServerError,
		detail:  detail,
	}
}

// missingOutput is a server-side failure the caller can retry.
func missingOutput(message string) outcome {
	return outcome{
		kind:    outcomeInternalError,
		status:  http.StatusInternalServerError,
		audit:   models.StatusFailed,
		message: message,
		detail:  message,
	}
}

// extractorFailure classifies an error returned by the extractor.
func extractorFailure(err error, prefix string) outcome {
	var xerr *downloader.ExtractionError
	if errors.As(err, &xerr) {
		return capabilityError(xerr, prefix)
	}
	return internalError(err.Error())
}

func (o outcome) ok() bool {
	return o.kind == outcomeSuccess
}

// recovered converts a panic value into an internal error outcome.
func recovered(p any) outcome {
	return internalError(fmt.Sprintf("panic: %v", p))
}

// log writes one line describing the outcome at a level matching its kind.
func (o outcome) log(logger *zap.Logger, msg string, fields ...zap.Field) {
	fields = append(fields,
		zap.String("outcome", o.kind.String()),
		zap.String("audit_status", string(o.audit)),
		zap.Int("status", o.status))
	if o.detail != "" {
		fields = append(fields, zap.String("detail", o.detail))
	}

	switch o.kind {
	case outcomeSuccess:
		logger.Info(msg, fields...)
	case outcomeInternalError:
		logger.Error(msg, fields...)
	default:
		logger.Warn(msg, fields...)
	}
}
