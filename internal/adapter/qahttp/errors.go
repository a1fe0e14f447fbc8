package qahttp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"knowledge-qa/internal/domain"
)

const (
	msgNoDocuments     = "No documents available. Please upload documents first."
	msgGatewayTimeout  = "The model took too long to answer. Please try again."
	msgGatewayFailure  = "Failed to get answer. Please check your API key and try again."
	msgMalformedOutput = "The model returned an answer that could not be read. Please try again."
	msgNotFound        = "Document not found"
)

// writeError maps a usecase error to a status code and a stable user-facing message.
// fallback is returned for errors outside the domain taxonomy. The full error is only logged.
func (h *Handler) writeError(c echo.Context, err error, fallback string) error {
	status, message := classifyError(err, fallback)

	attrs := []any{
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		attrs = append(attrs,
			slog.String("gateway_kind", string(gwErr.Kind)),
			slog.String("backend", gwErr.Backend),
		)
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request().Context(), "request failed", attrs...)
	} else {
		h.logger.InfoContext(c.Request().Context(), "request rejected", attrs...)
	}

	return c.JSON(status, errorResponse{Error: message})
}

func classifyError(err error, fallback string) (int, string) {
	var (
		invalid   *domain.InvalidRequestError
		gwErr     *domain.GatewayError
		malformed *domain.MalformedOutputError
	)

	switch {
	case errors.Is(err, domain.ErrNoEvidence):
		return http.StatusBadRequest, msgNoDocuments
	case errors.As(err, &invalid):
		return http.StatusBadRequest, invalid.Reason
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.As(err, &gwErr):
		if gwErr.Kind == domain.GatewayTimeout {
			return http.StatusGatewayTimeout, msgGatewayTimeout
		}
		return http.StatusBadGateway, msgGatewayFailure
	case errors.As(err, &malformed):
		return http.StatusBadGateway, msgMalformedOutput
	default:
		return http.StatusInternalServerError, fallback
	}
}
