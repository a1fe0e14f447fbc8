package qahttp

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"knowledge-qa/internal/infra/logger"
	"knowledge-qa/internal/usecase"
)

type Handler struct {
	documents      usecase.DocumentUsecase
	qa             usecase.AskQuestionUsecase
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(
	documents usecase.DocumentUsecase,
	qa usecase.AskQuestionUsecase,
	maxUploadBytes int64,
	logger *slog.Logger,
) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = usecase.DefaultMaxUploadBytes
	}
	return &Handler{
		documents:      documents,
		qa:             qa,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UploadDocument stores a plain-text file sent as the multipart field "file".
// (POST /api/documents/upload)
func (h *Handler) UploadDocument(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "No file uploaded"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return h.writeError(c, err, "Failed to upload document")
	}
	defer f.Close()

	// One extra byte lets the usecase see that the limit was exceeded.
	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return h.writeError(c, err, "Failed to upload document")
	}

	doc, err := h.documents.Upload(c.Request().Context(), usecase.UploadInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return h.writeError(c, err, "Failed to upload document")
	}

	return c.JSON(http.StatusCreated, uploadResponse{
		Message:  "Document uploaded successfully",
		Document: toSummaryResponse(doc.ID, doc.Name, doc.UploadedAt, doc.FileSize),
	})
}

// ListDocuments returns document summaries, newest first.
// (GET /api/documents)
func (h *Handler) ListDocuments(c echo.Context) error {
	docs, err := h.documents.List(c.Request().Context())
	if err != nil {
		return h.writeError(c, err, "Failed to fetch documents")
	}

	resp := documentListResponse{Documents: make([]documentSummaryResponse, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, toSummaryResponse(d.ID, d.Name, d.UploadedAt, d.FileSize))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetDocument returns a single document including its content.
// (GET /api/documents/:id)
func (h *Handler) GetDocument(c echo.Context) error {
	id := c.Param("id")
	ctx := logger.WithDocumentID(c.Request().Context(), id)

	doc, err := h.documents.Get(ctx, id)
	if err != nil {
		return h.writeError(c, err, "Failed to fetch document")
	}

	return c.JSON(http.StatusOK, documentResponse{
		ID:         doc.ID,
		Name:       doc.Name,
		Content:    doc.Content,
		UploadedAt: doc.UploadedAt,
		FileSize:   doc.FileSize,
	})
}

// DeleteDocument removes a document.
// (DELETE /api/documents/:id)
func (h *Handler) DeleteDocument(c echo.Context) error {
	id := c.Param("id")
	ctx := logger.WithDocumentID(c.Request().Context(), id)

	if err := h.documents.Delete(ctx, id); err != nil {
		return h.writeError(c, err, "Failed to delete document")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Document deleted successfully"})
}

// Ask answers a question against every stored document and records it in history.
// (POST /api/qa/ask)
func (h *Handler) Ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Question is required"})
	}

	record, err := h.qa.Execute(c.Request().Context(), req.Question)
	if err != nil {
		return h.writeError(c, err, "Failed to get answer.")
	}
	return c.JSON(http.StatusOK, toRecordResponse(*record))
}

// History returns recent answered questions.
// (GET /api/qa/history)
func (h *Handler) History(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = parsed
	}

	records, err := h.qa.History(c.Request().Context(), limit)
	if err != nil {
		return h.writeError(c, err, "Failed to fetch history")
	}

	resp := historyResponse{History: make([]qaRecordResponse, 0, len(records))}
	for _, r := range records {
		resp.History = append(resp.History, toRecordResponse(r))
	}
	return c.JSON(http.StatusOK, resp)
}
