package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "gnecli/internal/errors"
	"gnecli/internal/services"
	"gnecli/internal/validation"
	api "gnecli/pkg/contracts/api/v1"
)

// maxBodyBytes bounds a batch request body. A full batch of long names
// fits well within it.
const maxBodyBytes = 1 << 20

// LookupServiceInterface defines the dictionary operations the handler needs
type LookupServiceInterface interface {
	Lookup(ctx context.Context, req api.LookupRequest) (api.LookupResponse, error)
	LookupBatch(ctx context.Context, req api.BatchLookupRequest) (api.BatchLookupResponse, error)
	DictionaryInfo(ctx context.Context) (api.DictionaryInfo, error)
}

// LookupHandler serves dictionary lookups with RFC 7807 errors.
type LookupHandler struct {
	service       LookupServiceInterface
	validator     *validation.StructValidator
	errorHandler  *apierrors.ErrorHandler
	maxBatchItems int
	logger        *slog.Logger
}

// NewLookupHandler creates a lookup handler accepting at most maxBatchItems
// items per batch.
func NewLookupHandler(service LookupServiceInterface, maxBatchItems int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *LookupHandler {
	return &LookupHandler{
		service:       service,
		validator:     validation.NewStructValidator(),
		errorHandler:  errorHandler,
		maxBatchItems: maxBatchItems,
		logger:        logger.With(slog.String("component", "lookup_handler")),
	}
}

// Routes returns the lookup routes
func (h *LookupHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/lookup", h.Lookup)
	r.Post("/lookup", h.LookupBatch)
	r.Get("/dictionary", h.Dictionary)
	return r
}

// Lookup handles GET /api/lookup?name=&country=
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := api.LookupRequest{
		FirstName:   query.Get("name"),
		CountryCode: query.Get("country"),
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Lookup(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// LookupBatch handles POST /api/lookup with a JSON BatchLookupRequest body.
func (h *LookupHandler) LookupBatch(w http.ResponseWriter, r *http.Request) {
	var req api.BatchLookupRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if h.maxBatchItems > 0 && len(req.Items) > h.maxBatchItems {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("items",
			fmt.Sprintf("at most %d items may be looked up at once", h.maxBatchItems)))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.LookupBatch(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "batch lookup",
		slog.Int("items", len(req.Items)),
		slog.Int("found", resp.Found),
		slog.Int("missing", resp.Missing))
	render.JSON(w, r, resp)
}

// Dictionary handles GET /api/dictionary
func (h *LookupHandler) Dictionary(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.DictionaryInfo(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

func (h *LookupHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrDictionaryNotLoaded) {
		h.errorHandler.HandleError(w, r, apierrors.ErrDictionaryMissing)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}
