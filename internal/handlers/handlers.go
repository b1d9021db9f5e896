package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"auctions/internal/apperrors"
	"auctions/internal/ingest"
	"auctions/internal/lifecycle"
	"auctions/internal/messaging"
)

const maxBodyBytes = 1 << 20

// Lifecycle переходы статусов аукциона
type Lifecycle interface {
	Start(ctx context.Context, id int64, idempotencyKey string) (*lifecycle.Outcome, error)
	Pause(ctx context.Context, id int64) (*lifecycle.Outcome, error)
	Finish(ctx context.Context, id int64, idempotencyKey string) (*lifecycle.Outcome, error)
}

// BulkIngestor загрузка пачки лотов
type BulkIngestor interface {
	Ingest(ctx context.Context, b *ingest.Batch) (*ingest.Result, error)
}

// HealthChecker проверка воркера мессенджера
type HealthChecker interface {
	Health(ctx context.Context) messaging.Response
}

// Handler оборачивает Storage и сервисы для HTTP
type Handler struct {
	Store     StorageInterface
	Lifecycle Lifecycle
	Ingest    BulkIngestor
	Messaging HealthChecker

	logger   *zap.Logger
	validate *validator.Validate
}

type Option func(*Handler)

func WithLifecycle(l Lifecycle) Option {
	return func(h *Handler) { h.Lifecycle = l }
}

func WithIngestor(i BulkIngestor) Option {
	return func(h *Handler) { h.Ingest = i }
}

func WithHealthChecker(c HealthChecker) Option {
	return func(h *Handler) { h.Messaging = c }
}

func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) { h.logger = logger.Named("http") }
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, opts ...Option) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	h := &Handler{
		Store:    store,
		logger:   zap.NewNop(),
		validate: v,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type PaginationParams struct {
	Limit  int
	Offset int
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: defaultLimit}

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		params.Limit = min(l, maxLimit)
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	return params
}

// parseID читает положительный id из пути
func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidArgument("invalid %s", name)
	}
	return id, nil
}

// parseQueryID необязательный фильтр по id, 0 если не задан
func parseQueryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidArgument("%s must be a positive integer", name)
	}
	return id, nil
}

// decodeJSON читает тело запроса с ограничением размера и проверяет его validator-ом
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	// Ограничение размера тела, чтобы избежать DoS
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return apperrors.InvalidArgument("Failed to read request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.InvalidArgument("Invalid JSON format")
	}
	return h.validateStruct(dst)
}

func (h *Handler) validateStruct(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("%v", err)
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], fe.Error())
	}
	return apperrors.Validation("request validation failed").WithFields(fields)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	OK      bool             `json:"ok"`
	Message string           `json:"message"`
	Error   *apperrors.Error `json:"error"`
}

// writeError отдает ошибку в общем формате. Неклассифицированные ошибки
// логируются и скрываются за internal.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal("internal error").WithCause(err)
	}
	if appErr.Kind == apperrors.KindInternal {
		h.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, appErr.Status, errorBody{OK: false, Message: appErr.Message, Error: appErr})
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
