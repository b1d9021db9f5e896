package handlers

import (
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"auctions/internal/apperrors"
	"auctions/internal/ingest"
	"auctions/models"
)

const maxFormBytes = 32 << 20

type itemRequest struct {
	Auction     int64           `json:"auction" validate:"required,gt=0"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Image       *string         `json:"image" validate:"omitempty,max=255"`
	BasePrice   *decimal.Decimal `json:"base_price" validate:"required"`
	Increment   *decimal.Decimal `json:"increment"`
	Order       int             `json:"order" validate:"gte=0"`
}

func (req *itemRequest) check() error {
	fields := map[string][]string{}
	if req.BasePrice != nil && !ingest.ValidMoney(*req.BasePrice) {
		fields["base_price"] = append(fields["base_price"], "must be >= 0 with at most 10 digits and 2 decimal places")
	}
	if req.Increment != nil && !ingest.ValidMoney(*req.Increment) {
		fields["increment"] = append(fields["increment"], "must be >= 0 with at most 10 digits and 2 decimal places")
	}
	if len(fields) > 0 {
		return apperrors.Validation("request validation failed").WithFields(fields)
	}
	return nil
}

func (req *itemRequest) apply(it *models.Item) {
	it.AuctionID = req.Auction
	it.Name = strings.TrimSpace(req.Name)
	it.Description = req.Description
	it.Image = req.Image
	if req.BasePrice != nil {
		it.BasePrice = *req.BasePrice
	}
	it.Increment = decimal.Zero
	if req.Increment != nil {
		it.Increment = *req.Increment
	}
	it.Order = req.Order
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// readItemRequest JSON или multipart форма. Загруженный файл сохраняется
// только как имя.
func (h *Handler) readItemRequest(w http.ResponseWriter, r *http.Request) (*itemRequest, error) {
	req := &itemRequest{}
	if !isMultipart(r) {
		if err := h.decodeJSON(w, r, req); err != nil {
			return nil, err
		}
		return req, req.check()
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		return nil, apperrors.InvalidArgument("Invalid multipart form")
	}
	form := r.MultipartForm

	fields := map[string][]string{}
	get := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	parseInt := func(key string, dst *int64) {
		if raw := get(key); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				fields[key] = append(fields[key], "A valid integer is required.")
				return
			}
			*dst = v
		}
	}
	parseDecimal := func(key string) *decimal.Decimal {
		raw := get(key)
		if raw == "" {
			return nil
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			fields[key] = append(fields[key], "A valid number is required.")
			return nil
		}
		return &v
	}

	var order int64
	parseInt("auction", &req.Auction)
	parseInt("order", &order)
	req.BasePrice = parseDecimal("base_price")
	req.Increment = parseDecimal("increment")
	req.Order = int(order)
	req.Name = get("name")
	req.Description = get("description")
	if v := strings.TrimSpace(get("image")); v != "" {
		req.Image = &v
	} else if fhs := form.File["image"]; len(fhs) > 0 {
		if name := ingest.SanitizeFilename(fhs[0].Filename); name != "" {
			req.Image = &name
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("request validation failed").WithFields(fields)
	}
	if err := h.validateStruct(req); err != nil {
		return nil, err
	}
	return req, req.check()
}

// ListItemsHandler GET /api/items?auction_id=
func (h *Handler) ListItemsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	auctionID, err := parseQueryID(r, "auction_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.Store.ListItems(r.Context(), auctionID, params.Limit, params.Offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateItemHandler POST /api/items
func (h *Handler) CreateItemHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.readItemRequest(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	it := &models.Item{}
	req.apply(it)
	if err := h.Store.CreateItem(r.Context(), it); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// GetItemHandler GET /api/items/{id}
func (h *Handler) GetItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	it, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// UpdateItemHandler PUT /api/items/{id}
func (h *Handler) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.readItemRequest(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	it, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req.apply(it)
	if err := h.Store.UpdateItem(r.Context(), it); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteItemHandler DELETE /api/items/{id}
func (h *Handler) DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteItem(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeNoContent(w)
}

// BulkCreateItemsHandler POST /api/items/bulk, multipart или urlencoded
func (h *Handler) BulkCreateItemsHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	var err error
	if isMultipart(r) {
		err = r.ParseMultipartForm(maxFormBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		h.writeError(w, r, apperrors.InvalidArgument("Invalid form data"))
		return
	}

	form := r.PostForm
	var files map[string][]*multipart.FileHeader
	if r.MultipartForm != nil {
		form = r.MultipartForm.Value
		files = r.MultipartForm.File
	}

	batch, err := ingest.Parse(form, files)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.Ingest.Ingest(r.Context(), batch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !res.OK {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}
