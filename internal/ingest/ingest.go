package ingest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"auctions/db"
	"auctions/internal/apperrors"
	"auctions/internal/metrics"
	"auctions/models"
)

const (
	maxDigits   = 10
	maxDecimals = 2
)

// Store хранилище с транзакциями
type Store interface {
	WithinTx(ctx context.Context, fn func(tx db.Tx) error) error
}

// IndexError ошибки одного лота, по полям
type IndexError struct {
	Index  int                 `json:"index"`
	Errors map[string][]string `json:"errors"`
}

// Result ответ загрузки. При отказе Created всегда 0, ничего не сохранено.
type Result struct {
	OK        bool         `json:"ok"`
	AuctionID *int64       `json:"auction_id"`
	Created   int          `json:"created"`
	Errors    []IndexError `json:"errors,omitempty"`
}

// record проверяемое представление кандидата
type record struct {
	Name        string  `field:"name" validate:"required,max=200"`
	Price       string  `field:"base_price" validate:"required,money"`
	Increment   string  `field:"increment" validate:"required,money"`
	Order       string  `field:"order" validate:"required,number"`
	Image       *string `field:"image" validate:"omitempty,max=255"`
	Description string  `field:"description"`
}

var errRejected = errors.New("batch rejected")

type Ingestor struct {
	store    Store
	validate *validator.Validate
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func New(store Store, logger *zap.Logger, m *metrics.Metrics) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		store:    store,
		validate: newValidator(),
		logger:   logger.Named("ingest"),
		metrics:  m,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" {
			return name
		}
		return f.Name
	})
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		_, err := parseMoney(fl.Field().String())
		return err == nil
	})
	return v
}

// Ingest проверяет все лоты и сохраняет их одной транзакцией вместе с
// аукционом, если его нужно создать.
func (in *Ingestor) Ingest(ctx context.Context, b *Batch) (*Result, error) {
	if len(b.Items) == 0 {
		return nil, apperrors.Validation("No items received")
	}
	if b.AuctionID == 0 {
		if err := in.validate.Var(b.AuctionTitle, "required,max=200"); err != nil {
			return nil, apperrors.Validation("auction_title must be 1 to 200 characters")
		}
	}

	var failed []IndexError
	items := make([]models.Item, 0, len(b.Items))
	for _, c := range b.Items {
		it, fieldErrs := in.check(c)
		if fieldErrs != nil {
			failed = append(failed, IndexError{Index: c.Index, Errors: fieldErrs})
			continue
		}
		items = append(items, it)
	}

	var auctionID int64
	err := in.store.WithinTx(ctx, func(tx db.Tx) error {
		if b.AuctionID > 0 {
			if _, err := tx.GetAuction(ctx, b.AuctionID); err != nil {
				return err
			}
			auctionID = b.AuctionID
		} else {
			if len(failed) > 0 {
				return errRejected
			}
			a := &models.Auction{Title: b.AuctionTitle, Status: models.StatusDraft}
			if err := tx.CreateAuction(ctx, a); err != nil {
				return err
			}
			auctionID = a.ID
		}
		if len(failed) > 0 {
			return errRejected
		}

		for i := range items {
			items[i].AuctionID = auctionID
			if err := tx.CreateItem(ctx, &items[i]); err != nil {
				// транзакция после ошибки Postgres уже прервана, дальше не идем
				if k := apperrors.KindOf(err); k == apperrors.KindValidation || k == apperrors.KindConflict {
					failed = append(failed, IndexError{
						Index:  b.Items[i].Index,
						Errors: map[string][]string{"non_field_errors": {errorMessage(err)}},
					})
					return errRejected
				}
				return fmt.Errorf("insert item %d: %w", b.Items[i].Index, err)
			}
		}
		return nil
	})

	switch {
	case errors.Is(err, errRejected):
		in.metrics.ObserveBulk("rejected")
		in.logger.Info("bulk batch rejected",
			zap.Int("candidates", len(b.Items)),
			zap.Int("failed", len(failed)))
		res := &Result{OK: false, Errors: failed}
		if b.AuctionID > 0 {
			res.AuctionID = &b.AuctionID
		}
		return res, nil
	case err != nil:
		in.metrics.ObserveBulk("error")
		return nil, err
	}

	in.metrics.ObserveBulk("created")
	in.logger.Info("bulk batch created",
		zap.Int64("auction_id", auctionID),
		zap.Int("created", len(items)))
	return &Result{OK: true, AuctionID: &auctionID, Created: len(items)}, nil
}

// check превращает кандидата в лот либо возвращает ошибки по полям
func (in *Ingestor) check(c Candidate) (models.Item, map[string][]string) {
	r := record{
		Name:        strings.TrimSpace(c.Name),
		Price:       strings.TrimSpace(c.Price),
		Increment:   strings.TrimSpace(c.Increment),
		Order:       strings.TrimSpace(c.Order),
		Image:       c.Image,
		Description: c.Description,
	}

	if err := in.validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.Item{}, map[string][]string{"non_field_errors": {err.Error()}}
		}
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
		}
		return models.Item{}, fields
	}

	order, err := strconv.Atoi(r.Order)
	if err != nil {
		return models.Item{}, map[string][]string{"order": {"A valid integer is required."}}
	}
	price, _ := parseMoney(r.Price)
	increment, _ := parseMoney(r.Increment)

	return models.Item{
		Name:        r.Name,
		Description: r.Description,
		Image:       r.Image,
		BasePrice:   price,
		Increment:   increment,
		Order:       order,
	}, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "money":
		return fmt.Sprintf("A valid non-negative number with at most %d digits and %d decimal places is required.", maxDigits, maxDecimals)
	case "number":
		return "A valid non-negative integer is required."
	}
	return fmt.Sprintf("Failed on %q.", fe.Tag())
}

func errorMessage(err error) string {
	if ae, ok := apperrors.As(err); ok {
		return ae.Message
	}
	return err.Error()
}

// parseMoney decimal >= 0, не больше 10 цифр и 2 знаков после запятой
func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !ValidMoney(d) {
		return decimal.Zero, errors.New("amount out of range")
	}
	return d, nil
}

// ValidMoney проверяет, что сумма помещается в NUMERIC(10,2) и не отрицательна
func ValidMoney(d decimal.Decimal) bool {
	if d.IsNegative() {
		return false
	}
	digits := len(d.Coefficient().String())
	exp := int(d.Exponent())
	decimals := 0
	switch {
	case exp >= 0:
		digits += exp
	case -exp > digits:
		digits, decimals = -exp, -exp
	default:
		decimals = -exp
	}
	return digits <= maxDigits && decimals <= maxDecimals && digits-decimals <= maxDigits-maxDecimals
}
