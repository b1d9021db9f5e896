// Package ingest загружает пачку лотов из form-data: все или ничего.
package ingest

import (
	"fmt"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"auctions/internal/apperrors"
)

const (
	fieldPrefix         = "items"
	defaultAuctionTitle = "Untitled Auction"
)

// Candidate сырые значения одного лота из формы
type Candidate struct {
	Index       int
	Name        string
	Price       string
	Image       *string
	Description string
	Increment   string
	Order       string
}

// Batch разобранный запрос. AuctionID 0 означает, что аукцион будет создан
// с названием AuctionTitle.
type Batch struct {
	AuctionID    int64
	AuctionTitle string
	Items        []Candidate
}

func key(i int, field string) string {
	return fmt.Sprintf("%s[%d][%s]", fieldPrefix, i, field)
}

// Parse собирает кандидатов items[0], items[1], ... до первого индекса без
// основных ключей (title/name, price, image). Пропуски в нумерации не поддерживаются.
func Parse(form url.Values, files map[string][]*multipart.FileHeader) (*Batch, error) {
	b := &Batch{}

	if raw := strings.TrimSpace(form.Get("auction_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperrors.InvalidArgument("auction_id must be a positive integer")
		}
		b.AuctionID = id
	} else {
		b.AuctionTitle = defaultAuctionTitle
		if _, ok := form["auction_title"]; ok {
			b.AuctionTitle = form.Get("auction_title")
		}
	}

	for i := 0; ; i++ {
		if !hasCoreKey(form, files, i) {
			break
		}
		c := Candidate{
			Index:       i,
			Name:        form.Get(key(i, "title")),
			Price:       form.Get(key(i, "price")),
			Description: form.Get(key(i, "description")),
			Increment:   form.Get(key(i, "increment")),
			Order:       form.Get(key(i, "order")),
		}
		if c.Name == "" {
			c.Name = form.Get(key(i, "name"))
		}
		if c.Increment == "" {
			c.Increment = "0"
		}
		if c.Order == "" {
			c.Order = strconv.Itoa(i)
		}
		c.Image = imageRef(form, files, i)
		b.Items = append(b.Items, c)
	}

	if len(b.Items) == 0 {
		return nil, apperrors.Validation("No items received")
	}
	return b, nil
}

func hasCoreKey(form url.Values, files map[string][]*multipart.FileHeader, i int) bool {
	for _, field := range []string{"title", "name", "price", "image"} {
		if _, ok := form[key(i, field)]; ok {
			return true
		}
	}
	return len(files[key(i, "image")]) > 0
}

// imageRef строка из формы важнее файла. Для файла сохраняется только имя.
func imageRef(form url.Values, files map[string][]*multipart.FileHeader, i int) *string {
	if v := strings.TrimSpace(form.Get(key(i, "image"))); v != "" {
		return &v
	}
	if fhs := files[key(i, "image")]; len(fhs) > 0 {
		if name := SanitizeFilename(fhs[0].Filename); name != "" {
			return &name
		}
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename оставляет базовое имя файла без небезопасных символов
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, "._")
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}
