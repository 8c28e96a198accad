package weclapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// Packaging levels of the VsInfoEbene custom attribute. The level names
// which packaging counts multiply into a pallet.
const (
	LevelArtikel = "Artikel"
	LevelPackung = "Packung"
	LevelKarton  = "Karton"
	LevelKeine   = "Keine"
)

// AttributeIDs are the tenant-specific custom attribute definition ids the
// packaging data lives under. Level values are select options, referenced by
// their option id.
type AttributeIDs struct {
	Level            string
	PackQuantity     string
	CartonQuantity   string
	ShippingQuantity string

	LevelArtikel string
	LevelPackung string
	LevelKarton  string
	LevelKeine   string
}

// Config carries the article-master connection settings
type Config struct {
	BaseURL           string
	APIToken          string
	RequestsPerSecond float64
	Timeout           time.Duration
	Attributes        AttributeIDs
}

// Client reads packaging data from the article master and implements the
// picking.Articles port. Calls are paced by a token-bucket limiter; the
// article API enforces its own quota server-side.
type Client struct {
	httpClient *http.Client
	cfg        Config
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates an article client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger,
	}
}

// article is the slice of the article record the pallet derivation reads
type article struct {
	ID               string            `json:"id"`
	ArticleNumber    string            `json:"articleNumber"`
	Name             string            `json:"name"`
	CustomAttributes []customAttribute `json:"customAttributes"`
}

type customAttribute struct {
	AttributeDefinitionID string `json:"attributeDefinitionId"`
	StringValue           string `json:"stringValue,omitempty"`
	NumberValue           string `json:"numberValue,omitempty"`
	SelectedValueID       string `json:"selectedValueId,omitempty"`
}

// attribute returns the custom attribute with the given definition id
func (a *article) attribute(definitionID string) *customAttribute {
	for i := range a.CustomAttributes {
		if a.CustomAttributes[i].AttributeDefinitionID == definitionID {
			return &a.CustomAttributes[i]
		}
	}
	return nil
}

// count reads a numeric packaging attribute; ok is false when the attribute
// is absent, empty or malformed
func (a *article) count(definitionID string) (float64, bool) {
	attr := a.attribute(definitionID)
	if attr == nil || attr.NumberValue == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(attr.NumberValue, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// UnitsPerPallet derives how many units of the product fit on one pallet
// from the article's packaging attributes. The article is looked up by the
// product's article id when the WMS carries one, by SKU otherwise. Found is
// false when no article or no usable packaging data exists.
func (c *Client) UnitsPerPallet(ctx context.Context, product *picking.Product) (int, bool, error) {
	art, err := c.findArticle(ctx, product)
	if err != nil {
		return 0, false, err
	}
	if art == nil {
		c.logger.Warn("no article found for product",
			zap.String("sku", product.SKU),
			zap.String("name", product.Name))
		return 0, false, nil
	}

	levelAttr := art.attribute(c.cfg.Attributes.Level)
	if levelAttr == nil || levelAttr.SelectedValueID == "" ||
		levelAttr.SelectedValueID == c.cfg.Attributes.LevelKeine {
		return 0, false, nil
	}
	pack, okPack := art.count(c.cfg.Attributes.PackQuantity)
	carton, okCarton := art.count(c.cfg.Attributes.CartonQuantity)
	shipping, okShipping := art.count(c.cfg.Attributes.ShippingQuantity)
	if !okPack || !okCarton || !okShipping {
		return 0, false, nil
	}

	var units float64
	switch levelAttr.SelectedValueID {
	case c.cfg.Attributes.LevelArtikel:
		units = pack * carton * shipping
	case c.cfg.Attributes.LevelPackung:
		units = carton * shipping
	case c.cfg.Attributes.LevelKarton:
		units = shipping
	default:
		return 0, false, nil
	}
	if units <= 0 {
		return 0, false, nil
	}
	return int(units), true, nil
}

// findArticle resolves the article record, nil when none matches
func (c *Client) findArticle(ctx context.Context, product *picking.Product) (*article, error) {
	if id := product.Attributes.WeclappArticleID; id != "" {
		return c.articleByID(ctx, id)
	}
	return c.articleBySKU(ctx, product.SKU)
}

func (c *Client) articleByID(ctx context.Context, id string) (*article, error) {
	raw, err := c.get(ctx, "article/id/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var art article
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("failed to decode article %s: %w", id, err)
	}
	return &art, nil
}

func (c *Client) articleBySKU(ctx context.Context, sku string) (*article, error) {
	params := url.Values{
		"sku":         {sku},
		"active":      {"true"},
		"articleType": {"STORABLE"},
	}
	raw, err := c.get(ctx, "article", params)
	if err != nil {
		return nil, err
	}

	var page struct {
		Result []article `json:"result"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode article search for %s: %w", sku, err)
	}
	if len(page.Result) == 0 {
		return nil, nil
	}
	return &page.Result[0], nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	target := c.cfg.BaseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create article request: %w", err)
	}
	req.Header.Set("AuthenticationToken", c.cfg.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach article service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read article response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("article service returned status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
