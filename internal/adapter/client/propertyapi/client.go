package propertyapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

const propertiesPath = "/properties"

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Property Search Service over REST. It is safe for
// concurrent use and meant to be built once and shared.
type Client struct {
	http    *resty.Client
	baseURL string
	log     logger.Logger
}

func New(cfg Config, log logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &Client{
		http:    rc,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		log:     log,
	}
}

// Search runs GET /properties with the query's filters and paging.
func (c *Client) Search(ctx context.Context, q domain.SearchQuery) (res *domain.PagedResult[domain.Property], err error) {
	const op = "Search"
	ctx, span := tracer.Start(ctx, "PropertyAPI.Search",
		attribute.Int("search.page", q.Page),
		attribute.Int("search.page_size", q.PageSize),
	)
	defer func() { tracer.End(span, err) }()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q.Values()).
		Get(c.baseURL + propertiesPath)
	if err := c.check(op, c.baseURL+propertiesPath, resp, err); err != nil {
		return nil, err
	}

	var out domain.PagedResult[domain.Property]
	if err := decode(op, resp, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []domain.Property{}
	}
	c.log.Debugw("PropertyAPI.Search: fetched", "query", q.Key(), "total", out.Total, "items", len(out.Items))
	return &out, nil
}

func (c *Client) GetByID(ctx context.Context, id string) (p *domain.Property, err error) {
	const op = "GetByID"
	if id == "" {
		return nil, domain.ErrMissingID
	}
	ctx, span := tracer.Start(ctx, "PropertyAPI.GetByID", attribute.String("property.id", id))
	defer func() { tracer.End(span, err) }()

	endpoint := c.itemURL(id)
	resp, err := c.http.R().SetContext(ctx).Get(endpoint)
	if err := c.check(op, endpoint, resp, err); err != nil {
		return nil, err
	}

	var out domain.Property
	if err := decode(op, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, in domain.PropertyInput) (p *domain.Property, err error) {
	const op = "Create"
	ctx, span := tracer.Start(ctx, "PropertyAPI.Create")
	defer func() { tracer.End(span, err) }()

	endpoint := c.baseURL + propertiesPath
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(in).
		Post(endpoint)
	if err := c.check(op, endpoint, resp, err); err != nil {
		return nil, err
	}

	var out domain.Property
	if err := decode(op, resp, &out); err != nil {
		return nil, err
	}
	c.log.Infow("PropertyAPI.Create: created", "id", out.ID)
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id string, in domain.PropertyInput) (p *domain.Property, err error) {
	const op = "Update"
	if id == "" {
		return nil, domain.ErrMissingID
	}
	ctx, span := tracer.Start(ctx, "PropertyAPI.Update", attribute.String("property.id", id))
	defer func() { tracer.End(span, err) }()

	endpoint := c.itemURL(id)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(in).
		Put(endpoint)
	if err := c.check(op, endpoint, resp, err); err != nil {
		return nil, err
	}

	var out domain.Property
	if err := decode(op, resp, &out); err != nil {
		return nil, err
	}
	c.log.Infow("PropertyAPI.Update: updated", "id", id)
	return &out, nil
}

// Delete reports whether the property existed and was removed. A 404 is
// (false, nil); other failures are returned as errors.
func (c *Client) Delete(ctx context.Context, id string) (deleted bool, err error) {
	const op = "Delete"
	if id == "" {
		return false, domain.ErrMissingID
	}
	ctx, span := tracer.Start(ctx, "PropertyAPI.Delete", attribute.String("property.id", id))
	defer func() { tracer.End(span, err) }()

	endpoint := c.itemURL(id)
	resp, err := c.http.R().SetContext(ctx).Delete(endpoint)
	if err != nil {
		return false, c.check(op, endpoint, resp, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		c.log.Infow("PropertyAPI.Delete: property not found", "id", id)
		return false, nil
	}
	if err := c.check(op, endpoint, resp, nil); err != nil {
		return false, err
	}
	c.log.Infow("PropertyAPI.Delete: deleted", "id", id)
	return true, nil
}

func (c *Client) itemURL(id string) string {
	return c.baseURL + propertiesPath + "/" + url.PathEscape(id)
}

// check maps transport failures to NetworkError and non-2xx responses to
// ServerError.
func (c *Client) check(op, endpoint string, resp *resty.Response, err error) error {
	if err != nil {
		c.log.Warnw("PropertyAPI: request failed", "op", op, "url", endpoint, "error", err)
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	if !resp.IsSuccess() {
		serr := newServerError(op, resp.StatusCode(), resp.Body())
		c.log.Warnw("PropertyAPI: unexpected status", "op", op, "url", endpoint, "status", serr.StatusCode, "message", serr.Message)
		return serr
	}
	return nil
}

func decode(op string, resp *resty.Response, v any) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return &ServerError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("malformed response body: %v", err),
		}
	}
	return nil
}
