package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultAPIVersion = "2024-07"

// Client is a thin Shopify Admin GraphQL API client.
type Client struct {
	store      string
	token      string
	apiVersion string
	httpClient *http.Client
}

func NewClient(store, token, apiVersion string, httpClient *http.Client) *Client {
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		store:      store,
		token:      token,
		apiVersion: apiVersion,
		httpClient: httpClient,
	}
}

func (c *Client) graphqlURL() string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.store, c.apiVersion)
}

// ProductInput is the listing payload sent to Shopify.
type ProductInput struct {
	Title           string
	DescriptionHTML string
	ProductType     string
	Tags            []string
	Status          string // "DRAFT" or "ACTIVE"
	SEODescription  string
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// CreateProduct creates a product and returns its GraphQL ID.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (string, error) {
	status := input.Status
	if status == "" {
		status = "ACTIVE"
	}
	reqBody := graphQLRequest{
		Query: `mutation productCreate($input: ProductInput!) {
  productCreate(input: $input) {
    product {
      id
      handle
    }
    userErrors {
      field
      message
    }
  }
}`,
		Variables: map[string]interface{}{
			"input": map[string]interface{}{
				"title":           input.Title,
				"descriptionHtml": input.DescriptionHTML,
				"productType":     input.ProductType,
				"tags":            input.Tags,
				"status":          status,
				"seo": map[string]interface{}{
					"description": input.SEODescription,
				},
			},
		},
	}

	var decoded struct {
		Data struct {
			ProductCreate struct {
				Product struct {
					ID     string `json:"id"`
					Handle string `json:"handle"`
				} `json:"product"`
				UserErrors []struct {
					Field   []string `json:"field"`
					Message string   `json:"message"`
				} `json:"userErrors"`
			} `json:"productCreate"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}

	if err := c.do(ctx, reqBody, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Errors) > 0 {
		return "", fmt.Errorf("shopify graphql errors: %s", joinErrors(decoded.Errors))
	}
	if ue := decoded.Data.ProductCreate.UserErrors; len(ue) > 0 {
		var messages []string
		for _, e := range ue {
			messages = append(messages, e.Message)
		}
		return "", fmt.Errorf("shopify productCreate user errors: %s", strings.Join(messages, "; "))
	}
	if decoded.Data.ProductCreate.Product.ID == "" {
		return "", fmt.Errorf("shopify productCreate returned no product ID")
	}
	return decoded.Data.ProductCreate.Product.ID, nil
}

// RecentProductDescriptions fetches plain-text descriptions of the most
// recently created products. Used to seed the uniqueness check when the
// local store has no publish history yet.
func (c *Client) RecentProductDescriptions(ctx context.Context, first int) ([]string, error) {
	if first <= 0 {
		first = 10
	}
	reqBody := graphQLRequest{
		Query: `query RecentProducts($first: Int!) {
  products(first: $first, sortKey: CREATED_AT, reverse: true) {
    edges {
      node {
        description
      }
    }
  }
}`,
		Variables: map[string]interface{}{"first": first},
	}

	var decoded struct {
		Data struct {
			Products struct {
				Edges []struct {
					Node struct {
						Description string `json:"description"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}

	if err := c.do(ctx, reqBody, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("shopify graphql errors: %s", joinErrors(decoded.Errors))
	}

	var descriptions []string
	for _, edge := range decoded.Data.Products.Edges {
		if d := strings.TrimSpace(edge.Node.Description); d != "" {
			descriptions = append(descriptions, d)
		}
	}
	return descriptions, nil
}

func (c *Client) do(ctx context.Context, reqBody graphQLRequest, out interface{}) error {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL(), bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("shopify graphql status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func joinErrors(errs []graphQLError) string {
	var messages []string
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "; ")
}
