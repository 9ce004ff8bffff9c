package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Makepad-fr/dod/internal/model"
)

// NewItem describes an item to add. Nil IsRequired means true, nil Order means 0.
type NewItem struct {
	Title       string
	Description string
	IsRequired  *bool
	Order       *int
}

type itemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsRequired  bool   `json:"is_required"`
	Order       int    `json:"order"`
}

func (n NewItem) request() itemRequest {
	r := itemRequest{Title: n.Title, Description: n.Description, IsRequired: true}
	if n.IsRequired != nil {
		r.IsRequired = *n.IsRequired
	}
	if n.Order != nil {
		r.Order = *n.Order
	}
	return r
}

type DoDService struct{ c *Client }

func (s *DoDService) Create(ctx context.Context, title, description string, projectID uint) (*model.DoD, error) {
	in := struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ProjectID   uint   `json:"project_id"`
	}{title, description, projectID}
	var out struct {
		DoD *model.DoD `json:"dod"`
	}
	if err := s.c.Do(ctx, http.MethodPost, "/dods/", in, &out); err != nil {
		return nil, err
	}
	if out.DoD == nil {
		return nil, fmt.Errorf("create dod: response has no dod")
	}
	return out.DoD, nil
}

func (s *DoDService) AddItem(ctx context.Context, dodID uint, item NewItem) (*model.Item, error) {
	var out struct {
		Item *model.Item `json:"item"`
	}
	path := fmt.Sprintf("/dods/%d/items", dodID)
	if err := s.c.Do(ctx, http.MethodPost, path, item.request(), &out); err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("add item: response has no item")
	}
	return out.Item, nil
}
