package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Makepad-fr/dod/internal/model"
)

type ProjectService struct{ c *Client }

func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	var out struct {
		Projects []model.Project `json:"projects"`
	}
	if err := s.c.Do(ctx, http.MethodGet, "/projects/", nil, &out); err != nil {
		return nil, err
	}
	if out.Projects == nil {
		return []model.Project{}, nil
	}
	return out.Projects, nil
}

func (s *ProjectService) Create(ctx context.Context, name, description string) (*model.Project, error) {
	in := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}{name, description}
	var out struct {
		Project *model.Project `json:"project"`
	}
	if err := s.c.Do(ctx, http.MethodPost, "/projects/", in, &out); err != nil {
		return nil, err
	}
	if out.Project == nil {
		return nil, fmt.Errorf("create project: response has no project")
	}
	return out.Project, nil
}

func (s *ProjectService) AddParticipant(ctx context.Context, projectID uint, email string, role model.Role) (*model.Participant, error) {
	in := struct {
		Email string     `json:"email"`
		Role  model.Role `json:"role"`
	}{email, role}
	var out struct {
		Participant *model.Participant `json:"participant"`
	}
	path := fmt.Sprintf("/projects/%d/participants", projectID)
	if err := s.c.Do(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	return out.Participant, nil
}

func (s *ProjectService) ListDoDs(ctx context.Context, projectID uint) ([]model.DoD, error) {
	var out struct {
		DoDs []model.DoD `json:"dods"`
	}
	path := fmt.Sprintf("/projects/%d/dods", projectID)
	if err := s.c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.DoDs == nil {
		return []model.DoD{}, nil
	}
	return out.DoDs, nil
}
