package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"connectwork/internal/models"
)

// VacancyFilter narrows a vacancy listing. Zero values mean no filter.
type VacancyFilter struct {
	Query    string
	Location string
	Modality string
}

func (f VacancyFilter) encode() string {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.Modality != "" {
		q.Set("modality", f.Modality)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Vacancies lists open vacancies matching the filter.
func (c *Client) Vacancies(ctx context.Context, filter VacancyFilter) ([]models.Vacancy, error) {
	var out struct {
		Vacancies []models.Vacancy `json:"vacancies"`
	}
	if err := c.do(ctx, http.MethodGet, "/vacancy/vacancies"+filter.encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Vacancies, nil
}

// Vacancy fetches one vacancy by id.
func (c *Client) Vacancy(ctx context.Context, id int64) (models.Vacancy, error) {
	var vacancy models.Vacancy
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/vacancy/vacancies/%d", id), nil, &vacancy); err != nil {
		return models.Vacancy{}, err
	}
	return vacancy, nil
}

// Apply submits an application to the vacancy and returns it.
func (c *Client) Apply(ctx context.Context, vacancyID int64) (models.Application, error) {
	var application models.Application
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/vacancy/vacancies/%d/apply", vacancyID), nil, &application); err != nil {
		return models.Application{}, err
	}
	return application, nil
}

// Applications lists the user's submitted applications.
func (c *Client) Applications(ctx context.Context, userID int64) ([]models.Application, error) {
	var out struct {
		Applications []models.Application `json:"applications"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/vacancy/applications/%d", userID), nil, &out); err != nil {
		return nil, err
	}
	return out.Applications, nil
}
