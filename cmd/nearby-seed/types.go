// Input records for the catalog seed tool.
// JSON Lines carry one business with its offerings per line; parquet carries
// one flat row per offering with the business denormalized into it.
package main

import (
	"strings"

	"github.com/kailas-cloud/nearby/internal/domain/business"
	"github.com/kailas-cloud/nearby/internal/repository/catalog"
)

// seedBusiness is one JSON Lines record.
type seedBusiness struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Images      []string          `json:"images"`
	Hours       map[string]string `json:"hours"`
	Timezone    string            `json:"timezone"`
	OpenNow     *bool             `json:"open_now"`
	Phone       string            `json:"phone"`
	Website     string            `json:"website"`
	Email       string            `json:"email"`
	Verified    bool              `json:"verified"`
	Rating      float64           `json:"rating"`
	ReviewCount int               `json:"review_count"`
	PlaceID     string            `json:"place_id"`
	Address     string            `json:"address"`
	Latitude    *float64          `json:"latitude"`
	Longitude   *float64          `json:"longitude"`
	Offerings   []seedOffering    `json:"offerings"`
}

type seedOffering struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// offeringRow is one parquet row.
type offeringRow struct {
	OfferingID   string   `parquet:"offering_id"`
	BusinessID   string   `parquet:"business_id"`
	BusinessName string   `parquet:"business_name"`
	PlaceID      *string  `parquet:"place_id,optional"`
	Title        string   `parquet:"title"`
	Description  *string  `parquet:"description,optional"`
	Category     *string  `parquet:"category,optional"`
	Tags         []string `parquet:"tags,list"`
	Address      *string  `parquet:"address,optional"`
	Latitude     *float64 `parquet:"latitude,optional"`
	Longitude    *float64 `parquet:"longitude,optional"`
}

func (b *seedBusiness) business() business.Business {
	return business.Business{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Images:      b.Images,
		Hours:       b.Hours,
		Timezone:    b.Timezone,
		OpenNow:     b.OpenNow,
		Phone:       b.Phone,
		Website:     b.Website,
		Email:       b.Email,
		Verified:    b.Verified,
		Rating:      b.Rating,
		ReviewCount: b.ReviewCount,
	}
}

// offerings flattens the business into its offerings. Vectors are filled later.
func (b *seedBusiness) offerings() []catalog.Offering {
	out := make([]catalog.Offering, 0, len(b.Offerings))
	for i, o := range b.Offerings {
		id := o.ID
		if id == "" {
			id = b.ID + "-" + itoa(i)
		}
		out = append(out, catalog.Offering{
			ID:          id,
			BusinessID:  b.ID,
			PlaceID:     b.PlaceID,
			Title:       o.Title,
			Description: o.Description,
			Category:    o.Category,
			Tags:        o.Tags,
			Address:     b.Address,
			Lat:         b.Latitude,
			Lng:         b.Longitude,
		})
	}
	return out
}

// groupRows folds parquet rows into businesses, keeping first-seen order.
func groupRows(rows []offeringRow) []seedBusiness {
	index := make(map[string]int)
	var out []seedBusiness
	for i := range rows {
		r := &rows[i]
		pos, ok := index[r.BusinessID]
		if !ok {
			pos = len(out)
			index[r.BusinessID] = pos
			out = append(out, seedBusiness{
				ID:        r.BusinessID,
				Name:      r.BusinessName,
				PlaceID:   deref(r.PlaceID),
				Address:   deref(r.Address),
				Latitude:  r.Latitude,
				Longitude: r.Longitude,
			})
		}
		out[pos].Offerings = append(out[pos].Offerings, seedOffering{
			ID:          r.OfferingID,
			Title:       r.Title,
			Description: deref(r.Description),
			Category:    deref(r.Category),
			Tags:        r.Tags,
		})
	}
	return out
}

// embedText is what gets vectorized for an offering.
func embedText(o *catalog.Offering) string {
	parts := []string{o.Title}
	if o.Description != "" {
		parts = append(parts, o.Description)
	}
	if o.Category != "" {
		parts = append(parts, o.Category)
	}
	if len(o.Tags) > 0 {
		parts = append(parts, strings.Join(o.Tags, ", "))
	}
	return strings.Join(parts, ". ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
