package domain

import (
	"encoding/json"
	"net/url"
	"strconv"
)

type Store struct {
	ID            int64  `json:"id"`
	NameAR        string `json:"name_ar"`
	NameEN        string `json:"name_en"`
	LocationURL   string `json:"location_url"`
	DescriptionAR string `json:"description_ar,omitempty"`
	DescriptionEN string `json:"description_en,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	GiftsCount    int    `json:"gifts_count,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// Name returns the store name for lang, falling back to Arabic.
func (s Store) Name(lang string) string {
	if lang == "en" && s.NameEN != "" {
		return s.NameEN
	}
	return s.NameAR
}

func (s Store) Description(lang string) string {
	if lang == "en" && s.DescriptionEN != "" {
		return s.DescriptionEN
	}
	return s.DescriptionAR
}

type Gift struct {
	ID              int64    `json:"id"`
	StoreID         int64    `json:"store_id"`
	NameAR          string   `json:"name_ar"`
	NameEN          string   `json:"name_en"`
	Category        string   `json:"category"`
	MinAge          int      `json:"min_age"`
	MaxAge          int      `json:"max_age"`
	MinBudget       float64  `json:"min_budget"`
	MaxBudget       float64  `json:"max_budget"`
	Gender          string   `json:"gender,omitempty"`
	Occasion        string   `json:"occasion,omitempty"`
	PersonalityType string   `json:"personality_type,omitempty"`
	Interests       []string `json:"interests"`
	ImageURL        string   `json:"image_url,omitempty"`
	DescriptionAR   string   `json:"description_ar,omitempty"`
	DescriptionEN   string   `json:"description_en,omitempty"`
	Store           *Store   `json:"store,omitempty"`
}

// Name returns the gift name for lang, falling back to Arabic.
func (g Gift) Name(lang string) string {
	if lang == "en" && g.NameEN != "" {
		return g.NameEN
	}
	return g.NameAR
}

func (g Gift) Description(lang string) string {
	if lang == "en" && g.DescriptionEN != "" {
		return g.DescriptionEN
	}
	return g.DescriptionAR
}

// Criteria is the recommendation request body. Optional fields are left
// out of the JSON when empty.
type Criteria struct {
	Age             int      `json:"age"`
	Budget          float64  `json:"budget"`
	Interests       []string `json:"interests"`
	Gender          string   `json:"gender,omitempty"`
	Occasion        string   `json:"occasion,omitempty"`
	PersonalityType string   `json:"personality_type,omitempty"`
	Relationship    string   `json:"relationship,omitempty"`
}

type Recommendation struct {
	Gift         Gift            `json:"gift"`
	Score        float64         `json:"score"`
	MatchDetails json.RawMessage `json:"match_details,omitempty"`
}

// GiftFilters are the optional query parameters of the public gift list.
type GiftFilters struct {
	Name      string
	Category  string
	StoreID   int64
	MinBudget float64
	MaxBudget float64
}

// Values returns only the filters that are set.
func (f GiftFilters) Values() url.Values {
	v := url.Values{}
	if f.Name != "" {
		v.Set("name", f.Name)
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.StoreID > 0 {
		v.Set("store_id", strconv.FormatInt(f.StoreID, 10))
	}
	if f.MinBudget > 0 {
		v.Set("min_budget", strconv.FormatFloat(f.MinBudget, 'f', -1, 64))
	}
	if f.MaxBudget > 0 {
		v.Set("max_budget", strconv.FormatFloat(f.MaxBudget, 'f', -1, 64))
	}
	return v
}

func (f GiftFilters) Empty() bool { return len(f.Values()) == 0 }
