package network

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"cotdex/internal/errors"

	"github.com/go-playground/validator/v10"
)

// RRScale selects which relative-risk column a range applies to.
type RRScale string

const (
	RRScaleRaw RRScale = "raw"
	RRScaleLog RRScale = "log"
)

// FilterParams is the sole selector of visible association records.
type FilterParams struct {
	FollowUp  int     `json:"follow_up" validate:"gt=0"`
	RRMin     float64 `json:"rr_min" validate:"finite"`
	RRMax     float64 `json:"rr_max" validate:"finite"`
	ChisqMax  float64 `json:"chisq_max" validate:"finite"`
	FisherMax float64 `json:"fisher_max" validate:"finite"`
	RRScale   RRScale `json:"rr_scale" validate:"oneof=raw log"`
}

// Query converts the parameters into an accessor query.
func (p FilterParams) Query(seeds ...DiseaseCode) AssociationQuery {
	return AssociationQuery{
		FollowUp:  p.FollowUp,
		RRMin:     p.RRMin,
		RRMax:     p.RRMax,
		RRScale:   p.RRScale,
		ChisqMax:  p.ChisqMax,
		FisherMax: p.FisherMax,
		Seeds:     seeds,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func paramsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			v := fl.Field().Float()
			return !math.IsNaN(v) && !math.IsInf(v, 0)
		})
	})
	return validate
}

// Validate returns an INVALID_PARAMETER error describing every rejected field.
func (p FilterParams) Validate() error {
	err := paramsValidator().Struct(p)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.InvalidParameter("invalid filter parameters: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be a positive integer", fe.Field()))
		case "finite":
			msgs = append(msgs, fmt.Sprintf("%s must be a finite number", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.InvalidParameter("%s", strings.Join(msgs, "; "))
}

// Request keys recognised by ParseParams.
const (
	KeyFollowUp  = "follow_up"
	KeyRRMin     = "rr_values_min"
	KeyRRMax     = "rr_values_max"
	KeyChisqMax  = "chisq_p_values"
	KeyFisherMax = "fisher_p_values"
)

// Profile enumerates the recognised thresholds of a view together with their
// defaults. Fixed profiles ignore request values entirely.
type Profile struct {
	Name             string
	Defaults         FilterParams
	FollowUpRequired bool
	Fixed            bool
}

var (
	// WholeNetworkProfile filters the whole network on the log-RR scale.
	WholeNetworkProfile = Profile{
		Name:             "network",
		Defaults:         FilterParams{RRMin: 0, RRMax: 2, ChisqMax: 0.05, FisherMax: 0.05, RRScale: RRScaleLog},
		FollowUpRequired: true,
	}
	SingleDiseaseProfile = Profile{
		Name:     "single",
		Defaults: FilterParams{FollowUp: 1, RRMin: 1.1, RRMax: 1.3, ChisqMax: 0.5, FisherMax: 0.5, RRScale: RRScaleRaw},
	}
	SubNetworkProfile = Profile{
		Name:     "sub",
		Defaults: FilterParams{FollowUp: 1, RRMin: 1.1, RRMax: 1.3, ChisqMax: 0.5, FisherMax: 0.5, RRScale: RRScaleRaw},
	}
	// ConnectivityProfile is the permissive feasibility profile used before a
	// multi-seed view. It is independent of the thresholds the view renders with.
	ConnectivityProfile = Profile{
		Name:     "connectivity",
		Defaults: FilterParams{FollowUp: 2, RRMin: 1.2, RRMax: 1.3, ChisqMax: 0.5, FisherMax: 0.5, RRScale: RRScaleRaw},
		Fixed:    true,
	}
	ConnectedDiseasesProfile = Profile{
		Name:     "connected",
		Defaults: FilterParams{FollowUp: 1, RRMin: 1.1, RRMax: 1.3, ChisqMax: 0.5, FisherMax: 0.5, RRScale: RRScaleRaw},
		Fixed:    true,
	}
)

// ParseParams resolves request values against the profile and validates the
// result. lookup returns the raw value of a key and whether it was supplied.
func (pr Profile) ParseParams(lookup func(key string) (string, bool)) (FilterParams, error) {
	params := pr.Defaults
	if pr.Fixed {
		return params, params.Validate()
	}

	raw, ok := lookupNonEmpty(lookup, KeyFollowUp)
	switch {
	case ok:
		fu, err := strconv.Atoi(raw)
		if err != nil {
			return FilterParams{}, errors.InvalidParameter("%s must be a positive integer, got %q", KeyFollowUp, raw)
		}
		params.FollowUp = fu
	case pr.FollowUpRequired:
		return FilterParams{}, errors.InvalidParameter("%s is required", KeyFollowUp)
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{KeyRRMin, &params.RRMin},
		{KeyRRMax, &params.RRMax},
		{KeyChisqMax, &params.ChisqMax},
		{KeyFisherMax, &params.FisherMax},
	}
	for _, f := range floats {
		raw, ok := lookupNonEmpty(lookup, f.key)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return FilterParams{}, errors.InvalidParameter("%s must be numeric, got %q", f.key, raw)
		}
		*f.dst = v
	}

	if err := params.Validate(); err != nil {
		return FilterParams{}, err
	}
	return params, nil
}

func lookupNonEmpty(lookup func(string) (string, bool), key string) (string, bool) {
	if lookup == nil {
		return "", false
	}
	raw, ok := lookup(key)
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != ""
}

// ParseSeeds splits a comma-separated seed list, trimming blanks and dropping
// repeats while keeping first-seen order.
func ParseSeeds(raw string) ([]DiseaseCode, error) {
	return NormalizeSeeds(strings.Split(raw, ","))
}

// NormalizeSeeds trims, de-duplicates and checks a seed list.
func NormalizeSeeds(codes []string) ([]DiseaseCode, error) {
	seen := make(map[DiseaseCode]bool, len(codes))
	seeds := make([]DiseaseCode, 0, len(codes))
	for _, c := range codes {
		code := DiseaseCode(strings.TrimSpace(c))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		seeds = append(seeds, code)
	}
	if len(seeds) == 0 {
		return nil, errors.InvalidParameter("at least one disease code is required")
	}
	return seeds, nil
}

// CacheKey serialises a view request canonically: fixed field order,
// shortest round-trip float formatting, seeds in request order (order decides
// which seeds are pinned).
func CacheKey(view string, p FilterParams, seeds []DiseaseCode) string {
	var b strings.Builder
	b.WriteString("graph/v1|view=")
	b.WriteString(view)
	b.WriteString("|fu=")
	b.WriteString(strconv.Itoa(p.FollowUp))
	b.WriteString("|scale=")
	b.WriteString(string(p.RRScale))
	for _, kv := range []struct {
		k string
		v float64
	}{
		{"rr_min", p.RRMin},
		{"rr_max", p.RRMax},
		{"chisq_max", p.ChisqMax},
		{"fisher_max", p.FisherMax},
	} {
		b.WriteString("|")
		b.WriteString(kv.k)
		b.WriteString("=")
		b.WriteString(formatFloat(kv.v))
	}
	b.WriteString("|seeds=")
	for i, s := range seeds {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(string(s))
	}
	return b.String()
}

func formatFloat(v float64) string {
	if v == 0 {
		v = 0 // folds -0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
