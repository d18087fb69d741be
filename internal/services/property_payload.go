package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/taxonomy"
	"github.com/ddproperty/ddproperty-api/internal/types"
)

// PropertyPayload is a property submission. Multipart forms and JSON bodies
// decode into the same shape: numbers, booleans and nested objects may arrive
// as strings.
type PropertyPayload struct {
	PropertyCode string `json:"propertyCode"`
	ReferenceID  string `json:"referenceId"`
	PropertyType string `json:"propertyType"`

	Title                  string                            `json:"title"`
	Description            string                            `json:"description"`
	PaymentPlan            string                            `json:"paymentPlan"`
	TranslatedTitles       types.FlexJSON[map[string]string] `json:"translatedTitles"`
	TranslatedDescriptions types.FlexJSON[map[string]string] `json:"translatedDescriptions"`
	TranslatedPaymentPlans types.FlexJSON[map[string]string] `json:"translatedPaymentPlans"`

	Address       string          `json:"address"`
	SearchAddress string          `json:"searchAddress"`
	District      string          `json:"district"`
	SubDistrict   string          `json:"subDistrict"`
	City          string          `json:"city"`
	Province      string          `json:"province"`
	PostalCode    string          `json:"postalCode"`
	Country       string          `json:"country"`
	ZoneID        types.FlexInt   `json:"zoneId"`
	Latitude      types.FlexFloat `json:"latitude"`
	Longitude     types.FlexFloat `json:"longitude"`

	Bedrooms   types.FlexInt   `json:"bedrooms"`
	Bathrooms  types.FlexInt   `json:"bathrooms"`
	Floors     types.FlexInt   `json:"floors"`
	Area       types.FlexFloat `json:"area"`
	LandArea   types.FlexFloat `json:"landArea"`
	LandWidth  types.FlexFloat `json:"landWidth"`
	LandLength types.FlexFloat `json:"landLength"`

	Status string `json:"status"`

	// A single listing may be given inline instead of a listings array.
	ListingType      string          `json:"listingType"`
	Price            types.FlexFloat `json:"price"`
	RentalPrice      types.FlexFloat `json:"rentalPrice"`
	ShortTerm3Months types.FlexFloat `json:"shortTerm3Months"`
	ShortTerm6Months types.FlexFloat `json:"shortTerm6Months"`
	ShortTerm1Year   types.FlexFloat `json:"shortTerm1Year"`

	Listings   types.FlexList[ListingPayload] `json:"listings"`
	Images     types.FlexList[MediaPayload]   `json:"images"`
	FloorPlans types.FlexList[MediaPayload]   `json:"floorPlans"`
	UnitPlans  types.FlexList[MediaPayload]   `json:"unitPlans"`

	taxonomy.Raw
}

// ListingPayload is one submitted listing.
type ListingPayload struct {
	ListingType      string          `json:"listingType"`
	Price            types.FlexFloat `json:"price"`
	RentalPrice      types.FlexFloat `json:"rentalPrice"`
	ShortTerm3Months types.FlexFloat `json:"shortTerm3Months"`
	ShortTerm6Months types.FlexFloat `json:"shortTerm6Months"`
	ShortTerm1Year   types.FlexFloat `json:"shortTerm1Year"`
	Status           string          `json:"status"`
}

// MediaPayload is a submitted image or plan. A bare string is read as its URL.
type MediaPayload struct {
	URL        string         `json:"url"`
	Caption    string         `json:"caption"`
	Title      string         `json:"title"`
	IsFeatured types.FlexBool `json:"isFeatured"`
	SortOrder  types.FlexInt  `json:"sortOrder"`
}

func (m *MediaPayload) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		*m = MediaPayload{URL: url}
		return nil
	}
	type plain MediaPayload
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = MediaPayload(p)
	return nil
}

func (m MediaPayload) input() repository.MediaInput {
	return repository.MediaInput{
		URL:        strings.TrimSpace(m.URL),
		Caption:    m.Caption,
		Title:      m.Title,
		IsFeatured: m.IsFeatured.Bool(),
		SortOrder:  m.SortOrder.Ptr(),
	}
}

// ToInput validates the payload and converts it for the repository.
func (p PropertyPayload) ToInput(userID uint) (repository.PropertyInput, error) {
	propertyType := strings.ToUpper(strings.TrimSpace(p.PropertyType))
	if !models.ValidPropertyType(propertyType) {
		return repository.PropertyInput{}, types.BadRequest(fmt.Sprintf("Invalid property type %q", p.PropertyType))
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return repository.PropertyInput{}, types.BadRequest("Title is required")
	}
	status := strings.ToUpper(strings.TrimSpace(p.Status))
	if status != "" && !models.ValidPropertyStatus(status) {
		return repository.PropertyInput{}, types.BadRequest(fmt.Sprintf("Invalid status %q", p.Status))
	}
	code := strings.TrimSpace(p.PropertyCode)
	if repository.IsGeneratedCode(strings.ToUpper(code)) {
		return repository.PropertyInput{}, types.BadRequest(fmt.Sprintf("Property code %q is reserved for generated codes", p.PropertyCode))
	}
	zoneID, err := optionalID(p.ZoneID, "zoneId")
	if err != nil {
		return repository.PropertyInput{}, err
	}

	listings, err := p.listings()
	if err != nil {
		return repository.PropertyInput{}, err
	}

	in := repository.PropertyInput{
		PropertyCode:           code,
		PropertyType:           propertyType,
		Title:                  title,
		Description:            p.Description,
		PaymentPlan:            p.PaymentPlan,
		TranslatedTitles:       p.TranslatedTitles.Value,
		TranslatedDescriptions: p.TranslatedDescriptions.Value,
		TranslatedPaymentPlans: p.TranslatedPaymentPlans.Value,
		Address:                p.Address,
		SearchAddress:          p.SearchAddress,
		District:               p.District,
		SubDistrict:            p.SubDistrict,
		City:                   strings.TrimSpace(p.City),
		Province:               strings.TrimSpace(p.Province),
		PostalCode:             p.PostalCode,
		Country:                p.Country,
		ZoneID:                 zoneID,
		Latitude:               p.Latitude.Ptr(),
		Longitude:              p.Longitude.Ptr(),
		Bedrooms:               p.Bedrooms.Ptr(),
		Bathrooms:              p.Bathrooms.Ptr(),
		Floors:                 p.Floors.Ptr(),
		Area:                   p.Area.Ptr(),
		LandArea:               p.LandArea.Ptr(),
		LandWidth:              p.LandWidth.Ptr(),
		LandLength:             p.LandLength.Ptr(),
		Status:                 status,
		UserID:                 userID,
		Listings:               listings,
		Taxonomy:               p.Raw,
	}
	if ref := strings.TrimSpace(p.ReferenceID); ref != "" {
		in.ReferenceID = &ref
	}
	for _, m := range p.Images {
		in.Images = append(in.Images, m.input())
	}
	for _, m := range p.FloorPlans {
		in.FloorPlans = append(in.FloorPlans, m.input())
	}
	for _, m := range p.UnitPlans {
		in.UnitPlans = append(in.UnitPlans, m.input())
	}
	return in, nil
}

func (p PropertyPayload) listings() ([]repository.ListingInput, error) {
	submitted := p.Listings.Slice()
	if len(submitted) == 0 && (p.Price.Set || p.ListingType != "") {
		submitted = []ListingPayload{{
			ListingType:      p.ListingType,
			Price:            p.Price,
			RentalPrice:      p.RentalPrice,
			ShortTerm3Months: p.ShortTerm3Months,
			ShortTerm6Months: p.ShortTerm6Months,
			ShortTerm1Year:   p.ShortTerm1Year,
		}}
	}
	if len(submitted) == 0 {
		return nil, types.BadRequest("At least one listing is required")
	}

	out := make([]repository.ListingInput, 0, len(submitted))
	for i, l := range submitted {
		listingType := strings.ToUpper(strings.TrimSpace(l.ListingType))
		if listingType == "" {
			listingType = models.ListingSale
		}
		if !models.ValidListingType(listingType) {
			return nil, types.BadRequest(fmt.Sprintf("Listing %d: invalid listing type %q", i+1, l.ListingType))
		}
		if !l.Price.Set {
			return nil, types.BadRequest(fmt.Sprintf("Listing %d: price is required", i+1))
		}
		for name, v := range map[string]types.FlexFloat{
			"price": l.Price, "rentalPrice": l.RentalPrice, "shortTerm3Months": l.ShortTerm3Months,
			"shortTerm6Months": l.ShortTerm6Months, "shortTerm1Year": l.ShortTerm1Year,
		} {
			if v.Set && v.Value < 0 {
				return nil, types.BadRequest(fmt.Sprintf("Listing %d: %s must not be negative", i+1, name))
			}
		}
		status := strings.ToUpper(strings.TrimSpace(l.Status))
		if status != "" && !models.ValidPropertyStatus(status) {
			return nil, types.BadRequest(fmt.Sprintf("Listing %d: invalid status %q", i+1, l.Status))
		}
		out = append(out, repository.ListingInput{
			ListingType:      listingType,
			Price:            l.Price.Value,
			RentalPrice:      l.RentalPrice.Ptr(),
			ShortTerm3Months: l.ShortTerm3Months.Ptr(),
			ShortTerm6Months: l.ShortTerm6Months.Ptr(),
			ShortTerm1Year:   l.ShortTerm1Year.Ptr(),
			Status:           status,
		})
	}
	return out, nil
}

func optionalID(v types.FlexInt, field string) (*uint, error) {
	if !v.Set || v.Value == 0 {
		return nil, nil
	}
	if v.Value < 0 {
		return nil, types.BadRequest(field + " must be a positive id")
	}
	id := uint(v.Value)
	return &id, nil
}

// PropertyUpdate is a partial update of a property's scalar fields. Absent
// fields are left unchanged. Listings, media and attributes have their own
// operations.
type PropertyUpdate struct {
	PropertyType *string `json:"propertyType"`
	ReferenceID  *string `json:"referenceId"`

	Title                  *string                           `json:"title"`
	Description            *string                           `json:"description"`
	PaymentPlan            *string                           `json:"paymentPlan"`
	TranslatedTitles       types.FlexJSON[map[string]string] `json:"translatedTitles"`
	TranslatedDescriptions types.FlexJSON[map[string]string] `json:"translatedDescriptions"`
	TranslatedPaymentPlans types.FlexJSON[map[string]string] `json:"translatedPaymentPlans"`

	Address       *string         `json:"address"`
	SearchAddress *string         `json:"searchAddress"`
	District      *string         `json:"district"`
	SubDistrict   *string         `json:"subDistrict"`
	City          *string         `json:"city"`
	Province      *string         `json:"province"`
	PostalCode    *string         `json:"postalCode"`
	Country       *string         `json:"country"`
	ZoneID        types.FlexInt   `json:"zoneId"`
	Latitude      types.FlexFloat `json:"latitude"`
	Longitude     types.FlexFloat `json:"longitude"`

	Bedrooms   types.FlexInt   `json:"bedrooms"`
	Bathrooms  types.FlexInt   `json:"bathrooms"`
	Floors     types.FlexInt   `json:"floors"`
	Area       types.FlexFloat `json:"area"`
	LandArea   types.FlexFloat `json:"landArea"`
	LandWidth  types.FlexFloat `json:"landWidth"`
	LandLength types.FlexFloat `json:"landLength"`

	Status *string `json:"status"`
}

// Changes validates the update and returns the columns to write.
func (u PropertyUpdate) Changes() (map[string]interface{}, error) {
	changes := map[string]interface{}{}

	if u.PropertyType != nil {
		t := strings.ToUpper(strings.TrimSpace(*u.PropertyType))
		if !models.ValidPropertyType(t) {
			return nil, types.BadRequest(fmt.Sprintf("Invalid property type %q", *u.PropertyType))
		}
		changes["property_type"] = t
	}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return nil, types.BadRequest("Title must not be empty")
		}
		changes["title"] = title
	}
	if u.Status != nil {
		s := strings.ToUpper(strings.TrimSpace(*u.Status))
		if !models.ValidPropertyStatus(s) {
			return nil, types.BadRequest(fmt.Sprintf("Invalid status %q", *u.Status))
		}
		changes["status"] = s
	}
	if u.ReferenceID != nil {
		if ref := strings.TrimSpace(*u.ReferenceID); ref != "" {
			changes["reference_id"] = ref
		} else {
			changes["reference_id"] = nil
		}
	}

	for column, v := range map[string]*string{
		"description":    u.Description,
		"payment_plan":   u.PaymentPlan,
		"address":        u.Address,
		"search_address": u.SearchAddress,
		"district":       u.District,
		"sub_district":   u.SubDistrict,
		"city":           u.City,
		"province":       u.Province,
		"postal_code":    u.PostalCode,
		"country":        u.Country,
	} {
		if v != nil {
			changes[column] = *v
		}
	}

	for column, v := range map[string]types.FlexJSON[map[string]string]{
		"translated_titles":        u.TranslatedTitles,
		"translated_descriptions":  u.TranslatedDescriptions,
		"translated_payment_plans": u.TranslatedPaymentPlans,
	} {
		if v.Set {
			changes[column] = models.NewLocalizedText(v.Value)
		}
	}

	for column, v := range map[string]types.FlexInt{
		"bedrooms":  u.Bedrooms,
		"bathrooms": u.Bathrooms,
		"floors":    u.Floors,
	} {
		if v.Set {
			changes[column] = v.Value
		}
	}

	for column, v := range map[string]types.FlexFloat{
		"latitude":    u.Latitude,
		"longitude":   u.Longitude,
		"area":        u.Area,
		"land_area":   u.LandArea,
		"land_width":  u.LandWidth,
		"land_length": u.LandLength,
	} {
		if v.Set {
			changes[column] = v.Value
		}
	}

	if u.ZoneID.Set {
		zoneID, err := optionalID(u.ZoneID, "zoneId")
		if err != nil {
			return nil, err
		}
		if zoneID == nil {
			changes["zone_id"] = nil
		} else {
			changes["zone_id"] = *zoneID
		}
	}

	return changes, nil
}
