package services

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"campus-food-api/apperr"
	"campus-food-api/models"

	"gorm.io/datatypes"
)

// Structured is a list-valued request field that may arrive either as a
// JSON array or as a JSON string holding one. Multipart forms always send
// the second form. Decoding is deferred so errors can name the field.
type Structured[T any] struct {
	Raw []byte
}

func (s *Structured[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		s.Raw = nil
		return nil
	}
	s.Raw = append([]byte(nil), b...)
	return nil
}

// Present reports whether the field was sent at all
func (s Structured[T]) Present() bool {
	return s.Raw != nil
}

func (s Structured[T]) decode(field string) (T, error) {
	var v T
	raw := bytes.TrimSpace(s.Raw)
	if len(raw) == 0 {
		return v, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return v, apperr.Validation("%s: malformed JSON", field)
		}
		raw = bytes.TrimSpace([]byte(inner))
		if len(raw) == 0 {
			return v, nil
		}
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, apperr.Validation("%s: malformed JSON", field)
	}
	return v, nil
}

// MenuInput is one menu item in a restaurant payload
type MenuInput struct {
	Name  string   `json:"name" validate:"required,max=100"`
	Price *float64 `json:"price" validate:"required,gte=0"`
	Tags  []string `json:"tags"`
	Image string   `json:"image"`
}

// RestaurantInput is the create/update payload of a restaurant. Scalar
// fields left nil are not touched on update.
type RestaurantInput struct {
	Name           *string                           `json:"name"`
	Phone          *string                           `json:"phone"`
	Address        *string                           `json:"address"`
	Link           *string                           `json:"link"`
	Category       *models.Category                  `json:"category"`
	Delivery       *bool                             `json:"delivery"`
	DeliveryPrice  *float64                          `json:"delivery_price"`
	DeliveryNumber *int                              `json:"delivery_number"`
	OrderTime      *string                           `json:"order_time"`
	Sell           *bool                             `json:"sell"`
	MenuImage      *string                           `json:"menuImage"`
	Tags           Structured[[]string]              `json:"tags"`
	Menu           Structured[[]MenuInput]           `json:"menu"`
	BusinessHours  Structured[[]models.BusinessHour] `json:"business_hours"`
}

// decodedInput holds the structured fields of a RestaurantInput after parsing
type decodedInput struct {
	tags     []string
	tagsSet  bool
	menu     []MenuInput
	menuSet  bool
	hours    []models.BusinessHour
	hoursSet bool
}

func (in RestaurantInput) decode() (decodedInput, error) {
	var (
		d   decodedInput
		err error
	)
	if d.tags, err = in.Tags.decode("tags"); err != nil {
		return d, err
	}
	if d.menu, err = in.Menu.decode("menu"); err != nil {
		return d, err
	}
	for i := range d.menu {
		d.menu[i].Name = strings.TrimSpace(d.menu[i].Name)
	}
	if d.hours, err = in.BusinessHours.decode("business_hours"); err != nil {
		return d, err
	}
	d.tagsSet, d.menuSet, d.hoursSet = in.Tags.Present(), in.Menu.Present(), in.BusinessHours.Present()
	return d, nil
}

// apply merges the provided fields onto r
func (in RestaurantInput) apply(r *models.Restaurant, d decodedInput) {
	setString(&r.Name, in.Name)
	setString(&r.Phone, in.Phone)
	setString(&r.Address, in.Address)
	setString(&r.Link, in.Link)
	setString(&r.OrderTime, in.OrderTime)
	setString(&r.MenuImage, in.MenuImage)
	if in.Category != nil {
		r.Category = models.Category(strings.TrimSpace(string(*in.Category)))
	}
	if in.Delivery != nil {
		r.Delivery = *in.Delivery
	}
	if in.DeliveryPrice != nil {
		r.DeliveryPrice = *in.DeliveryPrice
	}
	if in.DeliveryNumber != nil {
		r.DeliveryNumber = *in.DeliveryNumber
	}
	if in.Sell != nil {
		r.Sell = *in.Sell
	}
	if d.hoursSet {
		r.BusinessHours = hoursColumn(d.hours)
	}
}

func hoursColumn(h []models.BusinessHour) datatypes.JSONSlice[models.BusinessHour] {
	if h == nil {
		h = []models.BusinessHour{}
	}
	return datatypes.NewJSONSlice(h)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// requireDeliveryTerms rejects switching delivery on without a delivery price
// and minimum quantity in the same request
func requireDeliveryTerms(in RestaurantInput, enabling bool) error {
	if enabling && (in.DeliveryPrice == nil || in.DeliveryNumber == nil) {
		return apperr.Validation("delivery_price and delivery_number are required when delivery is offered")
	}
	return nil
}

// restaurantRules are the constraints a restaurant must satisfy after a merge
type restaurantRules struct {
	Name           string                `json:"name" validate:"required,max=100"`
	Phone          string                `json:"phone" validate:"required"`
	Address        string                `json:"address" validate:"max=60"`
	Link           string                `json:"link" validate:"max=100"`
	Category       models.Category       `json:"category" validate:"required,oneof=food drink other"`
	DeliveryPrice  float64               `json:"delivery_price" validate:"gte=0"`
	DeliveryNumber int                   `json:"delivery_number" validate:"gte=0"`
	BusinessHours  []models.BusinessHour `json:"business_hours" validate:"dive"`
	Menu           []MenuInput           `json:"menu" validate:"dive"`
}

func validateRestaurant(r *models.Restaurant, menu []MenuInput) error {
	return check(restaurantRules{
		Name:           r.Name,
		Phone:          r.Phone,
		Address:        r.Address,
		Link:           r.Link,
		Category:       r.Category,
		DeliveryPrice:  r.DeliveryPrice,
		DeliveryNumber: r.DeliveryNumber,
		BusinessHours:  r.BusinessHours,
		Menu:           menu,
	})
}

// ParseRestaurantForm builds a RestaurantInput from multipart form values
func ParseRestaurantForm(values map[string][]string) (RestaurantInput, error) {
	var in RestaurantInput
	get := func(key string) (string, bool) {
		v, ok := values[key]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}
	str := func(key string) *string {
		if v, ok := get(key); ok {
			return &v
		}
		return nil
	}

	in.Name, in.Phone, in.Address = str("name"), str("phone"), str("address")
	in.Link, in.OrderTime, in.MenuImage = str("link"), str("order_time"), str("menuImage")
	if v, ok := get("category"); ok {
		c := models.Category(v)
		in.Category = &c
	}

	var err error
	if in.Delivery, err = formBool(values, "delivery"); err != nil {
		return in, err
	}
	if in.Sell, err = formBool(values, "sell"); err != nil {
		return in, err
	}
	if v, ok := get("delivery_price"); ok && v != "" {
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return in, apperr.Validation("delivery_price: must be a number")
		}
		in.DeliveryPrice = &f
	}
	if v, ok := get("delivery_number"); ok && v != "" {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return in, apperr.Validation("delivery_number: must be an integer")
		}
		in.DeliveryNumber = &n
	}

	if v, ok := get("tags"); ok {
		in.Tags.Raw = []byte(v)
	}
	if v, ok := get("menu"); ok {
		in.Menu.Raw = []byte(v)
	}
	if v, ok := get("business_hours"); ok {
		in.BusinessHours.Raw = []byte(v)
	}
	return in, nil
}

func formBool(values map[string][]string, key string) (*bool, error) {
	v, ok := values[key]
	if !ok || len(v) == 0 || v[0] == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v[0])
	if err != nil {
		return nil, apperr.Validation("%s: must be true or false", key)
	}
	return &b, nil
}
